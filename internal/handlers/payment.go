// internal/handlers/payment.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/barterhub/barterhub-backend/internal/i18n"
	"github.com/barterhub/barterhub-backend/internal/models"
	"github.com/barterhub/barterhub-backend/internal/payment"
	"github.com/barterhub/barterhub-backend/internal/services"
	"github.com/barterhub/barterhub-backend/internal/utils"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
	gate           *services.UnlockService
}

func NewPaymentHandler(paymentService *services.PaymentService, gate *services.UnlockService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		gate:           gate,
	}
}

// POST /payments/unlock
func (h *PaymentHandler) ProcessUnlock(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	viewerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.UnlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := h.paymentService.ProcessUnlock(c.Request.Context(), viewerID, &req)
	if err != nil {
		var payErr *payment.Error
		switch {
		case errors.As(err, &payErr):
			// Declined, not broken: surface the reason so the client can
			// offer a retry.
			utils.PaymentFailedResponse(c, string(payErr.Reason), payErr.Reason.Message())
		case errors.Is(err, services.ErrUnknownAsset):
			utils.NotFoundResponse(c, "asset")
		default:
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyUnlockSuccess),
		"unlock":  result,
	})
}

// GET /payments/unlock-status
func (h *PaymentHandler) GetUnlockStatus(c *gin.Context) {
	viewerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	assetID, err := uuid.Parse(c.Query("asset_id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid asset ID", nil)
		return
	}

	purpose := models.UnlockPurpose(c.Query("purpose"))
	if !purpose.Valid() {
		utils.BadRequestResponse(c, "Invalid unlock purpose", nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"asset_id": assetID,
		"purpose":  purpose,
		"unlocked": h.gate.IsUnlocked(viewerID, assetID, purpose),
	})
}

// GET /payments/fees
func (h *PaymentHandler) GetFees(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{
		"fees": gin.H{
			string(models.UnlockPurposeContactSeller): h.paymentService.UnlockFee(models.UnlockPurposeContactSeller),
			string(models.UnlockPurposeSimilarItems):  h.paymentService.UnlockFee(models.UnlockPurposeSimilarItems),
		},
	})
}

// GET /payments/history
func (h *PaymentHandler) GetPaymentHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	transactions, total, err := h.paymentService.GetPaymentHistory(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(transactions, total, params))
}

// GET /payments/:id
func (h *PaymentHandler) GetTransaction(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid transaction ID", nil)
		return
	}

	tx, err := h.paymentService.GetTransaction(txID, userID)
	if err != nil {
		utils.NotFoundResponse(c, "payment")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"transaction": tx,
	})
}
