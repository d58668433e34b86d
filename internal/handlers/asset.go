// internal/handlers/asset.go
package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/barterhub/barterhub-backend/internal/i18n"
	"github.com/barterhub/barterhub-backend/internal/models"
	"github.com/barterhub/barterhub-backend/internal/services"
	"github.com/barterhub/barterhub-backend/internal/utils"
)

type AssetHandler struct {
	assetService   *services.AssetService
	paymentService *services.PaymentService
	storageService *services.StorageService
	gate           *services.UnlockService
}

func NewAssetHandler(assetService *services.AssetService, paymentService *services.PaymentService, storageService *services.StorageService, gate *services.UnlockService) *AssetHandler {
	return &AssetHandler{
		assetService:   assetService,
		paymentService: paymentService,
		storageService: storageService,
		gate:           gate,
	}
}

// GET /assets
func (h *AssetHandler) GetAssets(c *gin.Context) {
	params := services.AssetSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
	}

	if minStr := c.Query("price_min"); minStr != "" {
		if min, err := parseFloat(minStr); err == nil {
			params.PriceMin = &min
		}
	}
	if maxStr := c.Query("price_max"); maxStr != "" {
		if max, err := parseFloat(maxStr); err == nil {
			params.PriceMax = &max
		}
	}
	params.Location = c.Query("location")

	assets, total, err := h.assetService.SearchAssets(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(assets, total, params.PaginationParams))
}

// GET /assets/:id
func (h *AssetHandler) GetAsset(c *gin.Context) {
	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid asset ID", nil)
		return
	}

	var viewerID *uuid.UUID
	if uid, ok := currentUserID(c); ok {
		viewerID = &uid
	}

	asset, err := h.assetService.GetAsset(assetID, viewerID)
	if err != nil {
		if errors.Is(err, services.ErrUnknownAsset) {
			utils.NotFoundResponse(c, "asset")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"asset": asset,
	})
}

// GET /assets/:id/contact
//
// Gated endpoint: the seller's contact details cost the contact_seller unlock
// fee. Owners see their own details free of charge; everyone else gets a 402
// quote until they pay through POST /payments/unlock.
func (h *AssetHandler) GetSellerContact(c *gin.Context) {
	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid asset ID", nil)
		return
	}

	viewerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	asset, err := h.assetService.GetAsset(assetID, &viewerID)
	if err != nil {
		if errors.Is(err, services.ErrUnknownAsset) {
			utils.NotFoundResponse(c, "asset")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	if asset.OwnerID != viewerID && !h.gate.IsUnlocked(viewerID, assetID, models.UnlockPurposeContactSeller) {
		utils.PaymentRequiredResponse(c, gin.H{
			"purpose":  models.UnlockPurposeContactSeller,
			"asset_id": assetID,
			"amount":   h.paymentService.UnlockFee(models.UnlockPurposeContactSeller),
			"currency": asset.Currency,
		})
		return
	}

	utils.SuccessResponse(c, gin.H{
		"asset_id": assetID,
		"contact":  asset.Owner.ContactDetails(),
	})
}

// GET /assets/:id/similar
//
// Gated endpoint: the similar-items feed for a listing costs the
// similar_items unlock fee, paid per listing.
func (h *AssetHandler) GetSimilarAssets(c *gin.Context) {
	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid asset ID", nil)
		return
	}

	viewerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	asset, err := h.assetService.GetAsset(assetID, &viewerID)
	if err != nil {
		if errors.Is(err, services.ErrUnknownAsset) {
			utils.NotFoundResponse(c, "asset")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	if asset.OwnerID != viewerID && !h.gate.IsUnlocked(viewerID, assetID, models.UnlockPurposeSimilarItems) {
		utils.PaymentRequiredResponse(c, gin.H{
			"purpose":  models.UnlockPurposeSimilarItems,
			"asset_id": assetID,
			"amount":   h.paymentService.UnlockFee(models.UnlockPurposeSimilarItems),
			"currency": asset.Currency,
		})
		return
	}

	similar, err := h.assetService.SimilarAssets(assetID, 10)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"asset_id": assetID,
		"similar":  similar,
	})
}

// POST /assets
func (h *AssetHandler) CreateAsset(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	ownerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	asset, err := h.assetService.CreateAsset(ownerID, &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAssetCreated),
		"asset":   asset,
	})
}

// PUT /assets/:id
func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	ownerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid asset ID", nil)
		return
	}

	var req services.UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	asset, err := h.assetService.UpdateAsset(assetID, ownerID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownAsset):
			utils.NotFoundResponse(c, "asset")
		case errors.Is(err, services.ErrNotOwner):
			utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAssetNotOwner))
		case errors.Is(err, services.ErrAssetTraded):
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyAssetTraded))
		default:
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAssetUpdated),
		"asset":   asset,
	})
}

// DELETE /assets/:id
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	ownerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid asset ID", nil)
		return
	}

	if err := h.assetService.DeleteAsset(assetID, ownerID); err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownAsset):
			utils.NotFoundResponse(c, "asset")
		case errors.Is(err, services.ErrNotOwner):
			utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAssetNotOwner))
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAssetDeleted),
	})
}

// POST /assets/:id/mark-traded
func (h *AssetHandler) MarkTraded(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	ownerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid asset ID", nil)
		return
	}

	asset, err := h.assetService.MarkTraded(assetID, ownerID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownAsset):
			utils.NotFoundResponse(c, "asset")
		case errors.Is(err, services.ErrNotOwner):
			utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAssetNotOwner))
		case errors.Is(err, services.ErrAssetTraded):
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyAssetTraded))
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"asset": asset,
	})
}

// GET /assets/mine
func (h *AssetHandler) GetMyAssets(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	assets, total, err := h.assetService.GetOwnerAssets(ownerID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(assets, total, params))
}

// POST /assets/upload-images
func (h *AssetHandler) UploadImages(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	if _, ok := currentUserID(c); !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationRequired, "images"), nil)
		return
	}

	options := h.storageService.GetDefaultUploadOptions("assets")

	var results []services.UploadResult
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
			return
		}

		if err := h.storageService.ValidateImage(file); err != nil {
			file.Close()
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileInvalidType), err.Error())
			return
		}

		result, err := h.storageService.UploadFile(file, header, options)
		file.Close()
		if err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
			return
		}

		results = append(results, *result)
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyFileUploadSuccess),
		"uploads": results,
	})
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
