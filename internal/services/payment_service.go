// internal/services/payment_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/barterhub/barterhub-backend/internal/config"
	"github.com/barterhub/barterhub-backend/internal/models"
	"github.com/barterhub/barterhub-backend/internal/payment"
	"github.com/barterhub/barterhub-backend/internal/utils"
)

// PaymentService orchestrates unlock purchases: it quotes the fee, runs the
// payment through the configured provider, folds the outcome into the unlock
// gate, and records a Transaction row either way. The gate holds the unlock
// truth; transactions are the durable audit trail.
type PaymentService struct {
	db        *gorm.DB
	cfg       *config.Config
	gate      *UnlockService
	providers map[payment.Method]payment.Provider
}

type UnlockRequest struct {
	AssetID        uuid.UUID              `json:"asset_id" validate:"required"`
	Purpose        models.UnlockPurpose   `json:"purpose" validate:"required"`
	PaymentMethod  payment.Method         `json:"payment_method" validate:"required"`
	PhoneNumber    string                 `json:"phone_number,omitempty"`
	MobileProvider payment.MobileProvider `json:"mobile_provider,omitempty"`
	CardToken      string                 `json:"card_token,omitempty"`
}

type UnlockResponse struct {
	Unlocked      bool                 `json:"unlocked"`
	AssetID       uuid.UUID            `json:"asset_id"`
	Purpose       models.UnlockPurpose `json:"purpose"`
	Amount        float64              `json:"amount"`
	Currency      string               `json:"currency"`
	TransactionID uuid.UUID            `json:"transaction_id"`
}

func NewPaymentService(db *gorm.DB, cfg *config.Config, gate *UnlockService, providers map[payment.Method]payment.Provider) *PaymentService {
	return &PaymentService{
		db:        db,
		cfg:       cfg,
		gate:      gate,
		providers: providers,
	}
}

// UnlockFee returns the flat fee charged for a purpose.
func (s *PaymentService) UnlockFee(purpose models.UnlockPurpose) float64 {
	switch purpose {
	case models.UnlockPurposeSimilarItems:
		return s.cfg.Payment.SimilarItemsFee
	default:
		return s.cfg.Payment.ContactUnlockFee
	}
}

// ProcessUnlock runs the full pay-then-unlock flow for one (viewer, asset,
// purpose) triple. Owners never pay for their own listings, and a repeat
// purchase of an already-unlocked triple short-circuits without charging.
// A declined payment leaves the triple locked and surfaces a payment.Error;
// the viewer may retry with a fresh call.
func (s *PaymentService) ProcessUnlock(ctx context.Context, viewerID uuid.UUID, req *UnlockRequest) (*UnlockResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var asset models.Asset
	if err := s.db.First(&asset, "id = ?", req.AssetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownAsset
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if asset.OwnerID == viewerID {
		return nil, errors.New("owners do not pay to unlock their own listings")
	}

	// Already paid for: report unlocked without charging again.
	if s.gate.IsUnlocked(viewerID, req.AssetID, req.Purpose) {
		return &UnlockResponse{
			Unlocked: true,
			AssetID:  req.AssetID,
			Purpose:  req.Purpose,
			Amount:   0,
			Currency: s.cfg.Payment.Currency,
		}, nil
	}

	amount := s.UnlockFee(req.Purpose)
	attempt, err := s.gate.RequestUnlock(viewerID, req.AssetID, req.Purpose, amount, s.cfg.Payment.Currency)
	if err != nil {
		return nil, err
	}

	provider, ok := s.providers[req.PaymentMethod]
	if !ok {
		return nil, fmt.Errorf("unsupported payment method %q", req.PaymentMethod)
	}

	outcome, err := provider.SubmitPayment(ctx, payment.Request{
		Amount:         attempt.Amount,
		Currency:       attempt.Currency,
		Method:         req.PaymentMethod,
		PhoneNumber:    req.PhoneNumber,
		MobileProvider: req.MobileProvider,
		CardToken:      req.CardToken,
		Reference:      attempt.ID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("payment provider error: %w", err)
	}

	confirmErr := s.gate.ConfirmPayment(attempt, outcome)
	tx := s.recordTransaction(viewerID, &asset, attempt, req, outcome)

	if confirmErr != nil {
		return nil, confirmErr
	}

	return &UnlockResponse{
		Unlocked:      true,
		AssetID:       req.AssetID,
		Purpose:       req.Purpose,
		Amount:        attempt.Amount,
		Currency:      attempt.Currency,
		TransactionID: tx.ID,
	}, nil
}

func (s *PaymentService) recordTransaction(viewerID uuid.UUID, asset *models.Asset, attempt *models.PaymentAttempt, req *UnlockRequest, outcome payment.Outcome) *models.Transaction {
	tx := &models.Transaction{
		TransactionType:  models.TransactionTypeUnlockFee,
		ViewerID:         viewerID,
		SellerID:         asset.OwnerID,
		AssetID:          asset.ID,
		Purpose:          attempt.Purpose,
		Amount:           attempt.Amount,
		Currency:         attempt.Currency,
		PaymentMethod:    string(req.PaymentMethod),
		PaymentReference: outcome.ProviderRef,
	}

	if outcome.Success {
		now := time.Now()
		tx.Status = models.TransactionStatusCompleted
		tx.ProcessedAt = &now
	} else {
		tx.Status = models.TransactionStatusFailed
		tx.FailureReason = string(outcome.Reason)
	}

	if err := s.db.Create(tx).Error; err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"viewer_id": viewerID,
			"asset_id":  asset.ID,
			"purpose":   attempt.Purpose,
		}).Error("Failed to record unlock transaction")
	}

	return tx
}

func (s *PaymentService) GetPaymentHistory(userID uuid.UUID, params utils.PaginationParams) ([]models.Transaction, int64, error) {
	query := s.db.Model(&models.Transaction{}).
		Where("viewer_id = ? OR seller_id = ?", userID, userID).
		Preload("Asset")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	allowedSortFields := []string{"created_at", "amount", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var transactions []models.Transaction
	if err := query.Find(&transactions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	return transactions, total, nil
}

// GetTransaction returns one transaction if the caller was a party to it.
func (s *PaymentService) GetTransaction(id uuid.UUID, userID uuid.UUID) (*models.Transaction, error) {
	var tx models.Transaction
	if err := s.db.Preload("Asset").First(&tx, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("transaction not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if tx.ViewerID != userID && tx.SellerID != userID {
		return nil, errors.New("transaction not found")
	}

	return &tx, nil
}
