// internal/services/unlock_service.go
package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/barterhub/barterhub-backend/internal/models"
	"github.com/barterhub/barterhub-backend/internal/payment"
)

type unlockKey struct {
	viewer  uuid.UUID
	asset   uuid.UUID
	purpose models.UnlockPurpose
}

// UnlockService is the paywall gate: it decides, per (viewer, asset, purpose)
// triple, whether gated content may be shown, and drives the pay-then-unlock
// transition. Unlock state is process-scoped and memory-only; it resets on
// restart.
//
// A triple moves Locked -> Pending -> Unlocked, or back to Locked on a failed
// payment. Unlocked is terminal: once a payment is confirmed the triple never
// reverts. Concurrent attempts for the same triple are allowed; the gate
// imposes no exclusivity, callers serialize at the UI layer.
type UnlockService struct {
	mu       sync.RWMutex
	unlocked map[unlockKey]time.Time
}

func NewUnlockService() *UnlockService {
	return &UnlockService{
		unlocked: make(map[unlockKey]time.Time),
	}
}

// IsUnlocked reports whether a successful payment was confirmed for exactly
// this triple. Pure read, no side effects.
func (s *UnlockService) IsUnlocked(viewerID, assetID uuid.UUID, purpose models.UnlockPurpose) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.unlocked[unlockKey{viewerID, assetID, purpose}]
	return ok
}

// RequestUnlock constructs a pending payment attempt. It does not mutate
// unlock state; the attempt only takes effect through ConfirmPayment.
func (s *UnlockService) RequestUnlock(viewerID, assetID uuid.UUID, purpose models.UnlockPurpose, amount float64, currency string) (*models.PaymentAttempt, error) {
	if !purpose.Valid() {
		return nil, fmt.Errorf("invalid unlock purpose %q", purpose)
	}
	if amount <= 0 {
		return nil, errors.New("unlock amount must be positive")
	}

	return &models.PaymentAttempt{
		ID:        uuid.New(),
		ViewerID:  viewerID,
		AssetID:   assetID,
		Purpose:   purpose,
		Amount:    amount,
		Currency:  currency,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ConfirmPayment folds a provider outcome into the gate. On success the
// attempt's triple becomes unlocked; confirming an already-unlocked triple is
// a no-op. On failure the state is untouched and the decline reason is
// returned for the caller to surface. Retries go through a fresh
// RequestUnlock.
func (s *UnlockService) ConfirmPayment(attempt *models.PaymentAttempt, outcome payment.Outcome) error {
	if attempt == nil {
		return errors.New("nil payment attempt")
	}

	if !outcome.Success {
		logrus.WithFields(logrus.Fields{
			"viewer_id": attempt.ViewerID,
			"asset_id":  attempt.AssetID,
			"purpose":   attempt.Purpose,
			"reason":    outcome.Reason,
		}).Info("Unlock payment declined")
		return &payment.Error{Reason: outcome.Reason}
	}

	key := unlockKey{attempt.ViewerID, attempt.AssetID, attempt.Purpose}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.unlocked[key]; ok {
		return nil
	}
	s.unlocked[key] = time.Now().UTC()

	logrus.WithFields(logrus.Fields{
		"viewer_id": attempt.ViewerID,
		"asset_id":  attempt.AssetID,
		"purpose":   attempt.Purpose,
		"amount":    attempt.Amount,
		"currency":  attempt.Currency,
	}).Info("Content unlocked")

	return nil
}
