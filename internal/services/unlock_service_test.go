// internal/services/unlock_service_test.go
package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barterhub/barterhub-backend/internal/models"
	"github.com/barterhub/barterhub-backend/internal/payment"
)

func TestUnlockService_LockedByDefault(t *testing.T) {
	gate := NewUnlockService()

	viewer := uuid.New()
	asset := uuid.New()

	assert.False(t, gate.IsUnlocked(viewer, asset, models.UnlockPurposeContactSeller))
	assert.False(t, gate.IsUnlocked(viewer, asset, models.UnlockPurposeSimilarItems))
}

func TestUnlockService_SuccessfulPaymentUnlocks(t *testing.T) {
	gate := NewUnlockService()

	viewer := uuid.New()
	asset := uuid.New()

	attempt, err := gate.RequestUnlock(viewer, asset, models.UnlockPurposeContactSeller, 5000, "UGX")
	require.NoError(t, err)
	require.NotNil(t, attempt)

	// Requesting alone must not change state
	assert.False(t, gate.IsUnlocked(viewer, asset, models.UnlockPurposeContactSeller))

	err = gate.ConfirmPayment(attempt, payment.Outcome{Success: true, ProviderRef: "sim_test"})
	require.NoError(t, err)

	assert.True(t, gate.IsUnlocked(viewer, asset, models.UnlockPurposeContactSeller))
}

func TestUnlockService_UnlockIsScopedToTriple(t *testing.T) {
	gate := NewUnlockService()

	viewer := uuid.New()
	otherViewer := uuid.New()
	asset := uuid.New()
	otherAsset := uuid.New()

	attempt, err := gate.RequestUnlock(viewer, asset, models.UnlockPurposeContactSeller, 5000, "UGX")
	require.NoError(t, err)
	require.NoError(t, gate.ConfirmPayment(attempt, payment.Outcome{Success: true}))

	assert.True(t, gate.IsUnlocked(viewer, asset, models.UnlockPurposeContactSeller))

	// Same asset, different purpose
	assert.False(t, gate.IsUnlocked(viewer, asset, models.UnlockPurposeSimilarItems))
	// Same purpose, different asset
	assert.False(t, gate.IsUnlocked(viewer, otherAsset, models.UnlockPurposeContactSeller))
	// Same asset and purpose, different viewer
	assert.False(t, gate.IsUnlocked(otherViewer, asset, models.UnlockPurposeContactSeller))
}

func TestUnlockService_FailedPaymentKeepsLocked(t *testing.T) {
	gate := NewUnlockService()

	viewer := uuid.New()
	asset := uuid.New()

	attempt, err := gate.RequestUnlock(viewer, asset, models.UnlockPurposeContactSeller, 5000, "UGX")
	require.NoError(t, err)

	err = gate.ConfirmPayment(attempt, payment.Outcome{Success: false, Reason: payment.ReasonInsufficientFunds})
	require.Error(t, err)

	var payErr *payment.Error
	require.True(t, errors.As(err, &payErr))
	assert.Equal(t, payment.ReasonInsufficientFunds, payErr.Reason)

	assert.False(t, gate.IsUnlocked(viewer, asset, models.UnlockPurposeContactSeller))
}

func TestUnlockService_RetryAfterFailureSucceeds(t *testing.T) {
	gate := NewUnlockService()

	viewer := uuid.New()
	asset := uuid.New()

	first, err := gate.RequestUnlock(viewer, asset, models.UnlockPurposeSimilarItems, 5000, "UGX")
	require.NoError(t, err)
	require.Error(t, gate.ConfirmPayment(first, payment.Outcome{Success: false, Reason: payment.ReasonTimeout}))
	assert.False(t, gate.IsUnlocked(viewer, asset, models.UnlockPurposeSimilarItems))

	second, err := gate.RequestUnlock(viewer, asset, models.UnlockPurposeSimilarItems, 5000, "UGX")
	require.NoError(t, err)
	require.NoError(t, gate.ConfirmPayment(second, payment.Outcome{Success: true}))

	assert.True(t, gate.IsUnlocked(viewer, asset, models.UnlockPurposeSimilarItems))
}

func TestUnlockService_ConfirmIsIdempotent(t *testing.T) {
	gate := NewUnlockService()

	viewer := uuid.New()
	asset := uuid.New()

	attempt, err := gate.RequestUnlock(viewer, asset, models.UnlockPurposeContactSeller, 5000, "UGX")
	require.NoError(t, err)

	require.NoError(t, gate.ConfirmPayment(attempt, payment.Outcome{Success: true}))
	require.NoError(t, gate.ConfirmPayment(attempt, payment.Outcome{Success: true}))

	assert.True(t, gate.IsUnlocked(viewer, asset, models.UnlockPurposeContactSeller))
}

func TestUnlockService_UnlockedNeverReverts(t *testing.T) {
	gate := NewUnlockService()

	viewer := uuid.New()
	asset := uuid.New()

	attempt, err := gate.RequestUnlock(viewer, asset, models.UnlockPurposeContactSeller, 5000, "UGX")
	require.NoError(t, err)
	require.NoError(t, gate.ConfirmPayment(attempt, payment.Outcome{Success: true}))

	// A later failed attempt for the same triple must not re-lock it
	late, err := gate.RequestUnlock(viewer, asset, models.UnlockPurposeContactSeller, 5000, "UGX")
	require.NoError(t, err)
	require.Error(t, gate.ConfirmPayment(late, payment.Outcome{Success: false, Reason: payment.ReasonNetworkError}))

	assert.True(t, gate.IsUnlocked(viewer, asset, models.UnlockPurposeContactSeller))
}

func TestUnlockService_RequestValidation(t *testing.T) {
	gate := NewUnlockService()

	viewer := uuid.New()
	asset := uuid.New()

	_, err := gate.RequestUnlock(viewer, asset, models.UnlockPurpose("premium_boost"), 5000, "UGX")
	assert.Error(t, err)

	_, err = gate.RequestUnlock(viewer, asset, models.UnlockPurposeContactSeller, 0, "UGX")
	assert.Error(t, err)

	_, err = gate.RequestUnlock(viewer, asset, models.UnlockPurposeContactSeller, -100, "UGX")
	assert.Error(t, err)
}

func TestUnlockService_ConfirmNilAttempt(t *testing.T) {
	gate := NewUnlockService()

	err := gate.ConfirmPayment(nil, payment.Outcome{Success: true})
	assert.Error(t, err)
}
