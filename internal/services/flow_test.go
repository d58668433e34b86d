// internal/services/flow_test.go
package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barterhub/barterhub-backend/internal/models"
	"github.com/barterhub/barterhub-backend/internal/payment"
)

// Full buyer flow: pay the contact unlock fee, message the seller, get the
// simulated reply back.
func TestUnlockThenChatFlow(t *testing.T) {
	gate := NewUnlockService()
	store := NewChatService()

	autoReply := NewAutoReplyService(store, nil, testChatConfig())
	autoReply.after = func(d time.Duration, f func()) { f() }

	viewer := uuid.New()
	seller := uuid.New()
	asset := uuid.New()

	// Contact details start locked
	require.False(t, gate.IsUnlocked(viewer, asset, models.UnlockPurposeContactSeller))

	attempt, err := gate.RequestUnlock(viewer, asset, models.UnlockPurposeContactSeller, 5000, "UGX")
	require.NoError(t, err)
	require.NoError(t, gate.ConfirmPayment(attempt, payment.Outcome{Success: true, ProviderRef: "sim_flow"}))
	require.True(t, gate.IsUnlocked(viewer, asset, models.UnlockPurposeContactSeller))

	// First message, then the synthetic seller reply
	trigger, err := store.Append(viewer, seller, "Is this still available?", &asset)
	require.NoError(t, err)

	autoReply.ScheduleReply(trigger, "Mountain Bike")

	conv := store.ConversationForAsset(viewer, seller, asset)
	require.Len(t, conv, 2)
	assert.Equal(t, viewer, conv[0].SenderID)
	assert.Equal(t, seller, conv[1].SenderID)
	assert.Equal(t, "Yes, it's still available! Are you interested?", conv[1].Content)

	// The unlock survives unrelated activity
	assert.True(t, gate.IsUnlocked(viewer, asset, models.UnlockPurposeContactSeller))
	assert.False(t, gate.IsUnlocked(viewer, asset, models.UnlockPurposeSimilarItems))
}
