// internal/services/chat_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatService_AppendAndRead(t *testing.T) {
	store := NewChatService()

	alice := uuid.New()
	bob := uuid.New()

	msg, err := store.Append(alice, bob, "Is this still available?", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, alice, msg.SenderID)
	assert.Equal(t, bob, msg.ReceiverID)
	assert.Equal(t, "Is this still available?", msg.Content)
	assert.False(t, msg.Timestamp.IsZero())

	conv := store.ConversationWith(alice, bob)
	require.Len(t, conv, 1)
	assert.Equal(t, msg.ID, conv[0].ID)
}

func TestChatService_RejectsInvalidMessages(t *testing.T) {
	store := NewChatService()

	alice := uuid.New()
	bob := uuid.New()

	_, err := store.Append(alice, bob, "", nil)
	assert.ErrorIs(t, err, ErrInvalidMessage)

	_, err = store.Append(alice, bob, "   \t\n", nil)
	assert.ErrorIs(t, err, ErrInvalidMessage)

	_, err = store.Append(alice, alice, "note to self", nil)
	assert.ErrorIs(t, err, ErrInvalidMessage)

	assert.Empty(t, store.ConversationWith(alice, bob))
}

func TestChatService_ConversationIsSymmetric(t *testing.T) {
	store := NewChatService()

	alice := uuid.New()
	bob := uuid.New()

	_, err := store.Append(alice, bob, "Hello", nil)
	require.NoError(t, err)
	_, err = store.Append(bob, alice, "Hi there", nil)
	require.NoError(t, err)

	fromAlice := store.ConversationWith(alice, bob)
	fromBob := store.ConversationWith(bob, alice)

	require.Len(t, fromAlice, 2)
	assert.Equal(t, fromAlice, fromBob)
}

func TestChatService_ConversationExcludesOtherPairs(t *testing.T) {
	store := NewChatService()

	alice := uuid.New()
	bob := uuid.New()
	carol := uuid.New()

	_, err := store.Append(alice, bob, "For bob", nil)
	require.NoError(t, err)
	_, err = store.Append(alice, carol, "For carol", nil)
	require.NoError(t, err)
	_, err = store.Append(carol, bob, "Carol to bob", nil)
	require.NoError(t, err)

	conv := store.ConversationWith(alice, bob)
	require.Len(t, conv, 1)
	assert.Equal(t, "For bob", conv[0].Content)
}

func TestChatService_OrderingByTimestampWithInsertionTiebreak(t *testing.T) {
	store := NewChatService()

	alice := uuid.New()
	bob := uuid.New()

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	stamps := []time.Time{
		base.Add(2 * time.Second), // first insert, later timestamp
		base,                      // second insert, earliest timestamp
		base,                      // third insert, equal timestamp
	}
	i := 0
	store.now = func() time.Time {
		ts := stamps[i]
		i++
		return ts
	}

	_, err := store.Append(alice, bob, "third by time", nil)
	require.NoError(t, err)
	_, err = store.Append(alice, bob, "first by time", nil)
	require.NoError(t, err)
	_, err = store.Append(bob, alice, "second by tiebreak", nil)
	require.NoError(t, err)

	conv := store.ConversationWith(alice, bob)
	require.Len(t, conv, 3)
	assert.Equal(t, "first by time", conv[0].Content)
	assert.Equal(t, "second by tiebreak", conv[1].Content)
	assert.Equal(t, "third by time", conv[2].Content)
}

func TestChatService_AssetScopedConversation(t *testing.T) {
	store := NewChatService()

	alice := uuid.New()
	bob := uuid.New()
	bike := uuid.New()
	sofa := uuid.New()

	_, err := store.Append(alice, bob, "About the bike", &bike)
	require.NoError(t, err)
	_, err = store.Append(alice, bob, "About the sofa", &sofa)
	require.NoError(t, err)
	_, err = store.Append(alice, bob, "General chat", nil)
	require.NoError(t, err)

	bikeConv := store.ConversationForAsset(alice, bob, bike)
	require.Len(t, bikeConv, 1)
	assert.Equal(t, "About the bike", bikeConv[0].Content)

	full := store.ConversationWith(alice, bob)
	assert.Len(t, full, 3)
}

func TestChatService_MessageIDsAreUniqueAndSortable(t *testing.T) {
	store := NewChatService()

	alice := uuid.New()
	bob := uuid.New()

	seen := make(map[string]bool)
	var prev string
	for i := 0; i < 100; i++ {
		msg, err := store.Append(alice, bob, "ping", nil)
		require.NoError(t, err)
		assert.False(t, seen[msg.ID], "duplicate message ID %s", msg.ID)
		seen[msg.ID] = true
		if prev != "" {
			// ULIDs from a monotonic source are lexicographically increasing
			assert.Less(t, prev, msg.ID)
		}
		prev = msg.ID
	}
}

func TestChatService_Partners(t *testing.T) {
	store := NewChatService()

	alice := uuid.New()
	bob := uuid.New()
	carol := uuid.New()

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	stamps := []time.Time{base, base.Add(time.Minute), base.Add(2 * time.Minute)}
	i := 0
	store.now = func() time.Time {
		ts := stamps[i]
		i++
		return ts
	}

	_, err := store.Append(alice, bob, "first", nil)
	require.NoError(t, err)
	_, err = store.Append(bob, alice, "second", nil)
	require.NoError(t, err)
	_, err = store.Append(carol, alice, "third", nil)
	require.NoError(t, err)

	partners := store.Partners(alice)
	require.Len(t, partners, 2)

	// Most recently active first
	assert.Equal(t, carol, partners[0].CounterpartID)
	assert.Equal(t, "third", partners[0].LastMessage.Content)
	assert.Equal(t, 1, partners[0].MessageCount)

	assert.Equal(t, bob, partners[1].CounterpartID)
	assert.Equal(t, "second", partners[1].LastMessage.Content)
	assert.Equal(t, 2, partners[1].MessageCount)

	assert.Empty(t, store.Partners(uuid.New()))
}
