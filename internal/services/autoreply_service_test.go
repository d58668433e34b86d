// internal/services/autoreply_service_test.go
package services

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barterhub/barterhub-backend/internal/config"
	"github.com/barterhub/barterhub-backend/internal/models"
)

func testChatConfig() config.ChatConfig {
	return config.ChatConfig{
		AutoReplyEnabled: true,
		ReplyDelayMinMs:  1500,
		ReplyDelayMaxMs:  3000,
	}
}

// newTestAutoReply builds a simulator whose timer fires synchronously and
// whose random pick is pinned to the first fallback.
func newTestAutoReply(store *ChatService) *AutoReplyService {
	svc := NewAutoReplyService(store, nil, testChatConfig())
	svc.after = func(d time.Duration, f func()) { f() }
	svc.pick = func(n int) int { return 0 }
	return svc
}

type recordedEvent struct {
	to      string
	started bool
}

// fakeNotifier records typing transitions and delivered messages.
type fakeNotifier struct {
	mu       sync.Mutex
	events   []recordedEvent
	messages []models.Message
}

func (f *fakeNotifier) Typing(to, from string, typing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{to: to, started: typing})
}

func (f *fakeNotifier) NewMessage(msg models.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
}

func TestAutoReply_KeywordClassification(t *testing.T) {
	svc := newTestAutoReply(NewChatService())

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"price keyword", "What's the price?", "The price is slightly negotiable. What's your best offer?"},
		{"how much phrase", "HOW MUCH do you want for it?", "The price is slightly negotiable. What's your best offer?"},
		{"availability", "Is it still available?", "Yes, it's still available! Are you interested?"},
		{"still have phrase", "Do you still have it?", "Yes, it's still available! Are you interested?"},
		{"condition", "What condition is it in?", "It's in great condition, barely used. I can share more photos if you like."},
		{"quality", "How's the quality?", "It's in great condition, barely used. I can share more photos if you like."},
		{"meet", "Can we meet tomorrow?", "We can meet in town or arrange delivery. Where are you located?"},
		{"location", "What's your location?", "We can meet in town or arrange delivery. Where are you located?"},
		{"trade", "Would you trade for a phone?", "I'm open to trade offers. What do you have in mind?"},
		{"barter", "Open to barter?", "I'm open to trade offers. What do you have in mind?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.replyTo(tt.content, "Mountain Bike"))
		})
	}
}

func TestAutoReply_FirstGroupWinsOnMultipleMatches(t *testing.T) {
	svc := newTestAutoReply(NewChatService())

	// "hi" and "how much" both match; the price group is checked first
	got := svc.replyTo("hi, how much?", "Mountain Bike")
	assert.Equal(t, "The price is slightly negotiable. What's your best offer?", got)

	// price outranks availability
	got = svc.replyTo("how much? is it available?", "")
	assert.Equal(t, "The price is slightly negotiable. What's your best offer?", got)

	// "available" beats the trailing greeting group too
	got = svc.replyTo("hello, is it available?", "Mountain Bike")
	assert.Equal(t, "Yes, it's still available! Are you interested?", got)
}

func TestAutoReply_GreetingInterpolatesAssetTitle(t *testing.T) {
	svc := newTestAutoReply(NewChatService())

	got := svc.replyTo("Hello!", "Mountain Bike")
	assert.Equal(t, `Hello! Thanks for your interest in "Mountain Bike".`, got)

	got = svc.replyTo("hello", "")
	assert.Equal(t, "Hello! Thanks for reaching out.", got)
}

func TestAutoReply_FallbackForUnmatchedContent(t *testing.T) {
	svc := newTestAutoReply(NewChatService())

	for i := range fallbackReplies {
		i := i
		svc.pick = func(n int) int {
			require.Equal(t, len(fallbackReplies), n)
			return i
		}
		assert.Equal(t, fallbackReplies[i], svc.replyTo("ok", "Mountain Bike"))
	}
}

func TestAutoReply_ScheduleAppendsReply(t *testing.T) {
	store := NewChatService()
	svc := newTestAutoReply(store)

	viewer := uuid.New()
	seller := uuid.New()
	asset := uuid.New()

	trigger, err := store.Append(viewer, seller, "Is this still available?", &asset)
	require.NoError(t, err)
	require.Len(t, store.ConversationWith(viewer, seller), 1)

	svc.ScheduleReply(trigger, "Mountain Bike")

	conv := store.ConversationWith(viewer, seller)
	require.Len(t, conv, 2)

	reply := conv[1]
	assert.Equal(t, seller, reply.SenderID)
	assert.Equal(t, viewer, reply.ReceiverID)
	assert.Equal(t, "Yes, it's still available! Are you interested?", reply.Content)
	require.NotNil(t, reply.AssetID)
	assert.Equal(t, asset, *reply.AssetID)
}

func TestAutoReply_TypingIndicatorBracketsReply(t *testing.T) {
	store := NewChatService()
	notifier := &fakeNotifier{}
	svc := NewAutoReplyService(store, notifier, testChatConfig())
	svc.after = func(d time.Duration, f func()) { f() }
	svc.pick = func(n int) int { return 0 }

	viewer := uuid.New()
	seller := uuid.New()

	trigger, err := store.Append(viewer, seller, "hello", nil)
	require.NoError(t, err)

	svc.ScheduleReply(trigger, "Mountain Bike")

	require.Len(t, notifier.events, 2)
	assert.Equal(t, viewer.String(), notifier.events[0].to)
	assert.True(t, notifier.events[0].started)
	assert.Equal(t, viewer.String(), notifier.events[1].to)
	assert.False(t, notifier.events[1].started)

	require.Len(t, notifier.messages, 1)
	assert.Equal(t, `Hello! Thanks for your interest in "Mountain Bike".`, notifier.messages[0].Content)
}

func TestAutoReply_DelayWithinConfiguredRange(t *testing.T) {
	svc := NewAutoReplyService(NewChatService(), nil, testChatConfig())

	for i := 0; i < 200; i++ {
		d := svc.delay()
		assert.GreaterOrEqual(t, d, 1500*time.Millisecond)
		assert.Less(t, d, 3000*time.Millisecond)
	}
}

func TestAutoReply_DegenerateDelayRange(t *testing.T) {
	cfg := config.ChatConfig{ReplyDelayMinMs: 2000, ReplyDelayMaxMs: 2000}
	svc := NewAutoReplyService(NewChatService(), nil, cfg)

	assert.Equal(t, 2000*time.Millisecond, svc.delay())
}
