// internal/services/autoreply_service.go
package services

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/barterhub/barterhub-backend/internal/config"
	"github.com/barterhub/barterhub-backend/internal/models"
)

// Notifier pushes chat presence and delivery events to connected clients.
// The websocket hub implements it; a nil notifier disables the signals.
type Notifier interface {
	Typing(to, from string, typing bool)
	NewMessage(msg models.Message)
}

// AutoReplyService emulates the counterparty in a conversation: after a
// message arrives it signals a typing indicator, waits a randomized delay in
// [1500ms, 3000ms), and appends a canned reply chosen by keyword matching.
// The delay, random pick, and timer are injectable so tests run
// deterministically with no wall-clock dependence.
type AutoReplyService struct {
	store    *ChatService
	notifier Notifier

	delay func() time.Duration
	pick  func(n int) int
	after func(d time.Duration, f func())
}

func NewAutoReplyService(store *ChatService, notifier Notifier, cfg config.ChatConfig) *AutoReplyService {
	min := time.Duration(cfg.ReplyDelayMinMs) * time.Millisecond
	max := time.Duration(cfg.ReplyDelayMaxMs) * time.Millisecond

	var mu sync.Mutex
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	return &AutoReplyService{
		store:    store,
		notifier: notifier,
		delay: func() time.Duration {
			mu.Lock()
			defer mu.Unlock()
			if max <= min {
				return min
			}
			return min + time.Duration(rng.Int63n(int64(max-min)))
		},
		pick: func(n int) int {
			mu.Lock()
			defer mu.Unlock()
			return rng.Intn(n)
		},
		after: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// replyGroup pairs trigger keywords with the canned response. Groups are
// checked in order; the first match wins even if a later group also matches.
type replyGroup struct {
	keywords []string
	response string
}

var replyGroups = []replyGroup{
	{[]string{"price", "how much"}, "The price is slightly negotiable. What's your best offer?"},
	{[]string{"available", "still have"}, "Yes, it's still available! Are you interested?"},
	{[]string{"condition", "quality"}, "It's in great condition, barely used. I can share more photos if you like."},
	{[]string{"meet", "location"}, "We can meet in town or arrange delivery. Where are you located?"},
	{[]string{"trade", "barter"}, "I'm open to trade offers. What do you have in mind?"},
	{[]string{"hello", "hi"}, ""}, // greeting interpolates the asset title, see replyTo
}

var fallbackReplies = []string{
	"Okay, let me get back to you on that.",
	"Sounds good!",
	"Let me check and get back to you shortly.",
	"Thanks for the message, I'll respond soon.",
}

// ScheduleReply queues a synthetic reply to the trigger message. The reply is
// sent from the trigger's receiver back to its sender, tagged with the same
// asset. The typing indicator stays up for the whole delay.
func (s *AutoReplyService) ScheduleReply(trigger models.Message, assetTitle string) {
	viewerID := trigger.SenderID
	counterpartID := trigger.ReceiverID
	reply := s.replyTo(trigger.Content, assetTitle)

	if s.notifier != nil {
		s.notifier.Typing(viewerID.String(), counterpartID.String(), true)
	}

	s.after(s.delay(), func() {
		if s.notifier != nil {
			s.notifier.Typing(viewerID.String(), counterpartID.String(), false)
		}

		msg, err := s.store.Append(counterpartID, viewerID, reply, trigger.AssetID)
		if err != nil {
			logrus.WithError(err).Warn("Failed to append auto-reply")
			return
		}

		if s.notifier != nil {
			s.notifier.NewMessage(msg)
		}
	})
}

// replyTo selects the canned response for a trigger message. Pure function:
// the same input always yields the same group, and only the no-match fallback
// consults the random source.
func (s *AutoReplyService) replyTo(content, assetTitle string) string {
	lowered := strings.ToLower(content)

	for i, group := range replyGroups {
		for _, kw := range group.keywords {
			if strings.Contains(lowered, kw) {
				if i == len(replyGroups)-1 {
					return greeting(assetTitle)
				}
				return group.response
			}
		}
	}

	return fallbackReplies[s.pick(len(fallbackReplies))]
}

func greeting(assetTitle string) string {
	if assetTitle != "" {
		return fmt.Sprintf("Hello! Thanks for your interest in \"%s\".", assetTitle)
	}
	return "Hello! Thanks for reaching out."
}
