// internal/services/chat_service.go
package services

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/barterhub/barterhub-backend/internal/models"
)

// pairKey identifies an unordered participant pair.
type pairKey struct {
	a, b uuid.UUID
}

func newPairKey(x, y uuid.UUID) pairKey {
	if x.String() < y.String() {
		return pairKey{x, y}
	}
	return pairKey{y, x}
}

// ChatService holds the append-only message log and derives per-counterpart
// conversation views from it. The log is memory-only and resets on restart;
// appends are serialized by the mutex so the log has a total order equal to
// call order. A secondary index keyed by unordered participant pair avoids
// scanning the full log on every read.
type ChatService struct {
	mu      sync.RWMutex
	log     []models.Message
	byPair  map[pairKey][]int
	entropy *ulid.MonotonicEntropy

	now func() time.Time
}

func NewChatService() *ChatService {
	return &ChatService{
		byPair:  make(map[pairKey][]int),
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Append validates and stores one message at the end of the log. Content must
// be non-empty after trimming and a user cannot message themselves; both are
// rejected with ErrInvalidMessage. Messages are immutable once appended.
func (s *ChatService) Append(senderID, receiverID uuid.UUID, content string, assetID *uuid.UUID) (models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Message{}, fmt.Errorf("%w: empty content", ErrInvalidMessage)
	}
	if senderID == receiverID {
		return models.Message{}, fmt.Errorf("%w: sender and receiver are the same user", ErrInvalidMessage)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msg := models.Message{
		ID:         ulid.MustNew(ulid.Now(), s.entropy).String(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  s.now(),
		AssetID:    assetID,
	}

	idx := len(s.log)
	s.log = append(s.log, msg)

	key := newPairKey(senderID, receiverID)
	s.byPair[key] = append(s.byPair[key], idx)

	return msg, nil
}

// ConversationWith returns every message exchanged between the two users, in
// either direction, ascending by timestamp with ties broken by insertion
// order. The result is a fresh copy; the log itself is never reordered.
func (s *ChatService) ConversationWith(viewerID, counterpartID uuid.UUID) []models.Message {
	return s.conversation(viewerID, counterpartID, nil)
}

// ConversationForAsset is the asset-scoped variant: only messages tagged with
// the given asset are included.
func (s *ChatService) ConversationForAsset(viewerID, counterpartID, assetID uuid.UUID) []models.Message {
	return s.conversation(viewerID, counterpartID, &assetID)
}

func (s *ChatService) conversation(viewerID, counterpartID uuid.UUID, assetID *uuid.UUID) []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	indexes := s.byPair[newPairKey(viewerID, counterpartID)]
	out := make([]models.Message, 0, len(indexes))
	for _, i := range indexes {
		msg := s.log[i]
		if assetID != nil && (msg.AssetID == nil || *msg.AssetID != *assetID) {
			continue
		}
		out = append(out, msg)
	}

	// Index entries are already in insertion order, so a stable sort keeps
	// that order for equal timestamps.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})

	return out
}

// ConversationSummary backs the chat list screen: one entry per counterpart
// with the latest message.
type ConversationSummary struct {
	CounterpartID uuid.UUID      `json:"counterpart_id"`
	LastMessage   models.Message `json:"last_message"`
	MessageCount  int            `json:"message_count"`
}

// Partners lists the viewer's conversations, most recently active first.
func (s *ChatService) Partners(viewerID uuid.UUID) []ConversationSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var summaries []ConversationSummary
	for key, indexes := range s.byPair {
		var counterpart uuid.UUID
		switch viewerID {
		case key.a:
			counterpart = key.b
		case key.b:
			counterpart = key.a
		default:
			continue
		}
		if len(indexes) == 0 {
			continue
		}
		summaries = append(summaries, ConversationSummary{
			CounterpartID: counterpart,
			LastMessage:   s.log[indexes[len(indexes)-1]],
			MessageCount:  len(indexes),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastMessage.Timestamp.After(summaries[j].LastMessage.Timestamp)
	})

	return summaries
}
