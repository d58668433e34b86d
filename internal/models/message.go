// internal/models/message.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is one chat line. Unlike the persisted entities it lives only in
// the in-memory conversation store and resets on restart; it therefore
// carries no gorm tags. IDs are ULIDs so identifiers sort in creation order.
type Message struct {
	ID         string     `json:"id"`
	SenderID   uuid.UUID  `json:"sender_id"`
	ReceiverID uuid.UUID  `json:"receiver_id"`
	Content    string     `json:"content"`
	Timestamp  time.Time  `json:"timestamp"`
	AssetID    *uuid.UUID `json:"asset_id,omitempty"`
}

// PaymentAttempt is one outstanding request to pay an unlock fee. It is
// ephemeral: created by RequestUnlock, discarded once the outcome is folded
// into the unlock state (and a Transaction row).
type PaymentAttempt struct {
	ID        uuid.UUID     `json:"id"`
	ViewerID  uuid.UUID     `json:"viewer_id"`
	AssetID   uuid.UUID     `json:"asset_id"`
	Purpose   UnlockPurpose `json:"purpose"`
	Amount    float64       `json:"amount"`
	Currency  string        `json:"currency"`
	CreatedAt time.Time     `json:"created_at"`
}
