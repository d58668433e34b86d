// internal/models/transaction.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Transaction is the persisted record of a resolved unlock payment attempt.
type Transaction struct {
	BaseModel
	TransactionType  TransactionType   `json:"transaction_type" gorm:"type:varchar(20);not null;index"`
	ViewerID         uuid.UUID         `json:"viewer_id" gorm:"type:uuid;not null;index"`
	SellerID         uuid.UUID         `json:"seller_id" gorm:"type:uuid;not null;index"`
	AssetID          uuid.UUID         `json:"asset_id" gorm:"type:uuid;not null;index"`
	Purpose          UnlockPurpose     `json:"purpose" gorm:"type:varchar(20);not null"`
	Amount           float64           `json:"amount" gorm:"type:decimal(12,2);not null"`
	Currency         string            `json:"currency" gorm:"size:3;not null"`
	PaymentMethod    string            `json:"payment_method" gorm:"size:50"`
	PaymentReference string            `json:"payment_reference" gorm:"size:255"`
	Status           TransactionStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	FailureReason    string            `json:"failure_reason,omitempty" gorm:"size:50"`
	ProcessedAt      *time.Time        `json:"processed_at"`

	// Relationships
	Viewer User  `json:"viewer,omitempty" gorm:"foreignKey:ViewerID"`
	Seller User  `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Asset  Asset `json:"asset,omitempty" gorm:"foreignKey:AssetID"`
}
