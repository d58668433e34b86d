// internal/models/asset.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Asset struct {
	BaseModel
	OwnerID           uuid.UUID      `json:"owner_id" gorm:"type:uuid;not null;index"`
	Title             string         `json:"title" gorm:"size:255;not null"`
	Description       string         `json:"description" gorm:"type:text"`
	Category          string         `json:"category" gorm:"size:100;index"`
	Price             float64        `json:"price" gorm:"type:decimal(12,2);not null"`
	Currency          string         `json:"currency" gorm:"size:3;default:'UGX'"`
	Location          string         `json:"location" gorm:"size:255"`
	Images            pq.StringArray `json:"images" gorm:"type:text[]"`
	Condition         string         `json:"condition" gorm:"size:50"`
	Status            AssetStatus    `json:"status" gorm:"type:varchar(20);default:'active';index"`
	BarterPreferences pq.StringArray `json:"barter_preferences,omitempty" gorm:"type:text[]"`
	Negotiable        bool           `json:"negotiable" gorm:"default:false"`
	DeliveryAvailable bool           `json:"delivery_available" gorm:"default:false"`
	ViewCount         int64          `json:"view_count" gorm:"default:0"`

	// Relationships
	Owner User `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}

// CanTransitionTo enforces the listing lifecycle: traded is terminal, and a
// listing only becomes traded from active.
func (a *Asset) CanTransitionTo(next AssetStatus) bool {
	if a.Status == next {
		return true
	}
	switch a.Status {
	case AssetStatusActive:
		return next == AssetStatusInactive || next == AssetStatusTraded
	case AssetStatusInactive:
		return next == AssetStatusActive
	case AssetStatusTraded:
		return false
	}
	return false
}
