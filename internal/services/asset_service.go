// internal/services/asset_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/barterhub/barterhub-backend/internal/models"
	"github.com/barterhub/barterhub-backend/internal/utils"
)

type AssetService struct {
	db *gorm.DB
}

type CreateAssetRequest struct {
	Title             string   `json:"title" validate:"required,min=3,max=255"`
	Description       string   `json:"description" validate:"required,min=10"`
	Category          string   `json:"category" validate:"required"`
	Price             float64  `json:"price" validate:"required,min=0.01"`
	Currency          string   `json:"currency,omitempty" validate:"omitempty,len=3"`
	Location          string   `json:"location,omitempty"`
	Images            []string `json:"images,omitempty"`
	Condition         string   `json:"condition,omitempty"`
	BarterPreferences []string `json:"barter_preferences,omitempty"`
	Negotiable        bool     `json:"negotiable"`
	DeliveryAvailable bool     `json:"delivery_available"`
}

type UpdateAssetRequest struct {
	Title             string             `json:"title,omitempty" validate:"omitempty,min=3,max=255"`
	Description       string             `json:"description,omitempty" validate:"omitempty,min=10"`
	Category          string             `json:"category,omitempty"`
	Price             float64            `json:"price,omitempty" validate:"omitempty,min=0.01"`
	Location          string             `json:"location,omitempty"`
	Images            []string           `json:"images,omitempty"`
	Condition         string             `json:"condition,omitempty"`
	BarterPreferences []string           `json:"barter_preferences,omitempty"`
	Negotiable        *bool              `json:"negotiable,omitempty"`
	DeliveryAvailable *bool              `json:"delivery_available,omitempty"`
	Status            models.AssetStatus `json:"status,omitempty"`
}

type AssetSearchParams struct {
	utils.PaginationParams
	OwnerID  *uuid.UUID          `json:"owner_id,omitempty"`
	Status   *models.AssetStatus `json:"status,omitempty"`
	Location string              `json:"location,omitempty"`
	PriceMin *float64            `json:"price_min,omitempty"`
	PriceMax *float64            `json:"price_max,omitempty"`
}

func NewAssetService(db *gorm.DB) *AssetService {
	return &AssetService{db: db}
}

func (s *AssetService) CreateAsset(ownerID uuid.UUID, req *CreateAssetRequest) (*models.Asset, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// Verify owner exists and is active
	var owner models.User
	if err := s.db.First(&owner, "id = ?", ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if owner.Status != models.UserStatusActive {
		return nil, errors.New("owner account is not active")
	}

	currency := req.Currency
	if currency == "" {
		currency = "UGX"
	}

	asset := &models.Asset{
		OwnerID:           ownerID,
		Title:             req.Title,
		Description:       req.Description,
		Category:          req.Category,
		Price:             req.Price,
		Currency:          currency,
		Location:          req.Location,
		Images:            pq.StringArray(req.Images),
		Condition:         req.Condition,
		BarterPreferences: pq.StringArray(req.BarterPreferences),
		Negotiable:        req.Negotiable,
		DeliveryAvailable: req.DeliveryAvailable,
		Status:            models.AssetStatusActive,
	}

	if err := s.db.Create(asset).Error; err != nil {
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}

	s.db.Preload("Owner").First(asset, "id = ?", asset.ID)

	return asset, nil
}

func (s *AssetService) GetAsset(id uuid.UUID, viewerID *uuid.UUID) (*models.Asset, error) {
	var asset models.Asset
	if err := s.db.Preload("Owner").First(&asset, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownAsset
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	// Inactive listings are only visible to their owner
	if asset.Status == models.AssetStatusInactive {
		if viewerID == nil || *viewerID != asset.OwnerID {
			return nil, ErrUnknownAsset
		}
	}

	// Increment view count for non-owner views
	if viewerID == nil || *viewerID != asset.OwnerID {
		go s.incrementViewCount(id)
	}

	return &asset, nil
}

func (s *AssetService) UpdateAsset(id uuid.UUID, ownerID uuid.UUID, req *UpdateAssetRequest) (*models.Asset, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var asset models.Asset
	if err := s.db.First(&asset, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownAsset
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if asset.OwnerID != ownerID {
		return nil, ErrNotOwner
	}

	if req.Status != "" && !asset.CanTransitionTo(req.Status) {
		if asset.Status == models.AssetStatusTraded {
			return nil, ErrAssetTraded
		}
		return nil, fmt.Errorf("cannot move listing from %s to %s", asset.Status, req.Status)
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Category != "" {
		updates["category"] = req.Category
	}
	if req.Price > 0 {
		updates["price"] = req.Price
	}
	if req.Location != "" {
		updates["location"] = req.Location
	}
	if req.Images != nil {
		updates["images"] = pq.StringArray(req.Images)
	}
	if req.Condition != "" {
		updates["condition"] = req.Condition
	}
	if req.BarterPreferences != nil {
		updates["barter_preferences"] = pq.StringArray(req.BarterPreferences)
	}
	if req.Negotiable != nil {
		updates["negotiable"] = *req.Negotiable
	}
	if req.DeliveryAvailable != nil {
		updates["delivery_available"] = *req.DeliveryAvailable
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}

	if err := s.db.Model(&asset).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update asset: %w", err)
	}

	s.db.Preload("Owner").First(&asset, "id = ?", id)

	return &asset, nil
}

func (s *AssetService) DeleteAsset(id uuid.UUID, ownerID uuid.UUID) error {
	var asset models.Asset
	if err := s.db.First(&asset, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnknownAsset
		}
		return fmt.Errorf("database error: %w", err)
	}

	if asset.OwnerID != ownerID {
		return ErrNotOwner
	}

	// Soft delete
	if err := s.db.Delete(&asset).Error; err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	return nil
}

func (s *AssetService) SearchAssets(params AssetSearchParams) ([]models.Asset, int64, error) {
	query := s.db.Model(&models.Asset{}).Preload("Owner")

	if params.OwnerID != nil {
		query = query.Where("owner_id = ?", *params.OwnerID)
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	} else {
		// Default to active listings only
		query = query.Where("status = ?", models.AssetStatusActive)
	}

	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	if params.Location != "" {
		query = query.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(params.Location)+"%")
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	if params.PriceMin != nil {
		query = query.Where("price >= ?", *params.PriceMin)
	}

	if params.PriceMax != nil {
		query = query.Where("price <= ?", *params.PriceMax)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count assets: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "title", "price", "view_count"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var assets []models.Asset
	if err := query.Find(&assets).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch assets: %w", err)
	}

	return assets, total, nil
}

// SimilarAssets returns other active listings in the same category, newest
// first. The result backs the paid similar_items screen; access control lives
// in the handler behind the unlock gate.
func (s *AssetService) SimilarAssets(assetID uuid.UUID, limit int) ([]models.Asset, error) {
	var asset models.Asset
	if err := s.db.First(&asset, "id = ?", assetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownAsset
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if limit <= 0 {
		limit = 10
	}

	var similar []models.Asset
	if err := s.db.Where("category = ? AND status = ? AND id != ?",
		asset.Category, models.AssetStatusActive, assetID).
		Order("created_at DESC").
		Limit(limit).
		Preload("Owner").
		Find(&similar).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch similar assets: %w", err)
	}

	return similar, nil
}

func (s *AssetService) GetOwnerAssets(ownerID uuid.UUID, params utils.PaginationParams) ([]models.Asset, int64, error) {
	query := s.db.Model(&models.Asset{}).Where("owner_id = ?", ownerID)

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count owner assets: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "title", "status", "price"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var assets []models.Asset
	if err := query.Find(&assets).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch owner assets: %w", err)
	}

	return assets, total, nil
}

// MarkTraded flips a listing to its terminal state once a barter concludes.
func (s *AssetService) MarkTraded(id uuid.UUID, ownerID uuid.UUID) (*models.Asset, error) {
	var asset models.Asset
	if err := s.db.First(&asset, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownAsset
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if asset.OwnerID != ownerID {
		return nil, ErrNotOwner
	}

	if !asset.CanTransitionTo(models.AssetStatusTraded) {
		return nil, ErrAssetTraded
	}

	if err := s.db.Model(&asset).Update("status", models.AssetStatusTraded).Error; err != nil {
		return nil, fmt.Errorf("failed to mark asset traded: %w", err)
	}

	return &asset, nil
}

func (s *AssetService) incrementViewCount(assetID uuid.UUID) {
	s.db.Model(&models.Asset{}).Where("id = ?", assetID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
}
