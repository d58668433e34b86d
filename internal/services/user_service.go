// internal/services/user_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/barterhub/barterhub-backend/internal/database"
	"github.com/barterhub/barterhub-backend/internal/models"
	"github.com/barterhub/barterhub-backend/internal/utils"
)

type UserService struct {
	db *gorm.DB
}

type UpdateUserProfileRequest struct {
	Username    string                 `json:"username,omitempty" validate:"omitempty,username"`
	ProfileData map[string]interface{} `json:"profile_data,omitempty"`
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) GetUserByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func (s *UserService) GetPublicProfile(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.Select("id, username, profile_data, created_at").
		First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(userID uuid.UUID, req *UpdateUserProfileRequest) (*models.User, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// Find user
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	// Check username uniqueness if updating
	if req.Username != "" && req.Username != user.Username {
		var existingUser models.User
		if err := s.db.Where("username = ? AND id != ?", req.Username, userID).First(&existingUser).Error; err == nil {
			return nil, errors.New("username already taken")
		}
	}

	if req.Username != "" {
		user.Username = req.Username
	}

	if req.ProfileData != nil {
		if user.ProfileData == nil {
			user.ProfileData = make(models.JSONB)
		}
		// Merge with existing profile data
		for key, value := range req.ProfileData {
			user.ProfileData[key] = value
		}
	}

	if err := s.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return &user, nil
}

func (s *UserService) DeleteAccount(userID uuid.UUID, password string) error {
	// Find user
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnknownUser
		}
		return fmt.Errorf("database error: %w", err)
	}

	// Verify password
	if err := user.CheckPassword(password); err != nil {
		return errors.New("invalid password")
	}

	// Listings with an agreed trade stay on record; block deletion until the
	// owner has retired their active listings. The check and the delete run in
	// one transaction so a listing created in between cannot slip through.
	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var activeCount int64
		if err := tx.Model(&models.Asset{}).
			Where("owner_id = ? AND status = ?", userID, models.AssetStatusActive).
			Count(&activeCount).Error; err != nil {
			return fmt.Errorf("failed to count active listings: %w", err)
		}

		if activeCount > 0 {
			return errors.New("cannot delete account with active listings")
		}

		// Soft delete user
		if err := tx.Delete(&user).Error; err != nil {
			return fmt.Errorf("failed to delete account: %w", err)
		}

		return nil
	})
}
