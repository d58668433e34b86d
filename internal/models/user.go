// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username     string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	Status       UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	ProfileData  JSONB      `json:"profile_data" gorm:"type:jsonb"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	// Relationships
	Assets       []Asset       `json:"assets,omitempty" gorm:"foreignKey:OwnerID"`
	Transactions []Transaction `json:"transactions,omitempty" gorm:"foreignKey:ViewerID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// PublicProfile strips everything a stranger should not see. Contact details
// (phone, email) stay out of it; they are only revealed through the paid
// contact endpoint.
func (u *User) PublicProfile() map[string]interface{} {
	profile := map[string]interface{}{
		"id":       u.ID,
		"username": u.Username,
	}
	for _, key := range []string{"display_name", "location", "avatar_url", "rating", "trades"} {
		if v, ok := u.ProfileData[key]; ok {
			profile[key] = v
		}
	}
	return profile
}

// ContactDetails returns what a contact_seller unlock reveals.
func (u *User) ContactDetails() map[string]interface{} {
	details := map[string]interface{}{
		"username": u.Username,
		"email":    u.Email,
	}
	if phone, ok := u.ProfileData["phone"]; ok {
		details["phone"] = phone
	}
	return details
}
