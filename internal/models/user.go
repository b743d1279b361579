package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the local record of an account issued by the external auth provider.
type User struct {
	ID          uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	DisplayName string    `gorm:"size:100;not null" json:"display_name"`
	Email       *string   `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	AvatarURL   *string   `gorm:"size:512" json:"avatar_url,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
