package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SharePermission string

const SharePermissionView SharePermission = "view"

// RecipeShare grants one friend read access to one recipe.
type RecipeShare struct {
	ID           uuid.UUID       `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt    time.Time       `json:"created_at"`
	OwnerID      uuid.UUID       `gorm:"type:varchar(36);not null;index" json:"owner_id"`
	RecipeID     uuid.UUID       `gorm:"type:varchar(36);not null;uniqueIndex:idx_recipe_shares_recipe_user" json:"recipe_id"`
	SharedWithID uuid.UUID       `gorm:"type:varchar(36);not null;uniqueIndex:idx_recipe_shares_recipe_user;index" json:"shared_with_id"`
	Permission   SharePermission `gorm:"type:varchar(20);not null" json:"permission"`
	ExpiresAt    *time.Time      `json:"expires_at,omitempty"`
	Message      *string         `gorm:"type:text" json:"message,omitempty"`
}

func (RecipeShare) TableName() string {
	return "recipe_shares"
}

func (s *RecipeShare) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ActiveAt reports whether the share has not expired at now.
func (s *RecipeShare) ActiveAt(now time.Time) bool {
	return s.ExpiresAt == nil || s.ExpiresAt.After(now)
}

// ShareLink is a public, code-addressed grant on a recipe. Revoking clears
// IsActive and keeps the row and its access history.
type ShareLink struct {
	ID             uuid.UUID  `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	OwnerID        uuid.UUID  `gorm:"type:varchar(36);not null;index" json:"owner_id"`
	RecipeID       uuid.UUID  `gorm:"type:varchar(36);not null;index" json:"recipe_id"`
	ShareCode      string     `gorm:"size:9;not null;uniqueIndex" json:"share_code"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	IsActive       bool       `gorm:"not null" json:"is_active"`
	AccessCount    int        `gorm:"not null" json:"access_count"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
}

func (ShareLink) TableName() string {
	return "share_links"
}

func (l *ShareLink) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// ExpiredAt reports whether the link's expiry has passed at now.
func (l *ShareLink) ExpiredAt(now time.Time) bool {
	return l.ExpiresAt != nil && !l.ExpiresAt.After(now)
}

// ShareLinkAccess is one append-only access log entry.
type ShareLinkAccess struct {
	ID         uuid.UUID  `gorm:"type:varchar(36);primarykey" json:"id"`
	LinkID     uuid.UUID  `gorm:"type:varchar(36);not null;index" json:"link_id"`
	AccessedBy *uuid.UUID `gorm:"type:varchar(36)" json:"accessed_by,omitempty"`
	AccessedAt time.Time  `gorm:"not null" json:"accessed_at"`
}

func (ShareLinkAccess) TableName() string {
	return "share_link_accesses"
}

func (a *ShareLinkAccess) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
