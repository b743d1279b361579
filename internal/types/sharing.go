package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/larder-app/larder/backend/internal/models"
)

type FriendResponse struct {
	FriendshipID uuid.UUID               `json:"friendship_id"`
	User         UserSummary             `json:"user"`
	Status       models.FriendshipStatus `json:"status"`
	RequestedBy  uuid.UUID               `json:"requested_by"`
	Since        time.Time               `json:"since"`
}

// FriendRequests splits pending requests by direction relative to the caller.
type FriendRequests struct {
	Incoming []FriendResponse `json:"incoming"`
	Outgoing []FriendResponse `json:"outgoing"`
}

type ShareResponse struct {
	ID         uuid.UUID              `json:"id"`
	RecipeID   uuid.UUID              `json:"recipe_id"`
	SharedWith UserSummary            `json:"shared_with"`
	Permission models.SharePermission `json:"permission"`
	Message    *string                `json:"message,omitempty"`
	ExpiresAt  *time.Time             `json:"expires_at,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// ReceivedShareResponse is a share as seen by its recipient.
type ReceivedShareResponse struct {
	ID          uuid.UUID   `json:"id"`
	RecipeID    uuid.UUID   `json:"recipe_id"`
	RecipeTitle string      `json:"recipe_title"`
	Owner       UserSummary `json:"owner"`
	Message     *string     `json:"message,omitempty"`
	ExpiresAt   *time.Time  `json:"expires_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// ShareResult is the per-friend outcome of a multi-share.
type ShareResult struct {
	FriendID uuid.UUID  `json:"friend_id"`
	Success  bool       `json:"success"`
	ShareID  *uuid.UUID `json:"share_id,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// Reasons a share code cannot be used.
const (
	LinkReasonNotFound = "not_found"
	LinkReasonRevoked  = "revoked"
	LinkReasonExpired  = "expired"
)

// ShareCodeValidation is the outcome of checking a share code.
type ShareCodeValidation struct {
	Valid    bool       `json:"valid"`
	Reason   string     `json:"reason,omitempty"`
	RecipeID *uuid.UUID `json:"recipe_id,omitempty"`
}

// SharedRecipeView is the public payload behind a valid share code.
type SharedRecipeView struct {
	ShareCodeValidation
	Recipe      *RecipeResponse `json:"recipe,omitempty"`
	OwnerName   string          `json:"owner_name,omitempty"`
	AccessCount int             `json:"access_count,omitempty"`
}

type ShareLinkResponse struct {
	ID             uuid.UUID  `json:"id"`
	RecipeID       uuid.UUID  `json:"recipe_id"`
	ShareCode      string     `json:"share_code"`
	IsActive       bool       `json:"is_active"`
	IsExpired      bool       `json:"is_expired"`
	AccessCount    int        `json:"access_count"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func NewShareLinkResponse(l *models.ShareLink, now time.Time) ShareLinkResponse {
	return ShareLinkResponse{
		ID:             l.ID,
		RecipeID:       l.RecipeID,
		ShareCode:      l.ShareCode,
		IsActive:       l.IsActive,
		IsExpired:      l.ExpiredAt(now),
		AccessCount:    l.AccessCount,
		LastAccessedAt: l.LastAccessedAt,
		ExpiresAt:      l.ExpiresAt,
		CreatedAt:      l.CreatedAt,
	}
}
