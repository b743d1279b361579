package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/larder-app/larder/backend/internal/models"
)

// RecipeResponse is a recipe enriched with its owner's name, tags and image URL.
type RecipeResponse struct {
	ID           uuid.UUID           `json:"id"`
	OwnerID      *uuid.UUID          `json:"owner_id,omitempty"`
	OwnerName    string              `json:"owner_name,omitempty"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Servings     int                 `json:"servings"`
	PrepMinutes  *int                `json:"prep_minutes,omitempty"`
	CookMinutes  *int                `json:"cook_minutes,omitempty"`
	Difficulty   *models.Difficulty  `json:"difficulty,omitempty"`
	IsPublic     bool                `json:"is_public"`
	IsGlobal     bool                `json:"is_global"`
	IsFavorite   bool                `json:"is_favorite"`
	IsOwner      bool                `json:"is_owner"`
	CookCount    int                 `json:"cook_count"`
	LastCookedAt *time.Time          `json:"last_cooked_at,omitempty"`
	ImageURL     string              `json:"image_url,omitempty"`
	Tags         []string            `json:"tags"`
	Ingredients  []models.Ingredient `json:"ingredients,omitempty"`
	Steps        []models.Step       `json:"steps,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// NewRecipeResponse copies the stored fields; enrichment is left to the caller.
func NewRecipeResponse(r *models.Recipe, viewer *uuid.UUID) RecipeResponse {
	resp := RecipeResponse{
		ID:           r.ID,
		OwnerID:      r.OwnerID,
		Title:        r.Title,
		Description:  r.Description,
		Servings:     r.Servings,
		PrepMinutes:  r.PrepMinutes,
		CookMinutes:  r.CookMinutes,
		Difficulty:   r.Difficulty,
		IsPublic:     r.IsPublic,
		IsGlobal:     r.IsGlobal,
		CookCount:    r.CookCount,
		LastCookedAt: r.LastCookedAt,
		Tags:         []string{},
		Ingredients:  r.Ingredients,
		Steps:        r.Steps,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if viewer != nil && r.IsOwnedBy(*viewer) {
		resp.IsOwner = true
		// the favorite flag is personal to the owner
		resp.IsFavorite = r.IsFavorite
	}
	for _, tag := range r.Tags {
		resp.Tags = append(resp.Tags, tag.Tag)
	}
	return resp
}

// UserSummary is the public view of another user.
type UserSummary struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
}

func NewUserSummary(u *models.User) UserSummary {
	return UserSummary{ID: u.ID, DisplayName: u.DisplayName, AvatarURL: u.AvatarURL}
}
