package types

import (
	"github.com/google/uuid"
)

// IngredientInput is one ingredient in a create or update request.
type IngredientInput struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Amount      *float64 `json:"amount" validate:"omitempty,gte=0"`
	Unit        *string  `json:"unit" validate:"omitempty,max=50"`
	Preparation *string  `json:"preparation" validate:"omitempty,max=255"`
	IsOptional  bool     `json:"is_optional"`
}

// StepInput is one instruction step; steps are numbered in request order.
type StepInput struct {
	Instruction  string  `json:"instruction" validate:"required"`
	TimerMinutes *int    `json:"timer_minutes" validate:"omitempty,gte=0"`
	Tip          *string `json:"tip"`
}

// CreateRecipeRequest represents the request body for creating a recipe
type CreateRecipeRequest struct {
	Title       string            `json:"title" validate:"required,max=255"`
	Description string            `json:"description"`
	Servings    int               `json:"servings" validate:"required,gte=1,lte=100"`
	PrepMinutes *int              `json:"prep_minutes" validate:"omitempty,gte=0"`
	CookMinutes *int              `json:"cook_minutes" validate:"omitempty,gte=0"`
	Difficulty  *string           `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	IsPublic    bool              `json:"is_public"`
	Ingredients []IngredientInput `json:"ingredients" validate:"dive"`
	Steps       []StepInput       `json:"steps" validate:"dive"`
	Tags        []string          `json:"tags" validate:"dive,max=50"`
}

// UpdateRecipeRequest represents the request body for updating a recipe.
// Nil fields are left unchanged; non-nil collections replace the stored ones.
type UpdateRecipeRequest struct {
	Title       *string            `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string            `json:"description"`
	Servings    *int               `json:"servings" validate:"omitempty,gte=1,lte=100"`
	PrepMinutes *int               `json:"prep_minutes" validate:"omitempty,gte=0"`
	CookMinutes *int               `json:"cook_minutes" validate:"omitempty,gte=0"`
	Difficulty  *string            `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	IsPublic    *bool              `json:"is_public"`
	Ingredients *[]IngredientInput `json:"ingredients" validate:"omitempty,dive"`
	Steps       *[]StepInput       `json:"steps" validate:"omitempty,dive"`
	Tags        *[]string          `json:"tags" validate:"omitempty,dive,max=50"`
}

// ListRecipesQuery holds the recipe list flags.
type ListRecipesQuery struct {
	IncludeShared bool `form:"include_shared"`
	IncludeGlobal bool `form:"include_global"`
	GlobalOnly    bool `form:"global_only"`
	Limit         int  `form:"limit" validate:"omitempty,gte=1,lte=200"`
}

// UpdateUserRequest updates the caller's profile.
type UpdateUserRequest struct {
	DisplayName string  `json:"display_name" validate:"required,min=1,max=100"`
	Email       *string `json:"email" validate:"omitempty,email,max=255"`
	AvatarURL   *string `json:"avatar_url" validate:"omitempty,url,max=512"`
}

type FriendRequestInput struct {
	FriendID uuid.UUID `json:"friend_id" validate:"required"`
}

// ShareOptions are the optional parts of a direct share.
type ShareOptions struct {
	Message       *string `json:"message" validate:"omitempty,max=500"`
	ExpiresInDays *int    `json:"expires_in_days" validate:"omitempty,gte=1,lte=365"`
}

type ShareRecipeRequest struct {
	FriendID uuid.UUID `json:"friend_id" validate:"required"`
	ShareOptions
}

type ShareWithMultipleRequest struct {
	FriendIDs []uuid.UUID `json:"friend_ids" validate:"required,min=1,max=50"`
	ShareOptions
}

type CreateShareLinkRequest struct {
	ExpiresInDays *int `json:"expires_in_days" validate:"omitempty,gte=1,lte=365"`
}

// AddShoppingItemRequest adds one item. Without ListID the active list is used.
type AddShoppingItemRequest struct {
	ListID   *uuid.UUID `json:"list_id"`
	Name     string     `json:"name" validate:"required,max=255"`
	Amount   *float64   `json:"amount" validate:"omitempty,gte=0"`
	Unit     *string    `json:"unit" validate:"omitempty,max=50"`
	Category *string    `json:"category" validate:"omitempty,max=50"`
	RecipeID *uuid.UUID `json:"recipe_id"`
}

type AddRecipeIngredientsRequest struct {
	ListID   *uuid.UUID `json:"list_id"`
	Servings *int       `json:"servings" validate:"omitempty,gte=1,lte=100"`
}

type CreateShoppingListRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}
