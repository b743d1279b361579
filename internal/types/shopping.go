package types

import (
	"github.com/google/uuid"

	"github.com/larder-app/larder/backend/internal/models"
)

// AddItemResult reports where an item landed and whether it merged.
type AddItemResult struct {
	ListID uuid.UUID `json:"list_id"`
	ItemID uuid.UUID `json:"item_id"`
	Merged bool      `json:"merged"`
}

type AddRecipeIngredientsResult struct {
	ListID  uuid.UUID `json:"list_id"`
	Added   int       `json:"added"`
	Merged  int       `json:"merged"`
	Skipped int       `json:"skipped"`
}

type AisleGroup struct {
	Aisle string                `json:"aisle"`
	Items []models.ShoppingItem `json:"items"`
}

// ShoppingListResponse is a list with its items in sort order and grouped by aisle.
type ShoppingListResponse struct {
	models.ShoppingList
	Aisles       []AisleGroup `json:"aisles"`
	CheckedCount int          `json:"checked_count"`
}
