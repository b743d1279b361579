package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShoppingList belongs to one user; at most one list per user is active.
type ShoppingList struct {
	ID        uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	OwnerID   uuid.UUID      `gorm:"type:varchar(36);not null;index" json:"owner_id"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	IsActive  bool           `gorm:"not null;index" json:"is_active"`
	Items     []ShoppingItem `gorm:"foreignKey:ListID" json:"items,omitempty"`
}

func (ShoppingList) TableName() string {
	return "shopping_lists"
}

func (l *ShoppingList) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

type ShoppingItem struct {
	ID        uuid.UUID  `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ListID    uuid.UUID  `gorm:"type:varchar(36);not null;index;index:idx_shopping_items_list_checked" json:"list_id"`
	Name      string     `gorm:"size:255;not null" json:"name"`
	Amount    *float64   `json:"amount,omitempty"`
	Unit      *string    `gorm:"size:50" json:"unit,omitempty"`
	Category  *string    `gorm:"size:50" json:"category,omitempty"`
	RecipeID  *uuid.UUID `gorm:"type:varchar(36);index" json:"recipe_id,omitempty"`
	IsChecked bool       `gorm:"not null;index:idx_shopping_items_list_checked" json:"is_checked"`
	CheckedAt *time.Time `json:"checked_at,omitempty"`
	SortOrder int        `gorm:"not null" json:"sort_order"`
}

func (ShoppingItem) TableName() string {
	return "shopping_items"
}

func (i *ShoppingItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// ShoppingListRecipe records that a recipe's ingredients were added to a list.
type ShoppingListRecipe struct {
	ID       uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	ListID   uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_shopping_list_recipes_pair" json:"list_id"`
	RecipeID uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_shopping_list_recipes_pair;index" json:"recipe_id"`
	Servings int       `gorm:"not null" json:"servings"`
	AddedAt  time.Time `gorm:"not null" json:"added_at"`
}

func (ShoppingListRecipe) TableName() string {
	return "shopping_list_recipes"
}

func (r *ShoppingListRecipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// All returns every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Recipe{},
		&Ingredient{},
		&Step{},
		&RecipeTag{},
		&Friendship{},
		&RecipeShare{},
		&ShareLink{},
		&ShareLinkAccess{},
		&ShoppingList{},
		&ShoppingItem{},
		&ShoppingListRecipe{},
	}
}
