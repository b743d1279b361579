package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Difficulty is the optional effort rating of a recipe.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Recipe is a personal or global recipe. Global recipes have no owner and are
// read-only for every user.
type Recipe struct {
	ID           uuid.UUID   `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	OwnerID      *uuid.UUID  `gorm:"type:varchar(36);index" json:"owner_id,omitempty"`
	Title        string      `gorm:"size:255;not null" json:"title"`
	Description  string      `gorm:"type:text" json:"description"`
	Servings     int         `gorm:"not null" json:"servings"`
	PrepMinutes  *int        `json:"prep_minutes,omitempty"`
	CookMinutes  *int        `json:"cook_minutes,omitempty"`
	Difficulty   *Difficulty `gorm:"size:10" json:"difficulty,omitempty"`
	IsPublic     bool        `gorm:"not null;index" json:"is_public"`
	IsGlobal     bool        `gorm:"not null;index" json:"is_global"`
	IsFavorite   bool        `gorm:"not null" json:"is_favorite"`
	CookCount    int         `gorm:"not null" json:"cook_count"`
	LastCookedAt *time.Time  `json:"last_cooked_at,omitempty"`
	ImageKey     *string     `gorm:"size:512" json:"-"`

	Ingredients []Ingredient `gorm:"foreignKey:RecipeID" json:"ingredients,omitempty"`
	Steps       []Step       `gorm:"foreignKey:RecipeID" json:"steps,omitempty"`
	Tags        []RecipeTag  `gorm:"foreignKey:RecipeID" json:"-"`
}

func (Recipe) TableName() string {
	return "recipes"
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// IsOwnedBy reports whether userID is the recorded owner.
func (r *Recipe) IsOwnedBy(userID uuid.UUID) bool {
	return r.OwnerID != nil && *r.OwnerID == userID
}

type Ingredient struct {
	ID          uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	RecipeID    uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_ingredients_recipe_order" json:"recipe_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Amount      *float64  `json:"amount,omitempty"`
	Unit        *string   `gorm:"size:50" json:"unit,omitempty"`
	Preparation *string   `gorm:"size:255" json:"preparation,omitempty"`
	IsOptional  bool      `gorm:"not null" json:"is_optional"`
	SortOrder   int       `gorm:"not null;uniqueIndex:idx_ingredients_recipe_order" json:"sort_order"`
}

func (Ingredient) TableName() string {
	return "recipe_ingredients"
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type Step struct {
	ID           uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	RecipeID     uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_steps_recipe_number" json:"recipe_id"`
	StepNumber   int       `gorm:"not null;uniqueIndex:idx_steps_recipe_number" json:"step_number"`
	Instruction  string    `gorm:"type:text;not null" json:"instruction"`
	TimerMinutes *int      `json:"timer_minutes,omitempty"`
	Tip          *string   `gorm:"type:text" json:"tip,omitempty"`
}

func (Step) TableName() string {
	return "recipe_steps"
}

func (s *Step) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type RecipeTag struct {
	ID       uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	RecipeID uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_recipe_tags_recipe_tag" json:"recipe_id"`
	Tag      string    `gorm:"size:50;not null;uniqueIndex:idx_recipe_tags_recipe_tag;index" json:"tag"`
}

func (RecipeTag) TableName() string {
	return "recipe_tags"
}

func (t *RecipeTag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
