package testhelpers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/larder-app/larder/backend/internal/identity"
	"github.com/larder-app/larder/backend/internal/models"
)

// AsUser returns a background context authenticated as userID.
func AsUser(userID uuid.UUID) context.Context {
	return identity.WithUser(context.Background(), userID)
}

// CreateUser inserts a user with the given display name.
func CreateUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{DisplayName: name}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", name, err)
	}
	return user
}

// RecipeOption customizes a fixture recipe before insert.
type RecipeOption func(*models.Recipe)

func Public() RecipeOption { return func(r *models.Recipe) { r.IsPublic = true } }

// Global clears the owner and marks the recipe global.
func Global() RecipeOption {
	return func(r *models.Recipe) {
		r.OwnerID = nil
		r.IsGlobal = true
	}
}

// WithIngredients appends ingredients in the given order.
func WithIngredients(ingredients ...models.Ingredient) RecipeOption {
	return func(r *models.Recipe) {
		for i := range ingredients {
			ingredients[i].SortOrder = len(r.Ingredients)
			r.Ingredients = append(r.Ingredients, ingredients[i])
		}
	}
}

func WithTags(tags ...string) RecipeOption {
	return func(r *models.Recipe) {
		for _, tag := range tags {
			r.Tags = append(r.Tags, models.RecipeTag{Tag: tag})
		}
	}
}

// CreateRecipe inserts a private recipe owned by owner.
func CreateRecipe(t *testing.T, db *gorm.DB, owner uuid.UUID, title string, opts ...RecipeOption) *models.Recipe {
	t.Helper()
	ownerID := owner
	recipe := &models.Recipe{
		OwnerID:  &ownerID,
		Title:    title,
		Servings: 2,
	}
	for _, opt := range opts {
		opt(recipe)
	}
	if err := db.Create(recipe).Error; err != nil {
		t.Fatalf("failed to create recipe %s: %v", title, err)
	}
	return recipe
}

// MakeFriends inserts an accepted friendship between a and b.
func MakeFriends(t *testing.T, db *gorm.DB, a, b uuid.UUID) *models.Friendship {
	t.Helper()
	f := &models.Friendship{UserLow: a, UserHigh: b, Status: models.FriendshipAccepted, RequestedBy: a}
	if err := db.Create(f).Error; err != nil {
		t.Fatalf("failed to create friendship: %v", err)
	}
	return f
}

// Ingredient builds an ingredient fixture; amount < 0 leaves it unset.
func Ingredient(name string, amount float64, unit string) models.Ingredient {
	ing := models.Ingredient{Name: name}
	if amount >= 0 {
		ing.Amount = &amount
	}
	if unit != "" {
		ing.Unit = &unit
	}
	return ing
}

// Clock is a settable time source for services that accept a now func.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start.UTC()}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
