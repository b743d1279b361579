package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/larder-app/larder/backend/internal/types"
)

func TestMapValidRequest(t *testing.T) {
	req := types.CreateRecipeRequest{Title: "Soup", Servings: 2}
	assert.Nil(t, Map(req))
}

func TestMapUsesJSONNames(t *testing.T) {
	errs := Map(types.CreateRecipeRequest{Servings: 0})
	assert.Equal(t, "is required", errs["title"])
	assert.Equal(t, "is required", errs["servings"])
}

func TestMapNestedFields(t *testing.T) {
	req := types.CreateRecipeRequest{
		Title:       "Soup",
		Servings:    2,
		Ingredients: []types.IngredientInput{{Name: "Salt"}, {Name: ""}},
	}
	errs := Map(req)
	assert.Len(t, errs, 1)
	assert.Equal(t, "is required", errs["ingredients[1].name"])
}

func TestMapRanges(t *testing.T) {
	days := 400
	errs := Map(types.CreateShareLinkRequest{ExpiresInDays: &days})
	assert.Equal(t, "must be <= 365", errs["expires_in_days"])

	days = 0
	errs = Map(types.CreateShareLinkRequest{ExpiresInDays: &days})
	assert.Equal(t, "must be >= 1", errs["expires_in_days"])
}

func TestMapOneOf(t *testing.T) {
	d := "impossible"
	errs := Map(types.CreateRecipeRequest{Title: "Soup", Servings: 2, Difficulty: &d})
	assert.Equal(t, "must be one of easy medium hard", errs["difficulty"])
}

func TestMapSliceBounds(t *testing.T) {
	errs := Map(types.ShareWithMultipleRequest{})
	assert.Equal(t, "is required", errs["friend_ids"])
}
