package api_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larder-app/larder/backend/internal/middleware"
	"github.com/larder-app/larder/backend/internal/models"
	"github.com/larder-app/larder/backend/internal/testhelpers"
	"github.com/larder-app/larder/backend/internal/types"
)

func TestAccessByCode(t *testing.T) {
	a := setupAPI(t)
	owner := testhelpers.CreateUser(t, a.db, "Owner")
	recipe := testhelpers.CreateRecipe(t, a.db, owner.ID, "Private Paella",
		testhelpers.WithIngredients(testhelpers.Ingredient("Rice", 300, "g")))
	link := createLink(t, a, owner.ID, recipe.ID, nil)

	w := a.do(http.MethodGet, path("/public/share/%s", link.ShareCode), "", nil)
	requireStatus(t, http.StatusOK, w)

	view := decodeInto[types.SharedRecipeView](t, w)
	assert.True(t, view.Valid)
	require.NotNil(t, view.Recipe)
	assert.Equal(t, "Private Paella", view.Recipe.Title)
	assert.Equal(t, "Owner", view.OwnerName)
	assert.Len(t, view.Recipe.Ingredients, 1)
	assert.False(t, view.Recipe.IsOwner)

	w = a.do(http.MethodGet, path("/public/share/%s", link.ShareCode), a.tokenFor(owner.ID), nil)
	requireStatus(t, http.StatusOK, w)
	assert.True(t, decodeInto[types.SharedRecipeView](t, w).Recipe.IsOwner)

	w = a.do(http.MethodGet, path("/public/share/%s", link.ShareCode), "not-a-token", nil)
	requireStatus(t, http.StatusOK, w)
}

func TestAccessByUnknownCode(t *testing.T) {
	a := setupAPI(t)

	w := a.do(http.MethodGet, path("/public/share/ZZZZZZZZZ"), "", nil)
	requireStatus(t, http.StatusNotFound, w)
	view := decodeInto[types.SharedRecipeView](t, w)
	assert.False(t, view.Valid)
	assert.Equal(t, types.LinkReasonNotFound, view.Reason)
	assert.Nil(t, view.Recipe)

	w = a.do(http.MethodGet, path("/public/share/ZZZZZZZZZ/validate"), "", nil)
	requireStatus(t, http.StatusOK, w)
	assert.False(t, decodeInto[types.ShareCodeValidation](t, w).Valid)

	w = a.do(http.MethodPost, path("/public/share/ZZZZZZZZZ/access"), "", nil)
	requireStatus(t, http.StatusNotFound, w)
}

func TestRecordAccess(t *testing.T) {
	a := setupAPI(t)
	owner := testhelpers.CreateUser(t, a.db, "Owner")
	visitor := testhelpers.CreateUser(t, a.db, "Visitor")
	recipe := testhelpers.CreateRecipe(t, a.db, owner.ID, "Focaccia")
	link := createLink(t, a, owner.ID, recipe.ID, nil)

	w := a.do(http.MethodGet, path("/public/share/%s", link.ShareCode), "", nil)
	requireStatus(t, http.StatusOK, w)
	assert.Zero(t, decodeInto[types.SharedRecipeView](t, w).AccessCount, "viewing does not count an access")

	requireStatus(t, http.StatusOK, a.do(http.MethodPost, path("/public/share/%s/access", link.ShareCode), "", nil))
	w = a.do(http.MethodPost, path("/public/share/%s/access", link.ShareCode), a.tokenFor(visitor.ID), nil)
	requireStatus(t, http.StatusOK, w)
	assert.True(t, decodeInto[types.ShareCodeValidation](t, w).Valid)

	w = a.do(http.MethodGet, path("/public/share/%s", link.ShareCode), "", nil)
	requireStatus(t, http.StatusOK, w)
	assert.Equal(t, 2, decodeInto[types.SharedRecipeView](t, w).AccessCount)

	var accesses []models.ShareLinkAccess
	require.NoError(t, a.db.Where("link_id = ?", link.ID).Order("accessed_at").Find(&accesses).Error)
	require.Len(t, accesses, 2)
	var visitors int
	for _, access := range accesses {
		if access.AccessedBy != nil {
			assert.Equal(t, visitor.ID, *access.AccessedBy)
			visitors++
		}
	}
	assert.Equal(t, 1, visitors)
}

func TestExpiredLink(t *testing.T) {
	clock := testhelpers.NewClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	a := setupAPI(t, withLinkClock(clock))
	owner := testhelpers.CreateUser(t, a.db, "Owner")
	recipe := testhelpers.CreateRecipe(t, a.db, owner.ID, "Stollen")
	link := createLink(t, a, owner.ID, recipe.ID, map[string]any{"expires_in_days": 1})

	requireStatus(t, http.StatusOK, a.do(http.MethodGet, path("/public/share/%s", link.ShareCode), "", nil))

	clock.Advance(25 * time.Hour)

	w := a.do(http.MethodGet, path("/public/share/%s", link.ShareCode), "", nil)
	requireStatus(t, http.StatusGone, w)
	assert.Equal(t, types.LinkReasonExpired, decodeInto[types.SharedRecipeView](t, w).Reason)

	w = a.do(http.MethodGet, path("/public/share/%s/validate", link.ShareCode), "", nil)
	requireStatus(t, http.StatusOK, w)
	assert.Equal(t, types.LinkReasonExpired, decodeInto[types.ShareCodeValidation](t, w).Reason)

	w = a.do(http.MethodPost, path("/public/share/%s/access", link.ShareCode), "", nil)
	requireStatus(t, http.StatusGone, w)
}

func TestPublicShareRateLimit(t *testing.T) {
	limiter := middleware.NewMemoryLimiter(middleware.ShareCodeRateLimitConfig(2, time.Minute))
	a := setupAPI(t, withPublicLimiter(limiter))

	for i := 0; i < 2; i++ {
		w := a.do(http.MethodGet, path("/public/share/ABCDEFGHI/validate"), "", nil)
		requireStatus(t, http.StatusOK, w)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := a.do(http.MethodGet, path("/public/share/ABCDEFGHI/validate"), "", nil)
	requireStatus(t, http.StatusTooManyRequests, w)
	assert.Equal(t, "rate_limited", errorCode(t, w))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}
