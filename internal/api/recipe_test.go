package api_test

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/larder-app/larder/backend/internal/api"
	"github.com/larder-app/larder/backend/internal/mocks"
	"github.com/larder-app/larder/backend/internal/models"
	"github.com/larder-app/larder/backend/internal/testhelpers"
	"github.com/larder-app/larder/backend/internal/types"
)

func TestCreateRecipe(t *testing.T) {
	a := setupAPI(t)
	owner := testhelpers.CreateUser(t, a.db, "Owner")

	w := a.do(http.MethodPost, path("/recipes"), a.tokenFor(owner.ID), map[string]any{
		"title":       "Tomato Soup",
		"description": "Simple and quick",
		"servings":    4,
		"difficulty":  "easy",
		"ingredients": []map[string]any{
			{"name": "Tomatoes", "amount": 6},
			{"name": "Basil", "is_optional": true},
		},
		"steps": []map[string]any{{"instruction": "Simmer everything"}},
		"tags":  []string{"Soup", "soup", "quick"},
	})
	requireStatus(t, http.StatusCreated, w)

	recipe := decodeInto[types.RecipeResponse](t, w)
	assert.NotEqual(t, uuid.Nil, recipe.ID)
	assert.True(t, recipe.IsOwner)
	assert.Equal(t, "Owner", recipe.OwnerName)
	assert.Len(t, recipe.Ingredients, 2)
	assert.Len(t, recipe.Steps, 1)
	assert.ElementsMatch(t, []string{"soup", "quick"}, recipe.Tags)
}

func TestCreateRecipeValidation(t *testing.T) {
	a := setupAPI(t)
	owner := testhelpers.CreateUser(t, a.db, "Owner")
	token := a.tokenFor(owner.ID)

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"missing title", map[string]any{"servings": 2}, "title"},
		{"zero servings", map[string]any{"title": "Soup", "servings": 0}, "servings"},
		{"bad difficulty", map[string]any{"title": "Soup", "servings": 2, "difficulty": "extreme"}, "difficulty"},
		{"unnamed ingredient", map[string]any{
			"title": "Soup", "servings": 2,
			"ingredients": []map[string]any{{"name": "Salt"}, {"amount": 1}},
		}, "ingredients[1].name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(http.MethodPost, path("/recipes"), token, tt.body)
			requireStatus(t, http.StatusBadRequest, w)

			body := decodeInto[struct {
				Error  string            `json:"error"`
				Fields map[string]string `json:"fields"`
			}](t, w)
			assert.Equal(t, "validation_failed", body.Error)
			assert.Contains(t, body.Fields, tt.field)
		})
	}
}

func TestCreateRecipeRequiresAuth(t *testing.T) {
	a := setupAPI(t)

	w := a.do(http.MethodPost, path("/recipes"), "", map[string]any{"title": "Soup", "servings": 2})

	requireStatus(t, http.StatusUnauthorized, w)
	assert.Equal(t, "unauthenticated", errorCode(t, w))
}

func TestGetRecipeVisibility(t *testing.T) {
	a := setupAPI(t)
	owner := testhelpers.CreateUser(t, a.db, "Owner")
	stranger := testhelpers.CreateUser(t, a.db, "Stranger")
	private := testhelpers.CreateRecipe(t, a.db, owner.ID, "Secret Stew")
	public := testhelpers.CreateRecipe(t, a.db, owner.ID, "Open Pie", testhelpers.Public())

	requireStatus(t, http.StatusOK, a.do(http.MethodGet, path("/recipes/%s", private.ID), a.tokenFor(owner.ID), nil))

	w := a.do(http.MethodGet, path("/recipes/%s", private.ID), a.tokenFor(stranger.ID), nil)
	requireStatus(t, http.StatusNotFound, w)
	assert.Equal(t, "recipe_not_found", errorCode(t, w))

	w = a.do(http.MethodGet, path("/recipes/%s", private.ID), "", nil)
	requireStatus(t, http.StatusNotFound, w)

	w = a.do(http.MethodGet, path("/recipes/%s", uuid.New()), "", nil)
	requireStatus(t, http.StatusNotFound, w)
	assert.Equal(t, "recipe_not_found", errorCode(t, w), "missing and hidden recipes look the same")

	w = a.do(http.MethodGet, path("/recipes/%s", public.ID), "", nil)
	requireStatus(t, http.StatusOK, w)
	recipe := decodeInto[types.RecipeResponse](t, w)
	assert.False(t, recipe.IsOwner)

	w = a.do(http.MethodGet, path("/recipes/not-a-uuid"), "", nil)
	requireStatus(t, http.StatusBadRequest, w)
	assert.Equal(t, "invalid_id", errorCode(t, w))
}

func TestListRecipes(t *testing.T) {
	a := setupAPI(t)
	owner := testhelpers.CreateUser(t, a.db, "Owner")
	testhelpers.CreateRecipe(t, a.db, owner.ID, "Mine")
	testhelpers.CreateRecipe(t, a.db, owner.ID, "Catalog", testhelpers.Global())

	type listBody struct {
		Recipes []types.RecipeResponse `json:"recipes"`
	}
	titles := func(body listBody) []string {
		var out []string
		for _, r := range body.Recipes {
			out = append(out, r.Title)
		}
		return out
	}

	w := a.do(http.MethodGet, path("/recipes"), "", nil)
	requireStatus(t, http.StatusOK, w)
	assert.Equal(t, []string{"Catalog"}, titles(decodeInto[listBody](t, w)))

	w = a.do(http.MethodGet, path("/recipes"), a.tokenFor(owner.ID), nil)
	requireStatus(t, http.StatusOK, w)
	assert.Equal(t, []string{"Mine"}, titles(decodeInto[listBody](t, w)))

	w = a.do(http.MethodGet, path("/recipes?include_global=true"), a.tokenFor(owner.ID), nil)
	requireStatus(t, http.StatusOK, w)
	assert.ElementsMatch(t, []string{"Mine", "Catalog"}, titles(decodeInto[listBody](t, w)))

	w = a.do(http.MethodGet, path("/recipes?limit=1000"), a.tokenFor(owner.ID), nil)
	requireStatus(t, http.StatusBadRequest, w)
}

func TestUpdateAndDeleteRecipe(t *testing.T) {
	a := setupAPI(t)
	owner := testhelpers.CreateUser(t, a.db, "Owner")
	stranger := testhelpers.CreateUser(t, a.db, "Stranger")
	recipe := testhelpers.CreateRecipe(t, a.db, owner.ID, "Draft")
	global := testhelpers.CreateRecipe(t, a.db, owner.ID, "Catalog", testhelpers.Global())

	w := a.do(http.MethodPut, path("/recipes/%s", recipe.ID), a.tokenFor(owner.ID), map[string]any{"title": "Final"})
	requireStatus(t, http.StatusOK, w)
	assert.Equal(t, "Final", decodeInto[types.RecipeResponse](t, w).Title)

	w = a.do(http.MethodPut, path("/recipes/%s", recipe.ID), a.tokenFor(stranger.ID), map[string]any{"title": "Mine now"})
	requireStatus(t, http.StatusNotFound, w)

	w = a.do(http.MethodPut, path("/recipes/%s", global.ID), a.tokenFor(owner.ID), map[string]any{"title": "Edited"})
	requireStatus(t, http.StatusForbidden, w)
	assert.Equal(t, "not_owner", errorCode(t, w))

	w = a.do(http.MethodDelete, path("/recipes/%s", recipe.ID), a.tokenFor(owner.ID), nil)
	requireStatus(t, http.StatusOK, w)

	w = a.do(http.MethodGet, path("/recipes/%s", recipe.ID), a.tokenFor(owner.ID), nil)
	requireStatus(t, http.StatusNotFound, w)
}

func TestFavoriteAndCooked(t *testing.T) {
	a := setupAPI(t)
	owner := testhelpers.CreateUser(t, a.db, "Owner")
	recipe := testhelpers.CreateRecipe(t, a.db, owner.ID, "Pancakes")
	token := a.tokenFor(owner.ID)

	w := a.do(http.MethodPost, path("/recipes/%s/favorite", recipe.ID), token, nil)
	requireStatus(t, http.StatusOK, w)
	assert.Equal(t, true, decodeInto[map[string]any](t, w)["is_favorite"])

	w = a.do(http.MethodPost, path("/recipes/%s/favorite", recipe.ID), token, nil)
	requireStatus(t, http.StatusOK, w)
	assert.Equal(t, false, decodeInto[map[string]any](t, w)["is_favorite"])

	w = a.do(http.MethodPost, path("/recipes/%s/cooked", recipe.ID), token, nil)
	requireStatus(t, http.StatusOK, w)
	cooked := decodeInto[types.RecipeResponse](t, w)
	assert.Equal(t, 1, cooked.CookCount)
	assert.NotNil(t, cooked.LastCookedAt)
}

func imageUpload(t *testing.T, url, token, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="photo"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestSetImage(t *testing.T) {
	images := &mocks.MockImageStore{}
	a := setupAPI(t, withImages(images))
	owner := testhelpers.CreateUser(t, a.db, "Owner")
	recipe := testhelpers.CreateRecipe(t, a.db, owner.ID, "Salad")
	png := []byte("\x89PNG\r\n\x1a\n0000")

	images.On("Upload", mock.Anything, mock.Anything, png, "image/png").Return(nil).Once()
	images.On("PresignedURL", mock.Anything, mock.Anything).Return("https://img.example/salad.png", nil)

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, imageUpload(t, path("/recipes/%s/image", recipe.ID), a.tokenFor(owner.ID), "application/octet-stream", png))
	requireStatus(t, http.StatusOK, w)
	assert.Equal(t, "https://img.example/salad.png", decodeInto[types.RecipeResponse](t, w).ImageURL)
	images.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

	var stored models.Recipe
	require.NoError(t, a.db.First(&stored, "id = ?", recipe.ID).Error)
	require.NotNil(t, stored.ImageKey)
	firstKey := *stored.ImageKey

	images.On("Upload", mock.Anything, mock.Anything, png, "image/png").Return(nil).Once()
	images.On("Delete", mock.Anything, firstKey).Return(nil).Once()
	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, imageUpload(t, path("/recipes/%s/image", recipe.ID), a.tokenFor(owner.ID), "image/png", png))
	requireStatus(t, http.StatusOK, w)

	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, imageUpload(t, path("/recipes/%s/image", recipe.ID), a.tokenFor(owner.ID), "text/plain", []byte("hello")))
	requireStatus(t, http.StatusBadRequest, w)
	assert.Equal(t, "invalid_image", errorCode(t, w))

	images.AssertExpectations(t)
}

func TestSetImageWithoutStorage(t *testing.T) {
	a := setupAPI(t)
	owner := testhelpers.CreateUser(t, a.db, "Owner")
	recipe := testhelpers.CreateRecipe(t, a.db, owner.ID, "Salad")

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, imageUpload(t, path("/recipes/%s/image", recipe.ID), a.tokenFor(owner.ID), "image/png", []byte("\x89PNG\r\n\x1a\n")))

	requireStatus(t, http.StatusServiceUnavailable, w)
	assert.Equal(t, "storage_unavailable", errorCode(t, w))
}

func TestRecipeHandlerHidesInternalErrors(t *testing.T) {
	recipes := &mocks.MockRecipeService{}
	auth := &mocks.MockAuthService{}
	userID := uuid.New()
	auth.On("ValidateToken", "token").Return(&types.TokenClaims{UserID: userID}, nil)
	recipes.On("Delete", mock.Anything, mock.Anything).Return(errors.New("connection reset by peer"))

	router := gin.New()
	api.NewRecipeHandler(recipes, auth).RegisterRoutes(router.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodDelete, path("/recipes/%s", uuid.New()), nil)
	req.Header.Set("Authorization", "Bearer token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	requireStatus(t, http.StatusInternalServerError, w)
	body := decodeInto[map[string]any](t, w)
	assert.Equal(t, "internal_error", body["error"])
	assert.NotContains(t, w.Body.String(), "connection reset")
	recipes.AssertExpectations(t)
}
