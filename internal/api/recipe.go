package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/larder-app/larder/backend/internal/apperr"
	"github.com/larder-app/larder/backend/internal/middleware"
	"github.com/larder-app/larder/backend/internal/service"
	"github.com/larder-app/larder/backend/internal/types"
	"github.com/larder-app/larder/backend/internal/validate"
)

// maxUploadBytes bounds the multipart image read; the service enforces the real limit.
const maxUploadBytes = 6 << 20

type RecipeHandler struct {
	recipes service.IRecipeService
	auth    middleware.TokenValidator
}

func NewRecipeHandler(recipes service.IRecipeService, auth middleware.TokenValidator) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, auth: auth}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.AuthMiddleware(h.auth)
	optionalAuth := middleware.OptionalAuthMiddleware(h.auth)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optionalAuth, h.ListRecipes)
		recipes.GET("/:id", optionalAuth, h.GetRecipe)
		recipes.POST("", requireAuth, h.CreateRecipe)
		recipes.PUT("/:id", requireAuth, h.UpdateRecipe)
		recipes.DELETE("/:id", requireAuth, h.DeleteRecipe)
		recipes.POST("/:id/favorite", requireAuth, h.ToggleFavorite)
		recipes.POST("/:id/cooked", requireAuth, h.MarkCooked)
		recipes.PUT("/:id/image", requireAuth, h.SetImage)
	}
}

// ListRecipes returns the recipes visible to the caller. Anonymous callers see
// the global catalog only.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	var q types.ListRecipesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}
	if fields := validate.Map(&q); fields != nil {
		respondValidation(c, fields)
		return
	}

	recipes, err := h.recipes.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// GetRecipe answers 404 both for missing recipes and ones the caller may not see.
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	recipe, err := h.recipes.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if recipe == nil {
		respondError(c, apperr.ErrRecipeNotFound)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.CreateRecipeRequest
	if !bindJSON(c, &req) {
		return
	}
	recipe, err := h.recipes.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req types.UpdateRecipeRequest
	if !bindJSON(c, &req) {
		return
	}
	recipe, err := h.recipes.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Recipe deleted successfully",
		"id":      id,
	})
}

func (h *RecipeHandler) ToggleFavorite(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	favorite, err := h.recipes.ToggleFavorite(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "is_favorite": favorite})
}

func (h *RecipeHandler) MarkCooked(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	recipe, err := h.recipes.MarkCooked(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// SetImage accepts a multipart "image" file and stores it as the recipe photo.
func (h *RecipeHandler) SetImage(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "image file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "failed to read image"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "application/octet-stream" {
		// let the service sniff it
		contentType = ""
	}
	recipe, err := h.recipes.SetImage(c.Request.Context(), id, data, contentType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}
