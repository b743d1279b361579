package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/larder-app/larder/backend/internal/middleware"
	"github.com/larder-app/larder/backend/internal/service"
	"github.com/larder-app/larder/backend/internal/types"
)

type ShoppingHandler struct {
	shopping service.IShoppingService
	auth     middleware.TokenValidator
}

func NewShoppingHandler(shopping service.IShoppingService, auth middleware.TokenValidator) *ShoppingHandler {
	return &ShoppingHandler{shopping: shopping, auth: auth}
}

func (h *ShoppingHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.AuthMiddleware(h.auth)

	lists := router.Group("/shopping-lists", requireAuth)
	{
		lists.GET("", h.ListLists)
		lists.POST("", h.CreateList)
		lists.GET("/active", h.GetActiveList)
		lists.POST("/items", h.AddItem)
		lists.POST("/recipes/:recipeId", h.AddRecipeIngredients)
		lists.GET("/:id", h.GetList)
		lists.DELETE("/:id", h.DeleteList)
		lists.POST("/:id/activate", h.SetActiveList)
		lists.POST("/:id/clear-checked", h.ClearChecked)
	}

	items := router.Group("/shopping-items", requireAuth)
	{
		items.POST("/:id/toggle", h.ToggleItem)
		items.DELETE("/:id", h.RemoveItem)
	}
}

func (h *ShoppingHandler) ListLists(c *gin.Context) {
	lists, err := h.shopping.ListLists(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lists": lists})
}

func (h *ShoppingHandler) CreateList(c *gin.Context) {
	var req types.CreateShoppingListRequest
	if !bindJSON(c, &req) {
		return
	}
	list, err := h.shopping.CreateList(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, list)
}

// GetActiveList answers 404 when the caller has no active list yet.
func (h *ShoppingHandler) GetActiveList(c *gin.Context) {
	list, err := h.shopping.GetActiveList(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ShoppingHandler) GetList(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	list, err := h.shopping.GetList(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ShoppingHandler) DeleteList(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.shopping.DeleteList(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ShoppingHandler) SetActiveList(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	list, err := h.shopping.SetActiveList(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ShoppingHandler) ClearChecked(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	removed, err := h.shopping.ClearChecked(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// AddItem merges into an existing item of the same name when there is one.
func (h *ShoppingHandler) AddItem(c *gin.Context) {
	var req types.AddShoppingItemRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.shopping.AddItem(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusCreated
	if result.Merged {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

func (h *ShoppingHandler) AddRecipeIngredients(c *gin.Context) {
	recipeID, ok := uuidParam(c, "recipeId")
	if !ok {
		return
	}
	var req types.AddRecipeIngredientsRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	result, err := h.shopping.AddRecipeIngredients(c.Request.Context(), recipeID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ShoppingHandler) ToggleItem(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	item, err := h.shopping.ToggleItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ShoppingHandler) RemoveItem(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.shopping.RemoveItem(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
