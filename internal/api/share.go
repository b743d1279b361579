package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/larder-app/larder/backend/internal/middleware"
	"github.com/larder-app/larder/backend/internal/service"
	"github.com/larder-app/larder/backend/internal/types"
)

// ShareHandler exposes direct, friend-gated recipe shares.
type ShareHandler struct {
	shares service.IShareService
	auth   middleware.TokenValidator
}

func NewShareHandler(shares service.IShareService, auth middleware.TokenValidator) *ShareHandler {
	return &ShareHandler{shares: shares, auth: auth}
}

func (h *ShareHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.AuthMiddleware(h.auth)

	shares := router.Group("/recipes/:id/shares", requireAuth)
	{
		shares.GET("", h.ListForRecipe)
		shares.POST("", h.Share)
		shares.POST("/batch", h.ShareWithMultiple)
		shares.DELETE("", h.UnshareAll)
		shares.DELETE("/:friendId", h.Unshare)
	}
	router.GET("/shares/received", requireAuth, h.ListReceived)
}

func (h *ShareHandler) ListForRecipe(c *gin.Context) {
	recipeID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	shares, err := h.shares.ListForRecipe(c.Request.Context(), recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shares": shares})
}

func (h *ShareHandler) Share(c *gin.Context) {
	recipeID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req types.ShareRecipeRequest
	if !bindJSON(c, &req) {
		return
	}
	share, err := h.shares.Share(c.Request.Context(), recipeID, req.FriendID, req.ShareOptions)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, share)
}

// ShareWithMultiple reports a result per friend; one failure does not stop the rest.
func (h *ShareHandler) ShareWithMultiple(c *gin.Context) {
	recipeID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req types.ShareWithMultipleRequest
	if !bindJSON(c, &req) {
		return
	}
	results, err := h.shares.ShareWithMultiple(c.Request.Context(), recipeID, req.FriendIDs, req.ShareOptions)
	if err != nil {
		respondError(c, err)
		return
	}

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"results":   results,
		"succeeded": succeeded,
		"failed":    len(results) - succeeded,
	})
}

func (h *ShareHandler) Unshare(c *gin.Context) {
	recipeID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	friendID, ok := uuidParam(c, "friendId")
	if !ok {
		return
	}
	if err := h.shares.Unshare(c.Request.Context(), recipeID, friendID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ShareHandler) UnshareAll(c *gin.Context) {
	recipeID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	removed, err := h.shares.UnshareAll(c.Request.Context(), recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (h *ShareHandler) ListReceived(c *gin.Context) {
	shares, err := h.shares.ListReceived(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shares": shares})
}
