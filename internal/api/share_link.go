package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/larder-app/larder/backend/internal/middleware"
	"github.com/larder-app/larder/backend/internal/service"
	"github.com/larder-app/larder/backend/internal/types"
)

// ShareLinkHandler manages the owner side of share links.
type ShareLinkHandler struct {
	links   service.IShareLinkService
	auth    middleware.TokenValidator
	limiter middleware.Limiter
	now     func() time.Time
}

// NewShareLinkHandler creates the handler. limiter may be nil to disable
// rate limiting of link creation.
func NewShareLinkHandler(links service.IShareLinkService, auth middleware.TokenValidator, limiter middleware.Limiter) *ShareLinkHandler {
	return &ShareLinkHandler{links: links, auth: auth, limiter: limiter, now: time.Now}
}

func (h *ShareLinkHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.AuthMiddleware(h.auth)

	create := []gin.HandlerFunc{requireAuth}
	if h.limiter != nil {
		create = append(create, middleware.RateLimitMiddleware(h.limiter))
	}
	create = append(create, h.CreateLink)

	recipeLinks := router.Group("/recipes/:id/links")
	{
		recipeLinks.GET("", requireAuth, h.ListForRecipe)
		recipeLinks.POST("", create...)
		recipeLinks.DELETE("", requireAuth, h.DeleteAllForRecipe)
	}

	links := router.Group("/share-links", requireAuth)
	{
		links.POST("/:id/revoke", h.Revoke)
		links.POST("/:id/reactivate", h.Reactivate)
		links.DELETE("/:id", h.DeleteLink)
	}
}

func (h *ShareLinkHandler) CreateLink(c *gin.Context) {
	recipeID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req types.CreateShareLinkRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	link, err := h.links.CreateLink(c.Request.Context(), recipeID, req.ExpiresInDays)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.NewShareLinkResponse(link, h.now()))
}

func (h *ShareLinkHandler) ListForRecipe(c *gin.Context) {
	recipeID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	links, err := h.links.ListForRecipe(c.Request.Context(), recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"links": links})
}

func (h *ShareLinkHandler) DeleteAllForRecipe(c *gin.Context) {
	recipeID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	removed, err := h.links.DeleteAllForRecipe(c.Request.Context(), recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (h *ShareLinkHandler) Revoke(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	link, err := h.links.Revoke(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewShareLinkResponse(link, h.now()))
}

// Reactivate turns a revoked link back on; its expiry is unchanged.
func (h *ShareLinkHandler) Reactivate(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	link, err := h.links.Reactivate(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewShareLinkResponse(link, h.now()))
}

func (h *ShareLinkHandler) DeleteLink(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.links.DeleteLink(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
