package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/larder-app/larder/backend/internal/middleware"
	"github.com/larder-app/larder/backend/internal/service"
	"github.com/larder-app/larder/backend/internal/types"
)

// PublicHandler serves share-code lookups to anyone holding a code.
type PublicHandler struct {
	links   service.IShareLinkService
	auth    middleware.TokenValidator
	limiter middleware.Limiter
}

func NewPublicHandler(links service.IShareLinkService, auth middleware.TokenValidator, limiter middleware.Limiter) *PublicHandler {
	return &PublicHandler{links: links, auth: auth, limiter: limiter}
}

func (h *PublicHandler) RegisterRoutes(router *gin.RouterGroup) {
	chain := []gin.HandlerFunc{middleware.OptionalAuthMiddleware(h.auth)}
	if h.limiter != nil {
		chain = append(chain, middleware.RateLimitMiddleware(h.limiter))
	}

	share := router.Group("/public/share/:code", chain...)
	{
		share.GET("", h.AccessByCode)
		share.GET("/validate", h.ValidateShareCode)
		share.POST("/access", h.RecordAccess)
	}
}

// invalidStatus maps an invalid code onto a response status: unknown codes
// are 404, revoked or expired ones 410.
func invalidStatus(v types.ShareCodeValidation) int {
	if v.Reason == types.LinkReasonNotFound {
		return http.StatusNotFound
	}
	return http.StatusGone
}

// AccessByCode returns the shared recipe without counting an access.
func (h *PublicHandler) AccessByCode(c *gin.Context) {
	view, err := h.links.AccessByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !view.Valid {
		c.JSON(invalidStatus(view.ShareCodeValidation), view)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ValidateShareCode always answers 200; validity is in the body.
func (h *PublicHandler) ValidateShareCode(c *gin.Context) {
	result, err := h.links.ValidateShareCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PublicHandler) RecordAccess(c *gin.Context) {
	result, err := h.links.RecordAccess(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !result.Valid {
		c.JSON(invalidStatus(*result), result)
		return
	}
	c.JSON(http.StatusOK, result)
}
