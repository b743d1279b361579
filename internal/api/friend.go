package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/larder-app/larder/backend/internal/middleware"
	"github.com/larder-app/larder/backend/internal/service"
	"github.com/larder-app/larder/backend/internal/types"
)

// FriendHandler exposes the friendship state machine.
type FriendHandler struct {
	friends service.IFriendService
	auth    middleware.TokenValidator
}

func NewFriendHandler(friends service.IFriendService, auth middleware.TokenValidator) *FriendHandler {
	return &FriendHandler{friends: friends, auth: auth}
}

func (h *FriendHandler) RegisterRoutes(router *gin.RouterGroup) {
	friends := router.Group("/friends", middleware.AuthMiddleware(h.auth))
	{
		friends.GET("", h.ListFriends)
		friends.GET("/requests", h.ListRequests)
		friends.POST("/requests", h.SendRequest)
		friends.POST("/requests/:id/accept", h.AcceptRequest)
		friends.POST("/requests/:id/reject", h.RejectRequest)
		friends.DELETE("/requests/:id", h.CancelRequest)
		friends.GET("/:userId/status", h.Status)
		friends.DELETE("/:userId", h.RemoveFriend)
		friends.POST("/:userId/block", h.BlockUser)
		friends.DELETE("/:userId/block", h.UnblockUser)
	}
}

func (h *FriendHandler) ListFriends(c *gin.Context) {
	friends, err := h.friends.ListFriends(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

func (h *FriendHandler) ListRequests(c *gin.Context) {
	requests, err := h.friends.ListRequests(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *FriendHandler) SendRequest(c *gin.Context) {
	var req types.FriendRequestInput
	if !bindJSON(c, &req) {
		return
	}
	friendship, err := h.friends.SendRequest(c.Request.Context(), req.FriendID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, friendship)
}

func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	friendship, err := h.friends.AcceptRequest(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, friendship)
}

func (h *FriendHandler) RejectRequest(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.friends.RejectRequest(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FriendHandler) CancelRequest(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.friends.CancelRequest(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Status reports the caller's relationship with another user.
func (h *FriendHandler) Status(c *gin.Context) {
	other, ok := uuidParam(c, "userId")
	if !ok {
		return
	}
	caller, _ := middleware.UserID(c)
	status, err := h.friends.StatusBetween(c.Request.Context(), caller, other)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": other, "status": status})
}

func (h *FriendHandler) RemoveFriend(c *gin.Context) {
	other, ok := uuidParam(c, "userId")
	if !ok {
		return
	}
	if err := h.friends.RemoveFriend(c.Request.Context(), other); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FriendHandler) BlockUser(c *gin.Context) {
	other, ok := uuidParam(c, "userId")
	if !ok {
		return
	}
	if err := h.friends.BlockUser(c.Request.Context(), other); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FriendHandler) UnblockUser(c *gin.Context) {
	other, ok := uuidParam(c, "userId")
	if !ok {
		return
	}
	if err := h.friends.UnblockUser(c.Request.Context(), other); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
