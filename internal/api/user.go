package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/larder-app/larder/backend/internal/middleware"
	"github.com/larder-app/larder/backend/internal/service"
	"github.com/larder-app/larder/backend/internal/types"
)

// UserHandler serves the caller's profile and friend search.
type UserHandler struct {
	users service.IUserService
	auth  middleware.TokenValidator
}

func NewUserHandler(users service.IUserService, auth middleware.TokenValidator) *UserHandler {
	return &UserHandler{users: users, auth: auth}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users", middleware.AuthMiddleware(h.auth))
	{
		users.GET("/me", h.GetMe)
		users.PUT("/me", h.UpdateMe)
		users.GET("/search", h.Search)
	}
}

func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.users.GetCurrent(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMe creates the caller's record on first use.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req types.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.users.UpdateCurrent(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Search finds users the caller could send a friend request to.
func (h *UserHandler) Search(c *gin.Context) {
	users, err := h.users.SearchCandidates(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	summaries := make([]types.UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, types.NewUserSummary(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{"users": summaries})
}
