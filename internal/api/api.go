package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/larder-app/larder/backend/internal/middleware"
	"github.com/larder-app/larder/backend/internal/service"
)

// Deps are the services the API is built from. Limiters and Redis may be nil.
type Deps struct {
	DB    *gorm.DB
	Redis redis.Cmdable
	Auth  middleware.TokenValidator

	Users    service.IUserService
	Recipes  service.IRecipeService
	Friends  service.IFriendService
	Shares   service.IShareService
	Links    service.IShareLinkService
	Shopping service.IShoppingService

	PublicLimiter       middleware.Limiter
	LinkCreationLimiter middleware.Limiter
}

// SetupAPI registers the health check at the root and every handler under /api/v1.
func SetupAPI(router *gin.Engine, deps Deps) {
	NewHealthHandler(deps.DB, deps.Redis).RegisterRoutes(router)

	v1 := router.Group("/api/v1")
	{
		NewUserHandler(deps.Users, deps.Auth).RegisterRoutes(v1)
		NewRecipeHandler(deps.Recipes, deps.Auth).RegisterRoutes(v1)
		NewFriendHandler(deps.Friends, deps.Auth).RegisterRoutes(v1)
		NewShareHandler(deps.Shares, deps.Auth).RegisterRoutes(v1)
		NewShareLinkHandler(deps.Links, deps.Auth, deps.LinkCreationLimiter).RegisterRoutes(v1)
		NewPublicHandler(deps.Links, deps.Auth, deps.PublicLimiter).RegisterRoutes(v1)
		NewShoppingHandler(deps.Shopping, deps.Auth).RegisterRoutes(v1)
	}
}
