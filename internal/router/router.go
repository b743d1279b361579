package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/larder-app/larder/backend/internal/api"
	"github.com/larder-app/larder/backend/internal/middleware"
)

// SetupRouter builds the engine with the global middleware chain and all routes.
func SetupRouter(logger *slog.Logger, allowedOrigins []string, deps api.Deps) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(
		middleware.RequestLogger(logger),
		middleware.ErrorHandler(),
		middleware.CORS(allowedOrigins),
	)
	router.NoRoute(middleware.NotFound)
	router.NoMethod(middleware.MethodNotAllowed)

	api.SetupAPI(router, deps)
	return router
}
