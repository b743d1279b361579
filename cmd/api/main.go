package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/larder-app/larder/backend/config"
	"github.com/larder-app/larder/backend/internal/api"
	"github.com/larder-app/larder/backend/internal/database"
	"github.com/larder-app/larder/backend/internal/logging"
	"github.com/larder-app/larder/backend/internal/middleware"
	"github.com/larder-app/larder/backend/internal/router"
	"github.com/larder-app/larder/backend/internal/server"
	"github.com/larder-app/larder/backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	// Initialize database
	db, err := database.New(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Rate limiting is shared through Redis when available.
	var redisClient *redis.Client
	var publicLimiter, linkLimiter middleware.Limiter
	shareCodeLimits := middleware.ShareCodeRateLimitConfig(cfg.ShareCodeRateLimit, cfg.ShareCodeRateWindow)
	if cfg.RedisConfigured() {
		redisClient, err = database.NewRedisClient(cfg)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		publicLimiter = middleware.NewRateLimiter(redisClient, shareCodeLimits)
		linkLimiter = middleware.NewRateLimiter(redisClient, middleware.LinkCreationRateLimitConfig())
	} else {
		logger.Warn("redis not configured, using in-process rate limiting")
		publicLimiter = middleware.NewMemoryLimiter(shareCodeLimits)
		linkLimiter = middleware.NewMemoryLimiter(middleware.LinkCreationRateLimitConfig())
	}

	var images service.ImageStore
	if cfg.S3Bucket != "" {
		s3Config, err := config.NewS3Config(context.Background(), cfg)
		if err != nil {
			logger.Error("failed to initialize image storage", "error", err)
			os.Exit(1)
		}
		images = service.NewS3ImageStore(s3Config, cfg.ImageURLTTL)
	} else {
		logger.Warn("S3_BUCKET_NAME not set, recipe images are disabled")
	}

	// Initialize services
	shares := service.NewShareService(db)
	recipes := service.NewRecipeService(db, shares, images)
	deps := api.Deps{
		DB:                  db,
		Auth:                service.NewAuthService(cfg.JWTSecret, cfg.JWTIssuer),
		Users:               service.NewUserService(db),
		Recipes:             recipes,
		Friends:             service.NewFriendService(db),
		Shares:              shares,
		Links:               service.NewShareLinkService(db, recipes),
		Shopping:            service.NewShoppingService(db, shares),
		PublicLimiter:       publicLimiter,
		LinkCreationLimiter: linkLimiter,
	}
	if redisClient != nil {
		deps.Redis = redisClient
	}

	// Create and start server
	srv := server.New(cfg, router.SetupRouter(logger, cfg.AllowedOrigins, deps))

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr(), "environment", cfg.Environment)
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Block until we receive a signal or error
	select {
	case err := <-errChan:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("received signal", "signal", sig.String())
	}

	logger.Info("shutting down server")
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
