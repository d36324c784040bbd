package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebook/backend/config"
	"github.com/pageza/recipebook/backend/internal/database"
	"github.com/pageza/recipebook/backend/internal/logging"
	"github.com/pageza/recipebook/backend/internal/middleware"
	"github.com/pageza/recipebook/backend/internal/server"
	"github.com/pageza/recipebook/backend/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.New("info").Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)
	gin.SetMode(cfg.Environment.GinMode())

	const setupTime = 30 * time.Second
	setupCtx, cancel := context.WithTimeout(ctx, setupTime)
	defer cancel()

	db, err := database.Open(setupCtx, cfg.StoreURI, cfg.StoreName, logger)
	if err != nil {
		logger.Error("failed to open record store", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(closeCtx); err != nil {
			logger.Error("failed to close record store", slog.Any("error", err))
		}
	}()

	if err := database.RunMigrations(setupCtx, db, logger); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	limits := middleware.RecipeMutationLimit(cfg.RateLimitPerMinute)
	var limiter middleware.Limiter = middleware.NewLocalLimiter(limits)
	if cfg.RedisURL != "" {
		client, err := database.NewRedisClient(setupCtx, cfg.RedisURL, logger)
		if err != nil {
			// Keep serving with per-process limits
			logger.Warn("Redis unavailable, using in-process rate limiter", slog.Any("error", err))
		} else {
			defer client.Close()
			limiter = middleware.NewRedisLimiter(client, limits)
		}
	}

	svc := service.NewRecipeService(db, logger)
	srv := server.New(cfg, svc, db, limiter, logger)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		stop()
		os.Exit(1)
	}
}
