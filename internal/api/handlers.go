package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pageza/recipebook/backend/internal/service"
)

const welcomeText = "Welcome to the Simple Recipe Book API! Use /recipes to see all recipes."

// HealthChecker reports whether the record store can serve requests
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthCheck returns the health status of the API
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Recipe Book API is running",
	})
}

// Readiness answers 503 until the record store responds
func Readiness(store HealthChecker, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := store.HealthCheck(ctx); err != nil {
			logger.WarnContext(ctx, "readiness check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "record store unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}

// Welcome answers the root path with a plain-text greeting
func Welcome(c *gin.Context) {
	c.String(http.StatusOK, welcomeText)
}

// RegisterRoutes registers all API routes. limit guards the mutating recipe
// routes and may be nil.
func RegisterRoutes(router *gin.Engine, svc service.IRecipeService, store HealthChecker, limit gin.HandlerFunc, logger *slog.Logger) {
	router.GET("/", Welcome)
	router.GET("/health", HealthCheck)
	router.GET("/ready", Readiness(store, logger))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if limit == nil {
		limit = func(c *gin.Context) { c.Next() }
	}

	NewRecipeHandler(svc).RegisterRoutes(&router.RouterGroup, limit)
}
