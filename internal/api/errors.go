package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebook/backend/internal/middleware"
	"github.com/pageza/recipebook/backend/internal/service"
)

// writeError maps a service error onto a status and client message.
// Store failures get fallback, which names the failed operation.
func writeError(c *gin.Context, err error, fallback string) {
	var validation *service.ValidationError

	switch {
	case errors.Is(err, service.ErrInvalidID):
		abort(c, http.StatusBadRequest, "Invalid recipe ID format")
	case errors.As(err, &validation):
		abort(c, http.StatusBadRequest, validation.Message)
	case errors.Is(err, service.ErrNotFound):
		abort(c, http.StatusNotFound, "Recipe not found")
	default:
		abort(c, http.StatusInternalServerError, fallback)
	}
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, middleware.ErrorResponse{Error: message})
}
