package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfarm/internal/domain/models"
)

// statusFor maps the domain error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrInsufficientBalance), errors.Is(err, models.ErrInvalidState):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrTooEarly):
		return http.StatusTooEarly
	case errors.Is(err, models.ErrTransient):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError aborts the request with {"error", "kind"}. Server-side
// failures are logged in full and returned without detail.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	message := err.Error()
	fields := []zap.Field{
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	}

	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", fields...)
		if status == http.StatusInternalServerError {
			message = "internal error"
		} else {
			message = "service temporarily unavailable"
		}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		logger.Info("request rejected", fields...)
	default:
		logger.Warn("request rejected", fields...)
	}

	c.AbortWithStatusJSON(status, gin.H{"error": message, "kind": models.Kind(err)})
}

// bindingError turns a gin binding failure into a validation error.
func bindingError(err error) error {
	return models.Validationf("invalid payload: %v", err)
}
