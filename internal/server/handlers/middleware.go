package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfarm/internal/auth"
	"github.com/mamadbah2/dairyfarm/internal/domain/models"
)

const userContextKey = "dairyfarm.user"

// Identity resolves bearer tokens to users.
type Identity interface {
	CurrentUser(token string) (models.User, error)
}

// Authenticate requires a valid bearer token and stores the user on the context.
func Authenticate(identity Identity, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			respondError(c, logger, models.ErrUnauthorized)
			return
		}
		user, err := identity.CurrentUser(token)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireRole lets only users holding role through.
func RequireRole(role models.Role, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		user, ok := UserFrom(c)
		if !ok {
			respondError(c, logger, models.ErrUnauthorized)
			return
		}
		if user.Role != role {
			respondError(c, logger, models.ErrForbidden)
			return
		}
		c.Next()
	}
}

// Timeout bounds every request context.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// UserFrom returns the authenticated user, if any.
func UserFrom(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}
