package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfarm/internal/domain/models"
	"github.com/mamadbah2/dairyfarm/internal/server/handlers"
)

// Pinger reports backing store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies groups everything the HTTP surface needs.
type Dependencies struct {
	Identity       handlers.Identity
	Production     *handlers.ProductionHandler
	Balance        *handlers.BalanceHandler
	Sales          *handlers.SalesHandler
	Summary        *handlers.SummaryHandler
	Health         Pinger
	RequestTimeout time.Duration
}

// New wires the Gin engine with required routes and middlewares.
func New(deps Dependencies, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(handlers.Timeout(deps.RequestTimeout))

	r.GET("/healthz", healthHandler(deps.Health))

	api := r.Group("/", handlers.Authenticate(deps.Identity, logger))
	managerOnly := handlers.RequireRole(models.RoleFarmManager, logger)

	api.POST("/production", deps.Production.Create)
	api.GET("/production", deps.Production.Get)
	api.PUT("/production", managerOnly, deps.Production.Update)
	api.DELETE("/production", managerOnly, deps.Production.Delete)

	api.GET("/balance", deps.Balance.Get)

	api.POST("/sales", deps.Sales.Create)
	api.GET("/sales", deps.Sales.List)

	api.POST("/production/day-end-summary", managerOnly, deps.Summary.Close)
	api.GET("/production/day-end-summary", deps.Summary.Get)

	logger.Info("router initialized")
	return r
}

func healthHandler(p Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p != nil {
			if err := p.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if user, ok := handlers.UserFrom(c); ok {
			fields = append(fields, zap.String("user_id", user.ID))
		}
		logger.Info("request completed", fields...)
	}
}
