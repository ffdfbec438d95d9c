package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pacta-backend/internal/api"
	"pacta-backend/pkg/rbac"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *api.AuthHandler,
	notificationHandler *api.NotificationHandler,
	contractHandler *api.ContractHandler,
	licenseHandler *api.LicenseHandler,
	jwtSecret string,
	db *pgxpool.Pool,
) *Router {
	r := gin.Default()
	r.Use(TraceMiddleware(), MetricsMiddleware())

	// Health endpoints
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)

	// Protected
	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.GET("/notifications", notificationHandler.List)
		auth.GET("/notifications/unread", notificationHandler.UnreadCount)
		auth.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		auth.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		auth.DELETE("/notifications/:id", notificationHandler.Delete)
		auth.POST("/notifications/cleanup",
			RequirePermission(rbac.PermissionNotificationCleanup),
			notificationHandler.Cleanup)

		auth.POST("/contracts", contractHandler.Create)
		auth.GET("/contracts", contractHandler.List)
		auth.GET("/contracts/:id", contractHandler.Get)
		auth.PUT("/contracts/:id/status", contractHandler.UpdateStatus)
		auth.DELETE("/contracts/:id", contractHandler.Delete)

		auth.POST("/licenses", licenseHandler.Create)
		auth.GET("/licenses", licenseHandler.List)
		auth.GET("/licenses/:id", licenseHandler.Get)
		auth.DELETE("/licenses/:id", licenseHandler.Delete)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
