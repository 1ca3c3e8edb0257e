package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/syshair/backend/internal/app"
	"github.com/syshair/backend/internal/http/handlers"
	"github.com/syshair/backend/internal/middleware"
	"github.com/syshair/backend/pkg/logger"
)

// SetupRoutes registers every route on router.
func SetupRoutes(router *gin.Engine, app *app.App, log *logger.Logger) {
	router.Use(cors.New(corsConfig(app.Config.CORS.AllowOrigins)))
	router.Use(app.LoggerMiddleware)
	router.Use(app.MetricsMiddleware)
	router.Use(gin.Recovery())

	health := handlers.Health(app.HealthChecks)
	router.GET("/health", health)
	router.GET("/metrics", gin.WrapH(app.MetricsHandler))
	router.POST("/webhooks/mercadopago", app.WebhookHandler.HandleMercadoPago)

	api := router.Group("/api/v1")
	{
		api.GET("/health", health)
		api.POST("/webhooks/mercadopago", app.WebhookHandler.HandleMercadoPago)

		auth := api.Group("")
		auth.Use(app.AuthMiddleware.RequireAuth())
		{
			auth.GET("/salons/:salon_id/subscription", app.SubscriptionHandler.GetStatus)
			auth.POST("/salons/:salon_id/subscription/check", app.SubscriptionHandler.Check)
			auth.POST("/push-subscriptions", app.PushHandler.Register)

			// paid features
			paid := auth.Group("")
			paid.Use(app.SubscriptionGate)
			paid.POST("/marketing/broadcast", app.MarketingHandler.Broadcast)
		}

		jobs := api.Group("/jobs")
		jobs.Use(app.AuthMiddleware.RequireAuth(middleware.ScopeService))
		{
			jobs.POST("/dispatch-notifications", app.JobsHandler.DispatchNotifications)
			jobs.POST("/recalculate-goals", app.JobsHandler.RecalculateGoals)
		}
	}

	log.Infow("API routes successfully configured")
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
