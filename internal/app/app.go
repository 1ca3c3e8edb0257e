package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/syshair/backend/internal/config"
	"github.com/syshair/backend/internal/http/handlers"
	"github.com/syshair/backend/internal/metrics"
	"github.com/syshair/backend/internal/middleware"
	"github.com/syshair/backend/internal/services"
	"github.com/syshair/backend/pkg/logger"
)

// Services groups the business services the HTTP layer exposes.
type Services struct {
	Webhooks      *services.WebhookService
	Subscriptions *services.SubscriptionService
	Marketing     *services.MarketingService
	Push          *services.PushService
	Dispatcher    *services.Dispatcher
	Goals         *services.GoalService
}

// App is the container for everything the router needs.
type App struct {
	Config              *config.Config
	WebhookHandler      *handlers.WebhookHandler
	SubscriptionHandler *handlers.SubscriptionHandler
	MarketingHandler    *handlers.MarketingHandler
	PushHandler         *handlers.PushHandler
	JobsHandler         *handlers.JobsHandler
	AuthMiddleware      *middleware.JWTMiddleware
	SubscriptionGate    gin.HandlerFunc
	LoggerMiddleware    gin.HandlerFunc
	MetricsMiddleware   gin.HandlerFunc
	MetricsHandler      http.Handler
	HealthChecks        map[string]handlers.Pinger
	Logger              *logger.Logger
}

// NewApp builds handlers and middleware around the given services.
func NewApp(
	cfg *config.Config,
	svc Services,
	validator middleware.TokenValidator,
	registry *prometheus.Registry,
	health map[string]handlers.Pinger,
	log *logger.Logger,
) *App {
	if health == nil {
		health = map[string]handlers.Pinger{}
	}
	return &App{
		Config:              cfg,
		WebhookHandler:      handlers.NewWebhookHandler(svc.Webhooks, log),
		SubscriptionHandler: handlers.NewSubscriptionHandler(svc.Subscriptions, log),
		MarketingHandler:    handlers.NewMarketingHandler(svc.Marketing, log),
		PushHandler:         handlers.NewPushHandler(svc.Push, log),
		JobsHandler:         handlers.NewJobsHandler(svc.Dispatcher, svc.Goals, log),
		AuthMiddleware:      middleware.NewJWTMiddleware(log, validator),
		SubscriptionGate:    middleware.RequireActiveSubscription(svc.Subscriptions, log),
		LoggerMiddleware:    middleware.RequestLogger(log),
		MetricsMiddleware:   middleware.PrometheusMiddleware(metrics.NewHTTPMetrics(registry)),
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		HealthChecks:        health,
		Logger:              log,
	}
}
