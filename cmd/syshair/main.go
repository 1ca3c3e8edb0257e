package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/syshair/backend/internal/app"
	"github.com/syshair/backend/internal/config"
	"github.com/syshair/backend/internal/db"
	"github.com/syshair/backend/internal/http/handlers"
	"github.com/syshair/backend/internal/http/routes"
	"github.com/syshair/backend/internal/kafka"
	"github.com/syshair/backend/internal/mercadopago"
	"github.com/syshair/backend/internal/metrics"
	"github.com/syshair/backend/internal/middleware"
	"github.com/syshair/backend/internal/repository"
	"github.com/syshair/backend/internal/scheduler"
	"github.com/syshair/backend/internal/services"
	"github.com/syshair/backend/pkg/logger"
)

const subscriptionCacheTTL = 5 * time.Minute

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.New(logger.INFO).Fatalw("Failed to load configuration", "error", err)
	}
	log := initLogger(cfg)
	defer func() { _ = log.Sync() }()

	log.Infow("SysHair backend starting up...", "env", cfg.App.Env)

	if err := cfg.Validate(); err != nil {
		log.Fatalw("Invalid configuration", "error", err)
	}
	if cfg.Auth.JWTSecret == "" {
		log.Warnw("JWT secret is not set, every authenticated route will reject requests")
	}
	if cfg.MercadoPago.AccessToken == "" {
		log.Warnw("Mercado Pago access token is not set, webhook reconciliation will fail")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	dbClient, err := db.NewDBClient(ctx, cfg.Database.DSN, log)
	if err != nil {
		log.Fatalw("Failed to connect to database", "error", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			log.Errorw("Error closing database connection", "error", err)
		}
	}()
	log.Infow("Database connection established")
	health := map[string]handlers.Pinger{"database": dbClient}

	registry := prometheus.NewRegistry()
	billingMetrics := metrics.NewBillingMetrics(registry, log)
	jobMetrics := metrics.NewJobMetrics(registry, log)
	systemMetrics := metrics.NewSystemMetrics(registry, log)
	systemMetrics.StartRecording(15 * time.Second)
	defer systemMetrics.Stop()

	var subscriptionRepo repository.SubscriptionRepository = repository.NewPostgresSubscriptionRepository(dbClient.DB(), log)
	var locker scheduler.Locker

	if cfg.Redis.Addr != "" {
		rdb, err := repository.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		if err != nil {
			log.Warnw("Failed to connect to Redis, continuing without cache and job locks", "error", err)
		} else {
			defer func() {
				if err := rdb.Close(); err != nil {
					log.Errorw("Error closing Redis connection", "error", err)
				}
			}()
			cache := repository.NewRedisCacheRepository(rdb, subscriptionCacheTTL, log)
			subscriptionRepo = repository.NewCachedSubscriptionRepository(subscriptionRepo, cache, log)
			locker = scheduler.NewRedisLocker(rdb)
			health["redis"] = redisPinger{rdb}
			log.Infow("Using cached subscription repository and Redis job locks")
		}
	} else {
		log.Warnw("Redis is not configured, jobs run without distributed locks")
	}

	var events services.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		if err := kafka.EnsureKafkaTopics(ctx, cfg.Kafka.Brokers, log); err != nil {
			log.Warnw("Failed to ensure Kafka topics", "error", err)
		}
		producer, err := kafka.NewKafkaProducer(cfg.Kafka.Brokers, log)
		if err != nil {
			log.Errorw("Failed to initialize Kafka producer, continuing without event publishing", "error", err)
		} else {
			log.Infow("Kafka producer initialized")
			events = producer
			defer func() {
				if err := producer.Close(); err != nil {
					log.Errorw("Error closing Kafka producer", "error", err)
				}
			}()
		}
	}

	sqlDB := dbClient.DB()
	notificationRepo := repository.NewPostgresNotificationRepository(sqlDB, log)
	pushRepo := repository.NewPostgresPushSubscriptionRepository(sqlDB, log)

	mpClient := mercadopago.NewClient(mercadopago.Config{
		AccessToken: cfg.MercadoPago.AccessToken,
		BaseURL:     cfg.MercadoPago.BaseURL,
		Timeout:     cfg.MercadoPago.Timeout,
	}, log)

	svc := app.Services{
		Webhooks: services.NewWebhookService(
			subscriptionRepo,
			repository.NewPostgresPaymentRepository(sqlDB, log),
			mpClient,
			events,
			billingMetrics,
			log,
		),
		Subscriptions: services.NewSubscriptionService(subscriptionRepo, log),
		Marketing: services.NewMarketingService(
			repository.NewPostgresClientRepository(sqlDB, log),
			pushRepo,
			notificationRepo,
			events,
			jobMetrics,
			log,
		),
		Push: services.NewPushService(pushRepo, log),
		Dispatcher: services.NewDispatcher(
			notificationRepo,
			[]services.ChannelSender{services.NewWhatsAppSender(log), services.NewPushSender(log)},
			events,
			jobMetrics,
			log,
			cfg.Jobs.BatchSize,
		),
		Goals: services.NewGoalService(
			repository.NewPostgresGoalRepository(sqlDB, log),
			repository.NewPostgresStatsRepository(sqlDB, log),
			jobMetrics,
			log,
		),
	}

	sched := scheduler.New(locker, cfg.Jobs.LockTTL, jobMetrics, log)
	sched.Register(scheduler.Job{
		Name:     "dispatch-notifications",
		Interval: cfg.Jobs.DispatchInterval,
		Run: func(ctx context.Context) error {
			_, err := svc.Dispatcher.Run(ctx)
			return err
		},
	})
	sched.Register(scheduler.Job{
		Name:     "recalculate-goals",
		Interval: cfg.Jobs.GoalsInterval,
		Run: func(ctx context.Context) error {
			_, err := svc.Goals.Recalculate(ctx)
			return err
		},
	})
	sched.Start(ctx)

	validator := &middleware.DefaultTokenValidator{Secret: []byte(cfg.Auth.JWTSecret)}
	application := app.NewApp(cfg, svc, validator, registry, health, log)

	router := gin.New()
	routes.SetupRoutes(router, application, log)

	httpServer := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Infow("Starting HTTP server", "port", cfg.App.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("Failed to start HTTP server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infow("Shutdown signal received")

	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	log.Infow("Shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorw("HTTP server shutdown error", "error", err)
	} else {
		log.Infow("HTTP server gracefully stopped")
	}

	log.Infow("Cleanup finished. Goodbye!")
}

func initLogger(cfg *config.Config) *logger.Logger {
	level := logger.ParseLevel(cfg.Log.Level)
	if cfg.IsProduction() {
		return logger.NewProduction(level)
	}
	return logger.New(level)
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
