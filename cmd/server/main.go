package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonpan30062/newsaferoute/internal/cache"
	"github.com/jonpan30062/newsaferoute/internal/config"
	"github.com/jonpan30062/newsaferoute/internal/database"
	"github.com/jonpan30062/newsaferoute/internal/handlers"
	"github.com/jonpan30062/newsaferoute/internal/jobs"
	"github.com/jonpan30062/newsaferoute/internal/logger"
	"github.com/jonpan30062/newsaferoute/internal/middleware"
	"github.com/jonpan30062/newsaferoute/internal/notify"
	"github.com/jonpan30062/newsaferoute/internal/repository"
	"github.com/jonpan30062/newsaferoute/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
	// visitorTTL is how long an idle client's rate limit state is kept.
	visitorTTL = 10 * time.Minute
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	if cfg.Server.LogLevel != "" {
		if log, err = log.WithLevel(cfg.Server.LogLevel); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid LOG_LEVEL: %v\n", err)
			os.Exit(1)
		}
	}
	log.Info("Starting SafeRoute API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	// Create database connection pool
	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	if err := db.Migrate(ctx, database.MigrateUp); err != nil {
		log.Fatal("Failed to apply migrations", err, nil)
	}

	// Active alert cache. Listings fall back to the database without it.
	var alertCache cache.AlertCache = cache.Noop{}
	var cachePinger handlers.Pinger
	if cfg.Redis.Enabled() {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", err, map[string]interface{}{
				"addr": cfg.Redis.Addr,
			})
		}
		defer client.Close()

		redisCache := cache.NewRedisAlertCache(client, cfg.Redis.AlertCacheTTL)
		alertCache = redisCache
		cachePinger = redisCache
		log.Info("Alert cache enabled", map[string]interface{}{
			"addr": cfg.Redis.Addr,
			"ttl":  cfg.Redis.AlertCacheTTL.String(),
		})
	}

	// Alert change events for map clients.
	var publisher notify.Publisher = notify.Noop{}
	if cfg.MQTT.Enabled() {
		mqttPublisher, err := notify.NewMQTTPublisher(cfg.MQTT)
		if err != nil {
			log.Fatal("Failed to connect to MQTT broker", err, map[string]interface{}{
				"broker": cfg.MQTT.Broker,
			})
		}
		publisher = mqttPublisher
		log.Info("Alert events enabled", map[string]interface{}{
			"broker":       cfg.MQTT.Broker,
			"topic_prefix": cfg.MQTT.TopicPrefix,
		})
	}
	defer publisher.Close()

	// Initialize repository and service layers
	concernRepo := repository.NewConcernRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	buildingRepo := repository.NewBuildingRepository(db)

	concernService := services.NewConcernService(concernRepo, log)
	alertService := services.NewAlertService(alertRepo, alertCache, publisher, log)
	approvalService := services.NewApprovalService(concernRepo, alertCache, publisher, log)
	buildingService := services.NewBuildingService(buildingRepo, log)

	var concernLimiter *middleware.RateLimiter
	if cfg.RateLimit.ConcernRPS > 0 {
		concernLimiter = middleware.NewRateLimiter(cfg.RateLimit.ConcernRPS, cfg.RateLimit.ConcernBurst, visitorTTL)
	}

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	err = handlers.Routes{
		Health:         handlers.NewHealthHandler(db, cachePinger, cfg.Server.Env),
		Alerts:         handlers.NewAlertHandler(alertService),
		Concerns:       handlers.NewConcernHandler(concernService),
		Buildings:      handlers.NewBuildingHandler(buildingService),
		Admin:          handlers.NewAdminHandler(concernService, approvalService, alertService),
		Auth:           middleware.NewAuthenticator(cfg.Auth),
		ConcernLimiter: concernLimiter,
	}.Register(router)
	if err != nil {
		log.Fatal("Failed to register routes", err, nil)
	}

	// Background jobs
	runner := jobs.NewRunner(log)
	runner.Add(jobs.NewAlertExpiryTask(alertService, cfg.Jobs.AlertExpiryInterval))
	if concernLimiter != nil {
		runner.Add(jobs.Task{
			Name:     "rate-limit-sweep",
			Interval: time.Minute,
			Run:      concernLimiter.Sweep,
		})
	}
	runner.Start(ctx)

	// Create HTTP server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}
	runner.Stop()

	log.Info("Server exited", nil)
}
