package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/distro/backoffice/internal/application/freeissue"
	"github.com/distro/backoffice/internal/domain/shared"
	"github.com/distro/backoffice/internal/infrastructure/cache"
	"github.com/distro/backoffice/internal/infrastructure/config"
	"github.com/distro/backoffice/internal/infrastructure/event"
	"github.com/distro/backoffice/internal/infrastructure/lock"
	"github.com/distro/backoffice/internal/infrastructure/logger"
	"github.com/distro/backoffice/internal/infrastructure/metrics"
	"github.com/distro/backoffice/internal/infrastructure/persistence"
	"github.com/distro/backoffice/internal/infrastructure/telemetry"
	"github.com/distro/backoffice/internal/interfaces/http/handler"
	"github.com/distro/backoffice/internal/interfaces/http/middleware"
	"github.com/distro/backoffice/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

//	@title			Back-office API
//	@version		1.0
//	@description	Purchasing, stock and supplier free-issue claim settlement

//	@host		localhost:8080
//	@BasePath	/

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Service:    cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting back-office API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.Bool("atomic_bills", cfg.FreeIssue.Atomic),
	)

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Initialize database connection with zap-backed GORM logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.NewDBTracingConfig(cfg.Telemetry, cfg.Database), log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		log.Warn("Database tracing disabled", zap.Error(err))
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to access database pool", zap.Error(err))
	}

	// Redis backs the bill lock and idempotency keys when enabled.
	// Left as a nil interface otherwise so the in-process fallbacks are chosen.
	var redisClient redis.UniversalClient
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err), zap.String("addr", cfg.Redis.Addr()))
		}
		defer func() {
			if err := client.Close(); err != nil {
				log.Error("Error closing Redis", zap.Error(err))
			}
		}()
		redisClient = client
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	lockOpts := lock.Options{
		Wait:          cfg.FreeIssue.LockWait,
		RetryInterval: cfg.FreeIssue.LockRetryInterval,
	}
	var locker shared.Locker
	if redisClient != nil {
		locker = lock.NewRedisLocker(redisClient, lockOpts)
	} else {
		log.Warn("Redis disabled, the bill lock only serializes bills within this process")
		locker = lock.NewMemoryLocker(lockOpts)
	}
	idempotencyStore := cache.NewIdempotencyStore(redisClient, log)

	// Free-issue workflow
	freeIssueService := freeissue.NewFreeIssueService(
		persistence.NewFreeIssueScope(db.DB, cfg.FreeIssue.Atomic),
		persistence.NewRepositories(db.DB),
		locker,
		log.Named("free_issue"),
	)
	freeIssueService.SetLockOptions(cfg.FreeIssue.LockKey, cfg.FreeIssue.LockTTL)

	m := metrics.New(cfg.Metrics)
	if err := m.RegisterDBStats(sqlDB, cfg.Database.DBName); err != nil {
		log.Warn("Failed to register database pool metrics", zap.Error(err))
	}

	// Domain events feed the workflow counters; the idempotent wrapper drops redeliveries
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewIdempotentHandler(metrics.NewEventHandler(m), idempotencyStore, log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()
	freeIssueService.SetEventPublisher(eventBus)

	freeIssueHandler := handler.NewFreeIssueHandler(freeIssueService)
	freeIssueHandler.SetLockContentionRecorder(m)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engineOpts := router.EngineOptions{
		HTTP:       cfg.HTTP,
		Tracing:    middleware.TracingConfigFrom(cfg.Telemetry),
		Businesses: cfg,
		Idempotency: middleware.IdempotencyConfig{
			Store:  idempotencyStore,
			TTL:    cfg.FreeIssue.IdempotencyTTL,
			Prefix: "http",
		},
		MetricsPath: cfg.Metrics.Path,
		Logger:      log,
	}
	if cfg.Metrics.Enabled {
		engineOpts.Metrics = m
	}
	engine := router.NewEngine(engineOpts, router.Handlers{
		FreeIssue: freeIssueHandler,
		Claims:    handler.NewClaimHandler(freeIssueService),
		Purchases: handler.NewPurchaseHandler(freeIssueService),
		System:    handler.NewSystemHandler(freeIssueService, sqlDB),
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}
