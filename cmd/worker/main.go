package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ghuser/catalog/pkg/app"
	"github.com/ghuser/catalog/pkg/cache"
	"github.com/ghuser/catalog/pkg/config"
	"github.com/ghuser/catalog/pkg/database"
	"github.com/ghuser/catalog/pkg/events"
	"github.com/ghuser/catalog/pkg/logger"
	"github.com/ghuser/catalog/pkg/storage"
	"github.com/ghuser/catalog/pkg/telemetry"
	appsvcs "github.com/ghuser/catalog/services/catalog/application/services"
	"github.com/ghuser/catalog/services/catalog/application/subscribers"
	"github.com/ghuser/catalog/services/catalog/infrastructure/persistence/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(context.WithoutCancel(ctx)) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	db, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer db.Close() //nolint:errcheck
	log.Info("database connected")

	// The worker consumes the topics the api's forwarder publishes to.
	eventBus, err := events.NewEventBus(cfg, log, events.Direct)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	images, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Error("failed to open image store", "error", err, "driver", cfg.BlobDriver)
		os.Exit(1) //nolint:gocritic
	}

	application := &app.Application{
		Config:   cfg,
		Db:       db,
		Logger:   log,
		EventBus: eventBus,
		Redis:    redisClient,
		Cache:    cache.NewCatalogCache(redisClient),
		Images:   images,
	}
	svcs := appsvcs.New(application)

	warmer := subscribers.NewCacheWarmer(appsvcs.Deps{
		Categories:    postgres.NewCategoryRepository(db, nil),
		Subcategories: postgres.NewSubcategoryRepository(db, nil),
		Items:         postgres.NewItemRepository(db, nil),
		Cache:         application.Cache,
		Logger:        log,
	})
	topics, err := warmer.Register(ctx, eventBus)
	if err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	log.Info("event subscribers registered", "topics", topics)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		svcs.Janitor.Run(ctx, cfg.JanitorInterval)
	}()
	log.Info("image janitor started", "interval", cfg.JanitorInterval, "min_age", cfg.JanitorMinAge)

	<-ctx.Done()
	log.Info("shutting down worker...")
	wg.Wait()

	// EventBus.Close (deferred) waits for in-flight handlers.
	log.Info("worker stopped")
}
