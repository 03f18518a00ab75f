package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/craftlane/personalizer-backend/api/routes"
	"github.com/craftlane/personalizer-backend/internal/catalog"
	"github.com/craftlane/personalizer-backend/internal/storefront"
	"github.com/craftlane/personalizer-backend/internal/template"
	"github.com/craftlane/personalizer-backend/pkg/cache"
	"github.com/craftlane/personalizer-backend/pkg/config"
	"github.com/craftlane/personalizer-backend/pkg/db"
	"github.com/craftlane/personalizer-backend/pkg/logger"
	"github.com/craftlane/personalizer-backend/pkg/metrics"
	"github.com/craftlane/personalizer-backend/pkg/migrate"
	"github.com/craftlane/personalizer-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	memoryCache := cache.NewMemory(cache.Options{DefaultTTL: cfg.Cache.DefaultTTL})
	go cache.RunSweeper(ctx, memoryCache, cfg.Cache.SweepInterval, logg)

	registry := prometheus.NewRegistry()
	previewMetrics := metrics.NewPreviewMetrics(registry)

	templateRepo := template.NewRepository(dbClient.DB())
	templateService, err := template.NewService(template.ServiceParams{
		DB:     dbClient,
		Repo:   templateRepo,
		Cache:  memoryCache,
		Logger: logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create template service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.ServiceParams{
		Repo:   catalog.NewRepository(dbClient.DB()),
		Cache:  memoryCache,
		Logger: logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create catalog service", err)
		os.Exit(1)
	}

	storefrontService, err := storefront.NewService(storefront.ServiceParams{
		Templates:   templateRepo,
		Repo:        storefront.NewRepository(dbClient.DB()),
		Cache:       memoryCache,
		Logger:      logg,
		Metrics:     previewMetrics,
		TemplateTTL: cfg.Storefront.TemplateTTL,
	})
	if err != nil {
		logg.Error(ctx, "failed to create storefront service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			templateService,
			catalogService,
			storefrontService,
		),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "error shutting down api server", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shut down gracefully")
}
