package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/ocean-series-service/internal/adapter/http"
	"github.com/couchcryptid/ocean-series-service/internal/adapter/noaa"
	"github.com/couchcryptid/ocean-series-service/internal/cache"
	"github.com/couchcryptid/ocean-series-service/internal/config"
	"github.com/couchcryptid/ocean-series-service/internal/dashboard"
	"github.com/couchcryptid/ocean-series-service/internal/domain"
	"github.com/couchcryptid/ocean-series-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	catalog, err := cfg.LoadCatalog()
	if err != nil {
		logger.Error("failed to load catalog", "error", err, "path", cfg.CatalogPath)
		os.Exit(1)
	}
	generator, err := domain.NewGenerator(catalog)
	if err != nil {
		logger.Error("invalid catalog", "error", err)
		os.Exit(1)
	}

	// Observed sea level is feature-flagged via NOAA_ENABLED.
	var seaLevel dashboard.SeaLevelSource
	if cfg.NOAAEnabled {
		seaLevel = noaa.NewClient(noaa.Options{
			URL:     cfg.NOAAURL,
			Timeout: cfg.NOAATimeout,
			Retries: cfg.NOAARetries,
		}, logger, metrics)
		logger.Info("noaa sea level enabled", "url", cfg.NOAAURL, "refresh", cfg.NOAARefresh)
	} else {
		logger.Info("noaa sea level disabled")
	}

	clock := clockwork.NewRealClock()
	svc := dashboard.New(generator, cache.New(cfg.CacheSize, cfg.CacheTTL, clock, metrics), seaLevel, clock, logger, metrics, dashboard.Options{
		Range:           cfg.Range(),
		Scenario:        cfg.Scenario,
		Seed:            cfg.Seed,
		ObservedRefresh: cfg.NOAARefresh,
		MaxYears:        cfg.MaxYears,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Generate the default view before reporting ready.
	go func() {
		if err := svc.Warm(ctx); err != nil {
			logger.Error("warm failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
