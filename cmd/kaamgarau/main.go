package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"kaamgarau/internal/analytics"
	"kaamgarau/internal/auth"
	"kaamgarau/internal/backend"
	"kaamgarau/internal/cli"
	"kaamgarau/internal/config"
	apphttp "kaamgarau/internal/http"
	"kaamgarau/internal/log"
	"kaamgarau/internal/metrics"
	"kaamgarau/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
	dashboardCache  = 512
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).Validate)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server failed", log.FieldError, err.Error())
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	be, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := be.Cleanup(); err != nil {
			logger.Warn("Backend cleanup failed", log.FieldError, err.Error())
		}
	}()

	catalog := analytics.DefaultCatalog()
	if cfg.CategoryCatalogFile != "" {
		catalog, err = analytics.LoadCatalog(cfg.CategoryCatalogFile)
		if err != nil {
			return err
		}
		logger.Info("Loaded category catalog", "file", cfg.CategoryCatalogFile)
	}

	pm := metrics.NewManager()

	dashboard := services.NewDashboardService(be.Store, be.Store, be.Store,
		services.WithCache(dashboardCache, cfg.CacheTTL),
		services.WithAggregator(analytics.NewAggregator(catalog)),
		services.WithDashboardMetrics(pm),
		services.WithDashboardLogger(logger),
	)

	jobOpts := []services.JobOption{
		services.WithJobMetrics(pm),
		services.WithJobLogger(logger),
		services.WithInvalidation(dashboard.Invalidate),
	}
	if be.Publisher != nil {
		jobOpts = append(jobOpts, services.WithPublisher(be.Publisher))
	} else {
		logger.Warn("No AMQP publisher, levels are recalculated on worker startup only")
	}
	jobs := services.NewJobService(be.Store, jobOpts...)

	tokens, err := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpirationHours)
	if err != nil {
		return err
	}

	srv, err := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
	}, apphttp.Deps{
		Dashboard: dashboard,
		Jobs:      jobs,
		Auth:      tokens,
		Metrics:   pm,
		Logger:    logger,
		Checks:    be.Checks,
	})
	if err != nil {
		return err
	}

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
	})

	logger.Info("Starting kaamgarau server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"spending_source", cfg.SpendingSource,
		"cache_ttl", cfg.CacheTTL.String())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
	return nil
}
