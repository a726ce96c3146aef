package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"kaamgarau/internal/backend"
	"kaamgarau/internal/cli"
	"kaamgarau/internal/config"
	"kaamgarau/internal/log"
	"kaamgarau/internal/metrics"
	"kaamgarau/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateWorker)

	logger.Info("Starting kaamgarau-worker")
	if err := run(cfg, logger.WithComponent(log.ComponentWorker)); err != nil {
		logger.Error("Worker failed", log.FieldError, err.Error())
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	if backendCfg.Type == backend.MemoryBackend {
		logger.Warn("Memory backend is process local, the worker only sees its own seed data")
	}
	backendCfg.RequireAMQP = cfg.AMQPURL != ""

	be, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := be.Cleanup(); err != nil {
			logger.Warn("Backend cleanup failed", log.FieldError, err.Error())
		}
	}()

	lw := worker.NewLevelWorker(be.Store,
		worker.WithLogger(logger),
		worker.WithMetrics(metrics.NewManager()),
	)

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, nil)

	if cfg.StartupCheck {
		logger.Info("Performing startup level check")
		if err := lw.StartupCheck(ctx); err != nil {
			logger.Error("Startup level check failed", log.FieldError, err.Error())
		}
	}

	g, gCtx := errgroup.WithContext(ctx)

	if be.Publisher != nil {
		g.Go(func() error {
			err := be.Publisher.ConsumeLevelRecalc(gCtx, lw.HandleRecalc)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		logger.Info("No AMQP URL configured, relying on periodic reconciliation")
	}

	if cfg.ReconcileInterval > 0 {
		g.Go(func() error {
			reconcile(gCtx, lw, cfg.ReconcileInterval, logger)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
	return nil
}

// reconcile snapshots users whose recalculation message never arrived.
func reconcile(ctx context.Context, lw *worker.LevelWorker, every time.Duration, logger *log.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := lw.StartupCheck(ctx); err != nil && ctx.Err() == nil {
				logger.Error("Periodic level reconciliation failed", log.FieldError, err.Error())
			}
		}
	}
}
