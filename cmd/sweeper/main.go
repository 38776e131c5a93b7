package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ivankudzin/matchrank/internal/config"
	"github.com/ivankudzin/matchrank/internal/infra/logger"
	"github.com/ivankudzin/matchrank/internal/jobs/rollup"
	"github.com/ivankudzin/matchrank/internal/jobs/sweep"
	pgrepo "github.com/ivankudzin/matchrank/internal/repo/postgres"
)

func main() {
	cfgPath := os.Getenv("APP_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	heatingRepo := pgrepo.NewHeatingRepo(pool)
	engineMetricsRepo := pgrepo.NewEngineMetricsRepo(pool)

	sweepJob := sweep.New(heatingRepo, cfg.Engine.Heating.SweepRetention, log)
	rollupJob := rollup.New(engineMetricsRepo, log)

	log.Info("sweeper started",
		zap.Duration("sweep_interval", cfg.Jobs.SweepInterval),
		zap.Duration("rollup_interval", cfg.Jobs.RollupInterval),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runEvery(gctx, cfg.Jobs.SweepInterval, "heating_sweep", log, sweepJob.Run)
	})
	g.Go(func() error {
		return runEvery(gctx, cfg.Jobs.RollupInterval, "metrics_rollup", log, rollupJob.Run)
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		log.Fatal("sweeper failed", zap.Error(err))
	}
	log.Info("sweeper stopped")
}

// runEvery fires the job once at startup and then on every tick. Job errors
// are logged and the loop keeps going; only context cancellation ends it.
func runEvery(ctx context.Context, interval time.Duration, name string, log *zap.Logger, run func(context.Context) error) error {
	if interval <= 0 {
		interval = time.Hour
	}

	if err := run(ctx); err != nil {
		log.Error("job run failed", zap.String("job", name), zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := run(ctx); err != nil {
				log.Error("job run failed", zap.String("job", name), zap.Error(err))
			}
		}
	}
}
