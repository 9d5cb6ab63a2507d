package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/iho/growbucks/internal/app"
	"github.com/iho/growbucks/internal/infrastructure/config"
	"github.com/iho/growbucks/internal/infrastructure/logger"
	"github.com/iho/growbucks/internal/infrastructure/metrics"
	"github.com/iho/growbucks/internal/infrastructure/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	baseLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}).
		With().Str("service", "worker").Logger()
	log.Logger = baseLogger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, baseLogger); err != nil {
		baseLogger.Error().Err(err).Msg("worker exited with error")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, baseLogger zerolog.Logger) error {
	application, err := app.New(ctx, cfg, baseLogger, metrics.New())
	if err != nil {
		return err
	}
	defer application.Close()

	relay, closeRelay, err := application.OutboxRelay()
	if err != nil {
		return err
	}
	defer closeRelay()

	sched := scheduler.New(baseLogger, cfg.Location(), cfg.AccrualJobTimeout)
	if err := registerJobs(sched, cfg, application, baseLogger); err != nil {
		return err
	}

	sched.Start()
	baseLogger.Info().
		Str("accrual_schedule", cfg.AccrualSchedule).
		Str("timezone", cfg.AccrualTimezone).
		Int("jobs", sched.Entries()).
		Msg("scheduler started")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := relay.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("outbox relay: %w", err)
		}
		return nil
	})

	err = g.Wait()

	baseLogger.Info().Msg("stopping scheduler")
	<-sched.Stop().Done()

	// Flush events written by the last jobs.
	drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if n, drainErr := relay.Drain(drainCtx); drainErr != nil {
		baseLogger.Warn().Err(drainErr).Msg("failed to drain outbox")
	} else if n > 0 {
		baseLogger.Info().Int("events", n).Msg("outbox drained")
	}

	baseLogger.Info().Msg("worker stopped")
	return err
}

func registerJobs(sched *scheduler.Scheduler, cfg *config.Config, application *app.App, baseLogger zerolog.Logger) error {
	if err := sched.Register("daily_accrual", cfg.AccrualSchedule, accrualJob(application.Accrual, baseLogger, time.Now)); err != nil {
		return err
	}

	if cfg.ReconcileSchedule != "" {
		if err := sched.Register("reconciliation", cfg.ReconcileSchedule, reconciliationJob(application.Reconciliation, baseLogger)); err != nil {
			return err
		}
	}

	return nil
}
