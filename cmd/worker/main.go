package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/usman-global/usman-books/internal/app"
	jobmetrics "github.com/usman-global/usman-books/internal/jobs"
	"github.com/usman-global/usman-books/jobs"
)

// integrityCron runs the ledger scan nightly.
const integrityCron = "30 2 * * *"

// rolloverCron checks for finished planner periods shortly after midnight.
const rolloverCron = "5 0 * * *"

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if !cfg.Persistent() || cfg.RedisAddr == "" {
		logger.Error("worker requires REDIS_ADDR and PG_DSN or SQLITE_PATH")
		os.Exit(1)
	}

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("init application", slog.Any("error", err))
		os.Exit(1)
	}
	defer container.Close()

	metrics := jobmetrics.NewMetrics(container.Metrics.Registerer())
	depreciationJob := jobs.NewDepreciationJob(container.Assets, container.Store, cfg.DepreciationRate, logger, metrics)
	rolloverJob := jobs.NewRolloverJob(container.Planner, container.Store, cfg.PlannerAutoRollover, logger, metrics)
	integrityJob := jobs.NewIntegrityJob(container.Store, logger, metrics)

	depreciationTask, err := jobs.NewDepreciationTask(jobs.DepreciationPayload{})
	if err != nil {
		logger.Error("build depreciation task", slog.Any("error", err))
		os.Exit(1)
	}
	rolloverTask, err := jobs.NewRolloverTask(jobs.RolloverPayload{})
	if err != nil {
		logger.Error("build rollover task", slog.Any("error", err))
		os.Exit(1)
	}

	cron := []jobs.CronRegistration{
		{Spec: integrityCron, Task: jobs.NewIntegrityTask(), Options: []asynq.Option{asynq.MaxRetry(1)}},
	}
	if cfg.DepreciationCron != "" {
		cron = append(cron, jobs.CronRegistration{Spec: cfg.DepreciationCron, Task: depreciationTask, Options: []asynq.Option{asynq.MaxRetry(3)}})
	}
	if cfg.PlannerAutoRollover {
		cron = append(cron, jobs.CronRegistration{Spec: rolloverCron, Task: rolloverTask, Options: []asynq.Option{asynq.MaxRetry(3)}})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskAssetsDepreciate, Handler: depreciationJob.Handle},
			{Type: jobs.TaskPlannerRollover, Handler: rolloverJob.Handle},
			{Type: jobs.TaskGLIntegrity, Handler: integrityJob.Handle},
		},
		Cron: cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.Int("cron_entries", len(cron)))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
