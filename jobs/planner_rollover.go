package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/usman-global/usman-books/internal/jobs"
	"github.com/usman-global/usman-books/internal/planner"
)

// RolloverJob starts new planner periods without waiting for an operator.
type RolloverJob struct {
	Planner *planner.Service
	State   Reloader
	Enabled bool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewRolloverJob wires dependencies for the rollover handler.
func NewRolloverJob(svc *planner.Service, state Reloader, enabled bool, logger *slog.Logger, metrics *jobmetrics.Metrics) *RolloverJob {
	return &RolloverJob{Planner: svc, State: state, Enabled: enabled, Logger: logger, Metrics: metrics}
}

// Handle processes planner:rollover tasks.
func (j *RolloverJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Planner == nil {
		return errors.New("planner rollover: handler not configured")
	}
	logger := loggerOr(j.Logger).With(slog.String("job", TaskPlannerRollover))
	if !j.Enabled {
		logger.Debug("auto rollover disabled")
		return nil
	}
	var payload RolloverPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	periods := []planner.Period{planner.Weekly, planner.Monthly}
	if len(payload.Periods) > 0 {
		periods = periods[:0]
		for _, p := range payload.Periods {
			periods = append(periods, planner.Period(p))
		}
	}

	tracker := j.Metrics.Track(TaskPlannerRollover)
	defer func() {
		err = tracker.End(err)
	}()

	if err := reload(ctx, j.State); err != nil {
		logger.Error("reload state", slog.Any("error", err))
		return err
	}
	for _, p := range periods {
		rolled, err := j.Planner.AutoRollover(ctx, p)
		if errors.Is(err, planner.ErrInvalidPeriod) {
			logger.Warn("skip unknown period", slog.String("period", string(p)))
			continue
		}
		if err != nil {
			logger.Error("auto rollover", slog.String("period", string(p)), slog.Any("error", err))
			return err
		}
		if rolled {
			logger.Info("planner period started", slog.String("period", string(p)))
		}
	}
	return nil
}
