package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/usman-global/usman-books/internal/assets"
	jobmetrics "github.com/usman-global/usman-books/internal/jobs"
)

// Reloader refreshes in-process state from the persisted copy.
type Reloader interface {
	Reload(ctx context.Context) (bool, error)
}

// DepreciationJob posts the scheduled depreciation run.
type DepreciationJob struct {
	Assets  *assets.Service
	State   Reloader
	Rate    float64
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewDepreciationJob wires dependencies for the depreciation handler.
func NewDepreciationJob(svc *assets.Service, state Reloader, rate float64, logger *slog.Logger, metrics *jobmetrics.Metrics) *DepreciationJob {
	return &DepreciationJob{Assets: svc, State: state, Rate: rate, Logger: logger, Metrics: metrics}
}

// Handle processes assets:depreciate tasks.
func (j *DepreciationJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Assets == nil {
		return errors.New("depreciation: handler not configured")
	}
	var payload DepreciationPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	rate := payload.Rate
	if rate == 0 {
		rate = j.Rate
	}

	tracker := j.Metrics.Track(TaskAssetsDepreciate)
	defer func() {
		err = tracker.End(err)
	}()

	logger := loggerOr(j.Logger).With(slog.String("job", TaskAssetsDepreciate), slog.Float64("rate", rate))
	if err := reload(ctx, j.State); err != nil {
		logger.Error("reload state", slog.Any("error", err))
		return err
	}
	result, err := j.Assets.PostDepreciation(ctx, assets.DepreciationInput{Rate: rate, AssetIDs: payload.AssetIDs, ActorID: "system"})
	switch {
	case errors.Is(err, assets.ErrNothingToDepreciate):
		logger.Info("no assets left to depreciate")
		return nil
	case errors.Is(err, assets.ErrInvalidRate):
		logger.Error("invalid depreciation rate")
		return asynq.SkipRetry
	case err != nil:
		logger.Error("post depreciation", slog.Any("error", err))
		return err
	}
	logger.Info("depreciation posted",
		slog.String("voucher_id", result.VoucherID),
		slog.Int("assets", len(result.Entries)),
		slog.Float64("total", result.Total),
	)
	return nil
}

func reload(ctx context.Context, state Reloader) error {
	if state == nil {
		return nil
	}
	_, err := state.Reload(ctx)
	return err
}

func loggerOr(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
