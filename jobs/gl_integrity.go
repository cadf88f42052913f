package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/usman-global/usman-books/internal/accounting"
	jobmetrics "github.com/usman-global/usman-books/internal/jobs"
	"github.com/usman-global/usman-books/internal/store"
)

// Snapshots provides the committed state.
type Snapshots interface {
	Reloader
	Snapshot() *store.State
}

// IntegrityJob checks that every voucher's legs still net to zero.
type IntegrityJob struct {
	State   Snapshots
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewIntegrityJob wires dependencies for the integrity scan.
func NewIntegrityJob(state Snapshots, logger *slog.Logger, metrics *jobmetrics.Metrics) *IntegrityJob {
	return &IntegrityJob{State: state, Logger: logger, Metrics: metrics}
}

// Handle processes gl:integrity tasks.
func (j *IntegrityJob) Handle(ctx context.Context, _ *asynq.Task) error {
	_, err := j.Run(ctx)
	return err
}

// Run scans the journal and returns the unbalanced vouchers. Findings are
// logged and exported as a gauge; they do not fail the job.
func (j *IntegrityJob) Run(ctx context.Context) (imbalances []accounting.Imbalance, err error) {
	if j == nil || j.State == nil {
		return nil, errors.New("gl integrity: handler not configured")
	}
	tracker := j.Metrics.Track(TaskGLIntegrity)
	defer func() {
		err = tracker.End(err)
	}()

	logger := loggerOr(j.Logger).With(slog.String("job", TaskGLIntegrity))
	if err := reload(ctx, j.State); err != nil {
		logger.Error("reload state", slog.Any("error", err))
		return nil, err
	}
	st := j.State.Snapshot()
	imbalances = accounting.CheckVoucherBalances(st.JournalEntries)
	j.Metrics.SetImbalances(len(imbalances))
	for _, im := range imbalances {
		logger.Warn("unbalanced voucher",
			slog.String("voucher_id", im.VoucherID),
			slog.Float64("debit", im.Debit),
			slog.Float64("credit", im.Credit),
		)
	}
	logger.Info("ledger integrity checked",
		slog.Int64("state_version", st.Version),
		slog.Int("entries", len(st.JournalEntries)),
		slog.Int("unbalanced", len(imbalances)),
	)
	return imbalances, nil
}
