package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAssetsDepreciate posts a depreciation run over active assets.
	TaskAssetsDepreciate = "assets:depreciate"
	// TaskPlannerRollover starts a new planner period when one is pending.
	TaskPlannerRollover = "planner:rollover"
	// TaskGLIntegrity scans the journal for unbalanced vouchers.
	TaskGLIntegrity = "gl:integrity"
)

// DepreciationPayload configures a depreciation run.
type DepreciationPayload struct {
	// Rate is a percentage of purchase value. Zero uses the job default.
	Rate     float64  `json:"rate,omitempty"`
	AssetIDs []string `json:"assetIds,omitempty"`
}

// RolloverPayload selects the planner periods to roll over.
type RolloverPayload struct {
	Periods []string `json:"periods,omitempty"`
}

// NewDepreciationTask constructs an assets:depreciate task.
func NewDepreciationTask(payload DepreciationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAssetsDepreciate, data), nil
}

// NewRolloverTask constructs a planner:rollover task.
func NewRolloverTask(payload RolloverPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPlannerRollover, data), nil
}

// NewIntegrityTask constructs a gl:integrity task.
func NewIntegrityTask() *asynq.Task {
	return asynq.NewTask(TaskGLIntegrity, nil)
}
