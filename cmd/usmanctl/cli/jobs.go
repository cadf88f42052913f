package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/usman-global/usman-books/jobs"
)

func newJobsCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Queue background jobs on the worker",
	}
	cmd.PersistentFlags().StringVar(&e.redis, "redis", os.Getenv("REDIS_ADDR"), "Redis address of the job queue")

	var rate float64
	var assetIDs []string
	depreciate := &cobra.Command{
		Use:   "depreciate",
		Short: "Queue a depreciation run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.enqueue(cmd, func(c *jobs.Client) (*asynq.TaskInfo, error) {
				return c.EnqueueDepreciation(cmd.Context(), jobs.DepreciationPayload{Rate: rate, AssetIDs: assetIDs})
			})
		},
	}
	depreciate.Flags().Float64Var(&rate, "rate", 0, "Percentage of purchase value (default: worker DEPRECIATION_RATE)")
	depreciate.Flags().StringSliceVar(&assetIDs, "asset", nil, "Limit the run to these asset ids")

	var periods []string
	rollover := &cobra.Command{
		Use:   "rollover",
		Short: "Queue a planner rollover check",
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.enqueue(cmd, func(c *jobs.Client) (*asynq.TaskInfo, error) {
				return c.EnqueueRollover(cmd.Context(), jobs.RolloverPayload{Periods: periods})
			})
		},
	}
	rollover.Flags().StringSliceVar(&periods, "period", nil, "weekly, monthly (default: both)")

	integrity := &cobra.Command{
		Use:   "integrity",
		Short: "Queue a ledger integrity scan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.enqueue(cmd, func(c *jobs.Client) (*asynq.TaskInfo, error) {
				return c.EnqueueIntegrity(cmd.Context())
			})
		},
	}

	cmd.AddCommand(depreciate, rollover, integrity)
	return cmd
}

func (e *env) enqueue(cmd *cobra.Command, fn func(*jobs.Client) (*asynq.TaskInfo, error)) error {
	if e.redis == "" {
		return errors.New("jobs: --redis or REDIS_ADDR is required")
	}
	client := jobs.NewClient(asynq.RedisClientOpt{Addr: e.redis})
	defer func() { _ = client.Close() }()
	info, err := fn(client)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "queued %s as %s on %s\n", info.Type, info.ID, info.Queue)
	return err
}
