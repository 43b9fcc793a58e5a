package tasks

import (
	"context"

	"github.com/edgard/modbot/internal/config"
)

// ScheduledTaskFunc defines the standard signature for all scheduled tasks.
// The context provided by the scheduler should be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks returns every task keyed by the name used in the
// scheduler configuration. Tasks whose dependencies are missing are left out.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := make(map[string]ScheduledTaskFunc)

	if deps.Limiter != nil {
		tasks[config.TaskRateLimitSweep] = newRateLimitSweepTask(deps)
	}
	if deps.Users != nil {
		tasks[config.TaskDirectoryPrune] = newDirectoryPruneTask(deps)
		tasks[config.TaskSQLMaintenance] = newSQLMaintenanceTask(deps)
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
