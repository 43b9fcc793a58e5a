package tasks

import "context"

// newRateLimitSweepTask evicts idle rate limit entries.
func newRateLimitSweepTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "ratelimit_sweep")

	return func(ctx context.Context) error {
		evicted := deps.Limiter.Sweep()
		log.DebugContext(ctx, "Swept rate limit entries", "evicted", evicted, "remaining", deps.Limiter.Len())
		return nil
	}
}
