package tasks

import (
	"context"
	"fmt"
)

// newDirectoryPruneTask forgets known users not seen within the retention period.
func newDirectoryPruneTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "directory_prune")
	retention := deps.Config.Moderation.KnownUserRetention

	return func(ctx context.Context) error {
		if retention <= 0 {
			log.DebugContext(ctx, "Known user retention disabled, nothing to prune")
			return nil
		}
		removed, err := deps.Users.Prune(ctx, retention)
		if err != nil {
			return fmt.Errorf("prune known users: %w", err)
		}
		log.InfoContext(ctx, "Pruned known users", "removed", removed, "retention", retention)
		return nil
	}
}
