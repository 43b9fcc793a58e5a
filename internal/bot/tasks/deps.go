// Package tasks implements the periodic maintenance jobs run by the scheduler.
package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/edgard/modbot/internal/config"
	"github.com/edgard/modbot/internal/moderation"
)

// KnownUserStore is the maintenance surface of the known-user directory.
type KnownUserStore interface {
	Prune(ctx context.Context, maxAge time.Duration) (int64, error)
	RunSQLMaintenance(ctx context.Context) error
}

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger  *slog.Logger
	Config  *config.Config
	Limiter *moderation.RateLimiter
	Users   KnownUserStore
}
