package handlers

import (
	"context"
	"log/slog"

	"github.com/edgard/modbot/internal/config"
	"github.com/edgard/modbot/internal/database"
	"github.com/edgard/modbot/internal/moderation"
)

// KnownUsers records users seen by the bot and returns what is stored about them.
type KnownUsers interface {
	Observe(ctx context.Context, user moderation.UserRef) error
	// Record returns nil without error for users never observed.
	Record(ctx context.Context, id int64) (*database.KnownUser, error)
}

// UserCounter reports how many users are known.
type UserCounter interface {
	CountUsers(ctx context.Context) (int64, error)
}

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger    *slog.Logger
	Config    *config.Config
	Engine    *moderation.Engine
	Limiter   *moderation.RateLimiter
	Guard     *moderation.PermissionGuard
	Resolver  *moderation.TargetResolver
	Audit     *moderation.AuditLog
	Notifier  *moderation.MembershipNotifier
	Directory moderation.Directory
	Greeter   moderation.Greeter
	// Users and Counter may be nil when no known-user store is configured.
	Users   KnownUsers
	Counter UserCounter
}
