package moderation

import (
	"context"
	"io"
	"log/slog"
)

// PermissionGuard classifies participant roles. Every predicate fails closed:
// a lookup error yields false and is logged, never returned.
type PermissionGuard struct {
	dir    Directory
	botID  int64
	logger *slog.Logger
}

// NewPermissionGuard creates a guard that uses botID for bot self-checks.
func NewPermissionGuard(dir Directory, botID int64, logger *slog.Logger) *PermissionGuard {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &PermissionGuard{
		dir:    dir,
		botID:  botID,
		logger: logger.With("component", "permission_guard"),
	}
}

// BotID returns the identity used for bot checks.
func (g *PermissionGuard) BotID() int64 {
	return g.botID
}

func (g *PermissionGuard) role(ctx context.Context, chatID, userID int64, check string) (Role, bool) {
	role, err := g.dir.ParticipantRole(ctx, chatID, userID)
	if err != nil {
		g.logger.ErrorContext(ctx, "Participant role lookup failed, denying",
			"check", check, "chat_id", chatID, "user_id", userID, "error", err)
		permissionLookupFailures.WithLabelValues(check).Inc()
		return RoleNotFound, false
	}
	return role, true
}

// IsAdminOrCreator reports whether userID administers chatID.
func (g *PermissionGuard) IsAdminOrCreator(ctx context.Context, chatID, userID int64) bool {
	role, ok := g.role(ctx, chatID, userID, "admin_or_creator")
	return ok && role.IsAdminOrCreator()
}

// IsCreator reports whether userID owns chatID.
func (g *PermissionGuard) IsCreator(ctx context.Context, chatID, userID int64) bool {
	role, ok := g.role(ctx, chatID, userID, "creator")
	return ok && role == RoleCreator
}

// BotIsAdminOrCreator reports whether the bot itself administers chatID.
func (g *PermissionGuard) BotIsAdminOrCreator(ctx context.Context, chatID int64) bool {
	role, ok := g.role(ctx, chatID, g.botID, "bot_admin")
	return ok && role.IsAdminOrCreator()
}
