// Package directory remembers the users the bot has seen so that handles can
// be resolved to ids and profiles can be shown without a platform round trip.
package directory

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jonboulle/clockwork"

	"github.com/edgard/modbot/internal/database"
	"github.com/edgard/modbot/internal/moderation"
)

const (
	// DefaultCacheSize bounds the in-memory lookup caches.
	DefaultCacheSize = 4096
	// DefaultCacheTTL is how long a cached sighting is trusted.
	DefaultCacheTTL = 30 * time.Minute
	// touchInterval limits how often an unchanged user is written back.
	touchInterval = 10 * time.Minute
)

type cached struct {
	user    moderation.UserRef
	written time.Time
}

// Registry is the known-user directory: SQLite storage fronted by LRU caches.
type Registry struct {
	store   database.Store
	byID    *expirable.LRU[int64, cached]
	handles *expirable.LRU[string, int64]
	clock   clockwork.Clock
	logger  *slog.Logger
}

// New creates a registry. Zero size or ttl selects the defaults.
func New(store database.Store, logger *slog.Logger, clock clockwork.Clock, size int, ttl time.Duration) *Registry {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Registry{
		store:   store,
		byID:    expirable.NewLRU[int64, cached](size, nil, ttl),
		handles: expirable.NewLRU[string, int64](size, nil, ttl),
		clock:   clock,
		logger:  logger.With("component", "directory"),
	}
}

func handleKey(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}

// Observe records a sighting of user. Unchanged users seen again shortly
// after their last write are served from cache only.
func (r *Registry) Observe(ctx context.Context, user moderation.UserRef) error {
	if user.ID == 0 {
		return nil
	}
	now := r.clock.Now()

	if prev, ok := r.byID.Get(user.ID); ok && prev.user == user && now.Sub(prev.written) < touchInterval {
		return nil
	}

	err := r.store.UpsertUser(ctx, &database.KnownUser{
		UserID:    user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		IsBot:     user.IsBot,
		IsPremium: user.IsPremium,
		LastSeen:  now,
	})
	if err != nil {
		return fmt.Errorf("failed to record user %d: %w", user.ID, err)
	}

	if prev, ok := r.byID.Get(user.ID); ok && prev.user.Username != "" && !strings.EqualFold(prev.user.Username, user.Username) {
		// The old handle may already belong to someone else.
		key := handleKey(prev.user.Username)
		if id, ok := r.handles.Peek(key); ok && id == user.ID {
			r.handles.Remove(key)
		}
	}
	r.byID.Add(user.ID, cached{user: user, written: now})
	if user.Username != "" {
		r.handles.Add(handleKey(user.Username), user.ID)
	}
	return nil
}

// ByID returns the last known profile of id or moderation.ErrEntityNotFound.
func (r *Registry) ByID(ctx context.Context, id int64) (moderation.UserRef, error) {
	if c, ok := r.byID.Get(id); ok {
		return c.user, nil
	}
	known, err := r.store.GetUserByID(ctx, id)
	if err != nil {
		return moderation.UserRef{}, err
	}
	if known == nil {
		return moderation.UserRef{}, moderation.ErrEntityNotFound
	}
	user := toUserRef(known)
	r.byID.Add(id, cached{user: user, written: known.LastSeen})
	return user, nil
}

// ByUsername resolves a handle case-insensitively, with or without "@".
func (r *Registry) ByUsername(ctx context.Context, handle string) (moderation.UserRef, error) {
	key := handleKey(handle)
	if key == "" {
		return moderation.UserRef{}, moderation.ErrEntityNotFound
	}
	if id, ok := r.handles.Get(key); ok {
		if c, ok := r.byID.Get(id); ok {
			return c.user, nil
		}
	}

	known, err := r.store.GetUserByUsername(ctx, key)
	if err != nil {
		return moderation.UserRef{}, err
	}
	if known == nil {
		return moderation.UserRef{}, moderation.ErrEntityNotFound
	}
	user := toUserRef(known)
	r.byID.Add(user.ID, cached{user: user, written: known.LastSeen})
	r.handles.Add(key, user.ID)
	return user, nil
}

// Record returns the stored row for id, including sighting times, or nil.
func (r *Registry) Record(ctx context.Context, id int64) (*database.KnownUser, error) {
	return r.store.GetUserByID(ctx, id)
}

// Prune deletes users unseen for maxAge and clears the caches.
func (r *Registry) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	removed, err := r.store.PruneUsers(ctx, r.clock.Now().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		r.byID.Purge()
		r.handles.Purge()
	}
	r.logger.InfoContext(ctx, "Pruned known users", "removed", removed, "max_age", maxAge)
	return removed, nil
}

// RunSQLMaintenance compacts the backing database.
func (r *Registry) RunSQLMaintenance(ctx context.Context) error {
	return r.store.RunSQLMaintenance(ctx)
}

func toUserRef(k *database.KnownUser) moderation.UserRef {
	return moderation.UserRef{
		ID:        k.UserID,
		Username:  k.Username,
		FirstName: k.FirstName,
		LastName:  k.LastName,
		IsBot:     k.IsBot,
		IsPremium: k.IsPremium,
	}
}
