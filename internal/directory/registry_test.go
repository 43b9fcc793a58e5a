package directory_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/modbot/internal/database"
	"github.com/edgard/modbot/internal/directory"
	"github.com/edgard/modbot/internal/moderation"
)

type countingStore struct {
	database.Store
	upserts         int
	usernameLookups int
}

func (c *countingStore) UpsertUser(ctx context.Context, u *database.KnownUser) error {
	c.upserts++
	return c.Store.UpsertUser(ctx, u)
}

func (c *countingStore) GetUserByUsername(ctx context.Context, username string) (*database.KnownUser, error) {
	c.usernameLookups++
	return c.Store.GetUserByUsername(ctx, username)
}

func newRegistry(t *testing.T) (*directory.Registry, *countingStore, *clockwork.FakeClock) {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "dir.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	store := &countingStore{Store: database.NewStore(db, nil)}
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	return directory.New(store, nil, clock, 16, time.Hour), store, clock
}

func TestRegistryObserveAndResolve(t *testing.T) {
	t.Parallel()

	r, _, _ := newRegistry(t)
	ctx := context.Background()
	alice := moderation.UserRef{ID: 42, Username: "Alice", FirstName: "Alice"}

	require.NoError(t, r.Observe(ctx, alice))

	got, err := r.ByUsername(ctx, "@alice")
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	got, err = r.ByID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	_, err = r.ByUsername(ctx, "bob")
	assert.ErrorIs(t, err, moderation.ErrEntityNotFound)
	_, err = r.ByID(ctx, 7)
	assert.ErrorIs(t, err, moderation.ErrEntityNotFound)
	_, err = r.ByUsername(ctx, "")
	assert.ErrorIs(t, err, moderation.ErrEntityNotFound)
}

func TestRegistryThrottlesUnchangedWrites(t *testing.T) {
	t.Parallel()

	r, store, clock := newRegistry(t)
	ctx := context.Background()
	u := moderation.UserRef{ID: 1, Username: "u"}

	require.NoError(t, r.Observe(ctx, u))
	require.NoError(t, r.Observe(ctx, u))
	assert.Equal(t, 1, store.upserts)

	u.Username = "renamed"
	require.NoError(t, r.Observe(ctx, u))
	assert.Equal(t, 2, store.upserts, "profile change is written immediately")

	clock.Advance(11 * time.Minute)
	require.NoError(t, r.Observe(ctx, u))
	assert.Equal(t, 3, store.upserts, "last_seen is refreshed periodically")

	_, err := r.ByUsername(ctx, "u")
	assert.ErrorIs(t, err, moderation.ErrEntityNotFound, "old handle is forgotten")
}

func TestRegistryRenameKeepsHandleClaimedByOther(t *testing.T) {
	t.Parallel()

	r, store, _ := newRegistry(t)
	ctx := context.Background()
	alice := moderation.UserRef{ID: 1, Username: "shared"}
	bob := moderation.UserRef{ID: 2, Username: "shared"}

	require.NoError(t, r.Observe(ctx, alice))
	require.NoError(t, r.Observe(ctx, bob))

	alice.Username = "alice_new"
	require.NoError(t, r.Observe(ctx, alice))

	got, err := r.ByUsername(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, bob, got)
	assert.Zero(t, store.usernameLookups, "handle owned by another user stays cached")

	got, err = r.ByUsername(ctx, "alice_new")
	require.NoError(t, err)
	assert.Equal(t, alice, got)
}

func TestRegistryReadsThroughAfterRestart(t *testing.T) {
	t.Parallel()

	r, store, clock := newRegistry(t)
	ctx := context.Background()
	require.NoError(t, r.Observe(ctx, moderation.UserRef{ID: 5, Username: "eve", FirstName: "Eve"}))

	fresh := directory.New(store, nil, clock, 16, time.Hour)
	got, err := fresh.ByUsername(ctx, "EVE")
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.ID)

	rec, err := fresh.Record(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.FirstSeen.Equal(clock.Now()))
}

func TestRegistryPrune(t *testing.T) {
	t.Parallel()

	r, _, clock := newRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.Observe(ctx, moderation.UserRef{ID: 1, Username: "old"}))
	clock.Advance(200 * 24 * time.Hour)
	require.NoError(t, r.Observe(ctx, moderation.UserRef{ID: 2, Username: "new"}))

	removed, err := r.Prune(ctx, 180*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = r.ByUsername(ctx, "old")
	assert.ErrorIs(t, err, moderation.ErrEntityNotFound)
	_, err = r.ByUsername(ctx, "new")
	assert.NoError(t, err)

	assert.NoError(t, r.RunSQLMaintenance(ctx))
}
