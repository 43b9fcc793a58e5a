package moderation_test

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/modbot/internal/moderation"
)

func newSuppressor(t *testing.T, window time.Duration) *moderation.DuplicateSuppressor {
	t.Helper()
	s, err := moderation.NewDuplicateSuppressor(nil, nil, window)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestDedupKeyString(t *testing.T) {
	t.Parallel()

	key := moderation.DedupKey{Kind: moderation.NotifyWelcome, UserID: 42, ChatID: -100}
	assert.Equal(t, "welcome_42_-100", key.String())
}

func TestDuplicateSuppressorSuppressesRepeats(t *testing.T) {
	t.Parallel()

	s := newSuppressor(t, time.Minute)

	assert.True(t, s.ShouldNotify(moderation.NotifyWelcome, 1, testChatID))
	assert.False(t, s.ShouldNotify(moderation.NotifyWelcome, 1, testChatID))
	assert.True(t, s.Pending(moderation.NotifyWelcome, 1, testChatID))

	tests := []struct {
		name   string
		kind   moderation.NotificationKind
		userID int64
		chatID int64
	}{
		{name: "other kind", kind: moderation.NotifyGoodbye, userID: 1, chatID: testChatID},
		{name: "other user", kind: moderation.NotifyWelcome, userID: 2, chatID: testChatID},
		{name: "other chat", kind: moderation.NotifyWelcome, userID: 1, chatID: testChatID - 1},
	}
	for _, tt := range tests {
		assert.True(t, s.ShouldNotify(tt.kind, tt.userID, tt.chatID), tt.name)
	}
}

func TestDuplicateSuppressorExpires(t *testing.T) {
	t.Parallel()

	window := 150 * time.Millisecond
	s := newSuppressor(t, window)

	require.True(t, s.ShouldNotify(moderation.NotifyGoodbye, 5, testChatID))
	require.False(t, s.ShouldNotify(moderation.NotifyGoodbye, 5, testChatID))

	assert.Eventually(t, func() bool {
		return !s.Pending(moderation.NotifyGoodbye, 5, testChatID)
	}, 3*time.Second, 20*time.Millisecond)

	assert.True(t, s.ShouldNotify(moderation.NotifyGoodbye, 5, testChatID), "key is usable again after the window")
}

func TestDuplicateSuppressorCloseCancelsExpiry(t *testing.T) {
	t.Parallel()

	s, err := moderation.NewDuplicateSuppressor(nil, nil, 100*time.Millisecond)
	require.NoError(t, err)

	require.True(t, s.ShouldNotify(moderation.NotifyWelcome, 9, testChatID))
	require.NoError(t, s.Close())

	time.Sleep(300 * time.Millisecond)
	assert.True(t, s.Pending(moderation.NotifyWelcome, 9, testChatID))
}

func TestDuplicateSuppressorReleasesExpiryJobs(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	s, err := moderation.NewDuplicateSuppressor(nil, clock, moderation.DedupWindow)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	const users = 200
	for id := int64(1); id <= users; id++ {
		require.True(t, s.ShouldNotify(moderation.NotifyWelcome, id, testChatID))
	}
	require.Equal(t, users, s.ScheduledExpiries())

	assert.Eventually(t, func() bool {
		clock.Advance(moderation.DedupWindow + time.Second)
		return s.ScheduledExpiries() == 0
	}, 5*time.Second, 20*time.Millisecond)

	for id := int64(1); id <= users; id++ {
		assert.False(t, s.Pending(moderation.NotifyWelcome, id, testChatID), "user %d", id)
	}
}
