package moderation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/modbot/internal/moderation"
)

var testChat = moderation.ChatRef{ID: testChatID, Title: "Gophers"}

func newNotifier(t *testing.T, window, delay time.Duration) (*moderation.MembershipNotifier, *fakeGreeter) {
	t.Helper()
	g := &fakeGreeter{}
	n := moderation.NewMembershipNotifier(nil, newSuppressor(t, window), g, testBotID, delay)
	return n, g
}

func TestMembershipKindNotification(t *testing.T) {
	t.Parallel()

	assert.Equal(t, moderation.NotifyWelcome, moderation.MemberJoined.Notification())
	assert.Equal(t, moderation.NotifyWelcome, moderation.MemberAdded.Notification())
	assert.Equal(t, moderation.NotifyGoodbye, moderation.MemberLeft.Notification())
	assert.Equal(t, moderation.NotifyGoodbye, moderation.MemberKicked.Notification())
}

func TestMembershipNotifierDeduplicates(t *testing.T) {
	t.Parallel()

	n, g := newNotifier(t, 200*time.Millisecond, 0)
	ctx := context.Background()
	ev := moderation.MembershipEvent{Chat: testChat, Kind: moderation.MemberJoined, Users: []moderation.UserRef{alice}}

	assert.Equal(t, 1, n.Handle(ctx, ev))
	assert.Equal(t, 0, n.Handle(ctx, ev), "repeat inside the window is dropped")
	assert.Equal(t, 1, g.count())

	// A goodbye is a different key and goes through.
	left := moderation.MembershipEvent{Chat: testChat, Kind: moderation.MemberLeft, Users: []moderation.UserRef{alice}}
	assert.Equal(t, 1, n.Handle(ctx, left))

	assert.Eventually(t, func() bool {
		return n.Handle(ctx, ev) == 1
	}, 3*time.Second, 25*time.Millisecond, "welcome is sent again once the window passed")
	assert.Equal(t, 3, g.count())
}

func TestMembershipNotifierBatch(t *testing.T) {
	t.Parallel()

	delay := 50 * time.Millisecond
	n, g := newNotifier(t, time.Minute, delay)

	ev := moderation.MembershipEvent{
		Chat:  testChat,
		Kind:  moderation.MemberAdded,
		Users: []moderation.UserRef{alice, bob, carol, {ID: testBotID, IsBot: true}},
	}

	start := time.Now()
	delivered := n.Handle(context.Background(), ev)
	elapsed := time.Since(start)

	assert.Equal(t, 3, delivered, "the bot itself is never greeted")
	require.Len(t, g.sent, 3)
	for i, u := range []moderation.UserRef{alice, bob, carol} {
		assert.Equal(t, u.ID, g.sent[i].userID, "batch order is preserved")
		assert.Equal(t, moderation.NotifyWelcome, g.sent[i].kind)
	}
	assert.GreaterOrEqual(t, elapsed, 2*delay-10*time.Millisecond, "deliveries are spaced")
}

func TestMembershipNotifierContinuesAfterFailure(t *testing.T) {
	t.Parallel()

	n, g := newNotifier(t, time.Minute, 0)
	g.err = errBackend

	ev := moderation.MembershipEvent{Chat: testChat, Kind: moderation.MemberKicked, Users: []moderation.UserRef{alice, bob}}
	assert.Equal(t, 0, n.Handle(context.Background(), ev))
	assert.Empty(t, g.sent)
}

func TestMembershipNotifierStopsOnCancel(t *testing.T) {
	t.Parallel()

	n, g := newNotifier(t, time.Minute, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	ev := moderation.MembershipEvent{Chat: testChat, Kind: moderation.MemberJoined, Users: []moderation.UserRef{alice, bob}}
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	assert.Equal(t, 1, n.Handle(ctx, ev), "first delivery uses the burst, the second waits and is cancelled")
	assert.Equal(t, 1, g.count())
}
