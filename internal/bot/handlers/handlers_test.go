package handlers_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/modbot/internal/bot/handlers"
	"github.com/edgard/modbot/internal/config"
	"github.com/edgard/modbot/internal/moderation"
	"github.com/edgard/modbot/internal/telegram"
	"github.com/edgard/modbot/internal/telegram/telegramtest"
)

const (
	chatID  int64 = -100555
	botID   int64 = 999
	adminID int64 = 10
	ownerID int64 = 11
	aliceID int64 = 20
	bobID   int64 = 21
)

var statuses = map[int64]string{
	botID:   "administrator",
	adminID: "administrator",
	ownerID: "creator",
	aliceID: "member",
	bobID:   "member",
}

type fixture struct {
	srv    *telegramtest.Server
	tg     *bot.Bot
	clock  *clockwork.FakeClock
	audit  *moderation.AuditLog
	cfg    *config.Config
	nextID int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	srv := telegramtest.NewServer(t)
	srv.Handle("getChatMember", func(p map[string]string) (any, *telegramtest.APIError) {
		id, _ := strconv.ParseInt(p["user_id"], 10, 64)
		status, ok := statuses[id]
		if !ok {
			return nil, telegramtest.BadRequest("user not found")
		}
		return telegramtest.Member(status, id), nil
	})
	srv.Handle("getChat", func(p map[string]string) (any, *telegramtest.APIError) {
		switch p["chat_id"] {
		case "@alice", strconv.FormatInt(aliceID, 10):
			return telegramtest.PrivateChat(aliceID, "alice", "Alice"), nil
		case "@boss", strconv.FormatInt(ownerID, 10):
			return telegramtest.PrivateChat(ownerID, "boss", "Boss"), nil
		case "@news":
			return telegramtest.PublicChat(-100900, "channel", "News"), nil
		default:
			return nil, telegramtest.BadRequest("chat not found")
		}
	})

	b := srv.NewBot(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := clockwork.NewFakeClock()

	cfg := &config.Config{Messages: config.DefaultMessages}
	cfg.Moderation.RecentLogs = 5
	cfg.Moderation.Timezone = "UTC"
	cfg.Telegram.BotInfo = &models.User{ID: botID, IsBot: true, Username: "modbot"}

	dir := telegram.NewDirectory(b, nil, logger)
	limiter := moderation.NewRateLimiter(clock, moderation.CommandCooldown)
	guard := moderation.NewPermissionGuard(dir, botID, logger)
	resolver := moderation.NewTargetResolver(dir, logger)
	audit := moderation.NewAuditLog(logger, clock, 50)
	greeter := telegram.NewGreeter(b)

	suppressor, err := moderation.NewDuplicateSuppressor(logger, clock, moderation.DedupWindow)
	require.NoError(t, err)
	t.Cleanup(func() { _ = suppressor.Close() })

	deps := handlers.HandlerDeps{
		Logger: logger,
		Config: cfg,
		Engine: moderation.NewEngine(moderation.EngineDeps{
			Logger:   logger,
			Limiter:  limiter,
			Guard:    guard,
			Resolver: resolver,
			Executor: telegram.NewExecutor(b, logger),
			Audit:    audit,
		}),
		Limiter:   limiter,
		Guard:     guard,
		Resolver:  resolver,
		Audit:     audit,
		Notifier:  moderation.NewMembershipNotifier(logger, suppressor, greeter, botID, 0),
		Directory: dir,
		Greeter:   greeter,
	}
	require.NoError(t, telegram.RegisterHandlers(b, logger, handlers.RegisterAllCommands(deps)))

	return &fixture{srv: srv, tg: b, clock: clock, audit: audit, cfg: cfg, nextID: 1}
}

func user(id int64, username, first string) *models.User {
	return &models.User{ID: id, Username: username, FirstName: first}
}

// send dispatches a message from sender and returns it.
func (f *fixture) send(from *models.User, text string, replyTo *models.Message) *models.Message {
	f.nextID++
	msg := &models.Message{
		ID:             f.nextID,
		From:           from,
		Chat:           models.Chat{ID: chatID, Type: "supergroup", Title: "Gophers"},
		Text:           text,
		ReplyToMessage: replyTo,
	}
	f.tg.ProcessUpdate(context.Background(), &models.Update{ID: int64(f.nextID), Message: msg})
	return msg
}

func (f *fixture) lastText(t *testing.T) string {
	t.Helper()
	texts := f.srv.Texts()
	require.NotEmpty(t, texts, "expected a reply")
	return texts[len(texts)-1]
}

var (
	admin = user(adminID, "admin", "Ada")
	owner = user(ownerID, "boss", "Boss")
	alice = user(aliceID, "alice", "Alice")
	bob   = user(bobID, "bob", "Bob")
)

func TestBanByReply(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	target := &models.Message{ID: 1, From: alice, Chat: models.Chat{ID: chatID}}
	f.send(admin, "/ban", target)

	bans := f.srv.Calls("banChatMember")
	require.Len(t, bans, 1)
	assert.Equal(t, aliceID, bans[0].Int64("user_id"))
	assert.Equal(t, chatID, bans[0].Int64("chat_id"))
	assert.Equal(t, "✅ @alice has been banned.", f.lastText(t))

	entries := f.audit.Recent(5)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Success)
	assert.Equal(t, moderation.ActionBan, entries[0].Action)
}

func TestModerationDenials(t *testing.T) {
	t.Parallel()

	msgs := config.DefaultMessages
	tests := []struct {
		name   string
		issuer *models.User
		text   string
		want   string
	}{
		{name: "non admin", issuer: bob, text: "/ban @alice", want: msgs.NotAdmin},
		{name: "creator is protected", issuer: admin, text: "/mute @boss", want: msgs.CannotModerateCreator},
		{name: "unknown handle", issuer: admin, text: "/kick @ghost", want: "❌ User not found: ghost"},
		{name: "channel target", issuer: admin, text: "/ban @news", want: msgs.NotAUser},
		{name: "no target", issuer: admin, text: "/unmute", want: msgs.NoTarget},
		{name: "goodbye usage", issuer: admin, text: "/goodbye", want: msgs.GoodbyeUsage},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)

			f.send(tt.issuer, tt.text, nil)

			assert.Equal(t, tt.want, f.lastText(t))
			assert.Empty(t, f.srv.Calls("banChatMember"))
			assert.Empty(t, f.srv.Calls("restrictChatMember"))
			assert.Equal(t, 1, f.audit.Len(), "every attempt is audited")
		})
	}
}

func TestNonAdminDeniedBeforeTargetLookup(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.send(bob, "/ban @alice", nil)

	assert.Equal(t, config.DefaultMessages.NotAdmin, f.lastText(t))
	assert.Empty(t, f.srv.Calls("getChat"))
}

func TestRateLimitedSecondCommand(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.send(admin, "/mute @alice", nil)
	assert.Equal(t, "✅ @alice has been muted.", f.lastText(t))

	f.send(admin, "/unmute @alice", nil)
	assert.Equal(t, config.DefaultMessages.RateLimited, f.lastText(t))

	f.clock.Advance(moderation.CommandCooldown)
	f.send(admin, "/unmute @alice", nil)
	assert.Equal(t, "✅ @alice has been unmuted.", f.lastText(t))
}

func TestExecutorFailureReply(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.srv.Handle("banChatMember", func(map[string]string) (any, *telegramtest.APIError) {
		return nil, telegramtest.BadRequest("not enough rights to restrict/unrestrict chat member")
	})

	f.send(admin, "/ban @alice", nil)

	assert.Equal(t, config.DefaultMessages.PermissionRevoked, f.lastText(t))
	entries := f.audit.Recent(1)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Success)
	assert.Equal(t, moderation.FailurePermissionRevoked.String(), entries[0].Detail)
}

func TestBotUsernameSuffix(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.send(admin, "/kick@otherbot @alice", nil)
	assert.Empty(t, f.srv.Texts(), "commands for other bots are ignored")

	f.send(admin, "/kick@modbot @alice", nil)
	assert.Equal(t, "✅ @alice has been kicked.", f.lastText(t))
	assert.Len(t, f.srv.Calls("banChatMember"), 1)
	assert.Len(t, f.srv.Calls("unbanChatMember"), 1)
}

func TestGoodbyeRemovesParticipant(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.send(admin, "/goodbye @alice", nil)

	assert.Equal(t, "✅ Successfully removed @alice from the group.", f.lastText(t))
	require.Len(t, f.srv.Calls("banChatMember"), 1)
	require.Len(t, f.srv.Calls("unbanChatMember"), 1)
}

func TestLogs(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.send(bob, "/logs", nil)
	assert.Equal(t, config.DefaultMessages.LogsNotAdmin, f.lastText(t))

	f.send(admin, "/logs", nil)
	assert.Equal(t, "📋 No moderation actions logged yet.", f.lastText(t))

	f.clock.Advance(moderation.CommandCooldown)
	f.send(admin, "/ban @alice", nil)
	f.clock.Advance(moderation.CommandCooldown)
	f.send(admin, "/logs", nil)

	text := f.lastText(t)
	assert.Contains(t, text, "@admin ban @alice")
	calls := f.srv.Calls("sendMessage")
	assert.Equal(t, string(models.ParseModeHTML), calls[len(calls)-1].Params["parse_mode"])
}

func TestManualWelcome(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.send(alice, "/welcome @alice", nil)
	assert.Equal(t, config.DefaultMessages.NotAdmin, f.lastText(t))

	f.clock.Advance(moderation.CommandCooldown)
	f.send(admin, "/welcome", nil)
	assert.Equal(t, config.DefaultMessages.WelcomeUsage, f.lastText(t))

	f.clock.Advance(moderation.CommandCooldown)
	target := &models.Message{ID: 77, From: alice, Chat: models.Chat{ID: chatID}}
	f.send(admin, "/welcome", target)

	calls := f.srv.Calls("sendMessage")
	last := calls[len(calls)-1]
	assert.Contains(t, last.Params["text"], "tg://user?id=20")
	assert.Contains(t, last.Params["text"], "Gophers")
	assert.Contains(t, last.Params["reply_parameters"], `"message_id":77`)
}

func TestMembershipNotifications(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	join := func() {
		f.nextID++
		f.tg.ProcessUpdate(context.Background(), &models.Update{
			ID: int64(f.nextID),
			Message: &models.Message{
				ID:             f.nextID,
				From:           alice,
				Chat:           models.Chat{ID: chatID, Title: "Gophers"},
				NewChatMembers: []models.User{*alice},
			},
		})
	}

	join()
	join()
	require.Len(t, f.srv.Texts(), 1, "duplicate join is suppressed")
	assert.Contains(t, f.srv.Texts()[0], "Welcome to")

	f.nextID++
	f.tg.ProcessUpdate(context.Background(), &models.Update{
		ID: int64(f.nextID),
		Message: &models.Message{
			ID:             f.nextID,
			From:           admin,
			Chat:           models.Chat{ID: chatID, Title: "Gophers"},
			LeftChatMember: bob,
		},
	})
	require.Len(t, f.srv.Texts(), 2)
	assert.True(t, strings.HasPrefix(f.lastText(t), "Goodbye, "))
}

func TestUserInfoDefaultsToIssuer(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.send(bob, "/uinfo", nil)

	text := f.lastText(t)
	assert.Contains(t, text, "<code>21</code>")
	assert.Contains(t, text, "@bob")
	assert.Contains(t, text, "member")
	assert.Contains(t, text, "never")
}

func TestStatusAndHelp(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.send(bob, "/status", nil)
	text := f.lastText(t)
	assert.Contains(t, text, "<code>999</code>")
	assert.Contains(t, text, "@modbot")
	assert.Contains(t, text, "Bot ready to moderate!")

	f.send(bob, "/help", nil)
	assert.Contains(t, f.lastText(t), "/ban@modbot")
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		name string
		ok   bool
	}{
		{"/ban", "ban", true},
		{"/ban @alice", "ban", true},
		{"/ban@modbot @alice", "ban", true},
		{"/ban@ModBot", "ban", true},
		{"/ban@other", "", false},
		{"ban", "", false},
		{"/", "", false},
		{"/@modbot", "", false},
		{"hello /ban", "", false},
	}
	for _, tt := range tests {
		name, ok := handlers.ParseCommand(tt.text, "modbot")
		assert.Equal(t, tt.ok, ok, tt.text)
		assert.Equal(t, tt.name, name, tt.text)
	}

	match := handlers.CommandMatch("ban", "modbot")
	assert.True(t, match(&models.Update{Message: &models.Message{Text: "/ban"}}))
	assert.False(t, match(&models.Update{Message: &models.Message{Text: "/Ban"}}), "names are case-sensitive")
	assert.False(t, match(&models.Update{Message: &models.Message{Text: "/banana"}}))
	assert.False(t, match(&models.Update{}))
}

func TestMembershipEvents(t *testing.T) {
	t.Parallel()

	msg := &models.Message{
		From:           admin,
		Chat:           models.Chat{ID: chatID, Title: "Gophers"},
		NewChatMembers: []models.User{*alice, *bob, *admin},
	}
	events := handlers.MembershipEvents(msg)
	require.Len(t, events, 2)
	assert.Equal(t, moderation.MemberAdded, events[0].Kind)
	require.Len(t, events[0].Users, 2)
	assert.Equal(t, aliceID, events[0].Users[0].ID)
	assert.Equal(t, bobID, events[0].Users[1].ID)
	assert.Equal(t, moderation.MemberJoined, events[1].Kind)
	assert.Equal(t, "Gophers", events[1].Chat.Title)

	left := handlers.MembershipEvents(&models.Message{From: bob, LeftChatMember: bob})
	require.Len(t, left, 1)
	assert.Equal(t, moderation.MemberLeft, left[0].Kind)

	kicked := handlers.MembershipEvents(&models.Message{From: admin, LeftChatMember: bob})
	require.Len(t, kicked, 1)
	assert.Equal(t, moderation.MemberKicked, kicked[0].Kind)
}

func TestOutcomeText(t *testing.T) {
	t.Parallel()

	msgs := config.DefaultMessages
	failed := func(err error) moderation.Outcome {
		return moderation.Outcome{
			Decision: moderation.Decision{Action: moderation.ActionMute},
			State:    moderation.StateFailed,
			Failure:  moderation.ClassifyFailure(err),
			Err:      err,
		}
	}

	assert.Equal(t, msgs.TargetNotInChat, handlers.OutcomeText(msgs, failed(moderation.ErrTargetNotInChat)))
	assert.Equal(t, msgs.TargetProtected, handlers.OutcomeText(msgs, failed(moderation.ErrTargetProtected)))

	long := errors.New(strings.Repeat("x", 80))
	assert.Equal(t, "❌ Mute failed: "+strings.Repeat("x", 50), handlers.OutcomeText(msgs, failed(long)))

	denied := moderation.Outcome{
		Decision: moderation.Decision{Action: moderation.ActionBan, Reason: moderation.DenyUserNotFound, Subject: "ghost"},
		State:    moderation.StateDenied,
	}
	assert.Equal(t, "❌ User not found: ghost", handlers.OutcomeText(msgs, denied))
}
