package moderation

import (
	"context"
	"io"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// MembershipKind is the membership change carried by an event.
type MembershipKind int

const (
	MemberJoined MembershipKind = iota
	MemberAdded
	MemberLeft
	MemberKicked
)

func (k MembershipKind) String() string {
	switch k {
	case MemberJoined:
		return "joined"
	case MemberAdded:
		return "added"
	case MemberLeft:
		return "left"
	case MemberKicked:
		return "kicked"
	default:
		return "unknown"
	}
}

// Notification maps the change onto the notification it triggers.
func (k MembershipKind) Notification() NotificationKind {
	if k == MemberLeft || k == MemberKicked {
		return NotifyGoodbye
	}
	return NotifyWelcome
}

// ChatRef identifies a chat and its display title.
type ChatRef struct {
	ID    int64
	Title string
}

// MembershipEvent is a join/add/leave/kick notification for one or more users.
type MembershipEvent struct {
	Chat  ChatRef
	Kind  MembershipKind
	Users []UserRef
}

// Greeter composes and delivers welcome and goodbye messages.
type Greeter interface {
	Welcome(ctx context.Context, chat ChatRef, user UserRef, replyTo int) error
	Goodbye(ctx context.Context, chat ChatRef, user UserRef) error
}

// MembershipNotifier turns membership events into de-duplicated greetings.
type MembershipNotifier struct {
	suppressor *DuplicateSuppressor
	greeter    Greeter
	botID      int64
	delay      time.Duration
	logger     *slog.Logger
}

// NewMembershipNotifier creates a notifier. delay spaces deliveries inside one batch.
func NewMembershipNotifier(logger *slog.Logger, suppressor *DuplicateSuppressor, greeter Greeter, botID int64, delay time.Duration) *MembershipNotifier {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &MembershipNotifier{
		suppressor: suppressor,
		greeter:    greeter,
		botID:      botID,
		delay:      delay,
		logger:     logger.With("component", "membership_notifier"),
	}
}

// Handle processes the users of ev sequentially and returns how many
// notifications were delivered.
func (n *MembershipNotifier) Handle(ctx context.Context, ev MembershipEvent) int {
	kind := ev.Kind.Notification()
	limit := rate.Inf
	if n.delay > 0 {
		limit = rate.Every(n.delay)
	}
	pacer := rate.NewLimiter(limit, 1)

	delivered := 0
	for _, user := range ev.Users {
		if user.ID == n.botID {
			continue
		}
		if !n.suppressor.ShouldNotify(kind, user.ID, ev.Chat.ID) {
			notificationCount.WithLabelValues(string(kind), "suppressed").Inc()
			n.logger.InfoContext(ctx, "Skipped duplicate notification",
				"kind", string(kind), "user_id", user.ID, "chat_id", ev.Chat.ID)
			continue
		}
		if err := pacer.Wait(ctx); err != nil {
			n.logger.WarnContext(ctx, "Stopped batch notification", "error", err, "chat_id", ev.Chat.ID)
			return delivered
		}

		var err error
		if kind == NotifyGoodbye {
			err = n.greeter.Goodbye(ctx, ev.Chat, user)
		} else {
			err = n.greeter.Welcome(ctx, ev.Chat, user, 0)
		}
		if err != nil {
			notificationCount.WithLabelValues(string(kind), "failed").Inc()
			n.logger.ErrorContext(ctx, "Failed to deliver notification",
				"kind", string(kind), "user_id", user.ID, "chat_id", ev.Chat.ID, "error", err)
			continue
		}
		delivered++
		notificationCount.WithLabelValues(string(kind), "delivered").Inc()
		n.logger.InfoContext(ctx, "Delivered notification",
			"kind", string(kind), "event", ev.Kind.String(), "user_id", user.ID, "chat_id", ev.Chat.ID)
	}
	return delivered
}
