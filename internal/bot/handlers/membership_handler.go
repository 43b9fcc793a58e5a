package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/modbot/internal/moderation"
)

// NewMembershipHandler returns a handler for join and leave service messages.
func NewMembershipHandler(deps HandlerDeps) bot.HandlerFunc {
	return membershipHandler{deps}.Handle
}

type membershipHandler struct {
	deps HandlerDeps
}

func (h membershipHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "membership")

	if update.Message == nil {
		return
	}
	for _, ev := range MembershipEvents(update.Message) {
		delivered := h.deps.Notifier.Handle(ctx, ev)
		log.DebugContext(ctx, "Processed membership event",
			"kind", ev.Kind.String(), "users", len(ev.Users), "delivered", delivered, "chat_id", ev.Chat.ID)
	}
}

// MembershipEvents converts a service message into membership events. A
// member is "joined" when they are the sender of the message and "added"
// otherwise; likewise "left" versus "kicked". Consecutive members of the same
// kind share one event so batch pacing applies.
func MembershipEvents(msg *models.Message) []moderation.MembershipEvent {
	chat := moderation.ChatRef{ID: msg.Chat.ID, Title: msg.Chat.Title}
	var senderID int64
	if msg.From != nil {
		senderID = msg.From.ID
	}

	var events []moderation.MembershipEvent
	push := func(kind moderation.MembershipKind, user moderation.UserRef) {
		if n := len(events); n > 0 && events[n-1].Kind == kind {
			events[n-1].Users = append(events[n-1].Users, user)
			return
		}
		events = append(events, moderation.MembershipEvent{Chat: chat, Kind: kind, Users: []moderation.UserRef{user}})
	}

	for i := range msg.NewChatMembers {
		member := &msg.NewChatMembers[i]
		kind := moderation.MemberAdded
		if member.ID == senderID {
			kind = moderation.MemberJoined
		}
		push(kind, UserRefFrom(member))
	}
	if left := msg.LeftChatMember; left != nil {
		kind := moderation.MemberKicked
		if left.ID == senderID {
			kind = moderation.MemberLeft
		}
		push(kind, UserRefFrom(left))
	}
	return events
}
