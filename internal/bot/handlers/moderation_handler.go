package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/modbot/internal/moderation"
)

// NewModerationHandler returns a handler dispatching action through the
// moderation engine and replying with the outcome.
func NewModerationHandler(deps HandlerDeps, action moderation.Action) bot.HandlerFunc {
	return moderationHandler{deps: deps, action: action}.Handle
}

type moderationHandler struct {
	deps   HandlerDeps
	action moderation.Action
}

func (h moderationHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", string(h.action))

	msg := commandMessage(ctx, log, update)
	if msg == nil {
		return
	}
	log.InfoContext(ctx, "Handling moderation command", "chat_id", msg.Chat.ID, "user_id", msg.From.ID)

	out := h.deps.Engine.Moderate(ctx, RequestFromMessage(msg), h.action)

	text := OutcomeText(h.deps.Config.Messages, out)
	if out.State == moderation.StateDenied && out.Reason == moderation.DenyNoTargetSpecified && h.action == moderation.ActionRemove {
		text = h.deps.Config.Messages.GoodbyeUsage
	}
	reply(ctx, b, log, msg, text, false)
}
