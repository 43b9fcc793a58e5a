package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/modbot/internal/moderation"
)

// NewWelcomeHandler returns a handler for the /welcome command. Issuer gates
// are applied by the AdminOnly middleware.
func NewWelcomeHandler(deps HandlerDeps) bot.HandlerFunc {
	return welcomeHandler{deps}.Handle
}

type welcomeHandler struct {
	deps HandlerDeps
}

func (h welcomeHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "welcome")

	msg := commandMessage(ctx, log, update)
	if msg == nil {
		return
	}
	req := RequestFromMessage(msg)

	target, err := h.deps.Resolver.Identify(ctx, req)
	if err != nil {
		text := denialTextOf(h.deps.Config.Messages, err)
		if moderation.ReasonOf(err) == moderation.DenyNoTargetSpecified {
			text = h.deps.Config.Messages.WelcomeUsage
		}
		reply(ctx, b, log, msg, text, false)
		return
	}

	replyTo := 0
	if req.ReplyTo != nil {
		replyTo = req.ReplyTo.MessageID
	}
	chat := moderation.ChatRef{ID: msg.Chat.ID, Title: msg.Chat.Title}
	if err := h.deps.Greeter.Welcome(ctx, chat, target, replyTo); err != nil {
		log.ErrorContext(ctx, "Failed to send welcome", "error", err, "chat_id", msg.Chat.ID, "target_id", target.ID)
		reply(ctx, b, log, msg, h.deps.Config.Messages.GeneralError, false)
		return
	}
	log.InfoContext(ctx, "Sent manual welcome", "chat_id", msg.Chat.ID, "target_id", target.ID, "issuer_id", msg.From.ID)
}
