package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/modbot/internal/format"
	"github.com/edgard/modbot/internal/moderation"
)

// NewStatusHandler returns a handler for the /status command.
func NewStatusHandler(deps HandlerDeps) bot.HandlerFunc {
	return statusHandler{deps}.Handle
}

type statusHandler struct {
	deps HandlerDeps
}

func (h statusHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "status")

	msg := commandMessage(ctx, log, update)
	if msg == nil {
		return
	}

	status := format.Status{
		BotID:       h.deps.Guard.BotID(),
		BotIsAdmin:  h.deps.Guard.BotIsAdminOrCreator(ctx, msg.Chat.ID),
		UserIsAdmin: h.deps.Guard.IsAdminOrCreator(ctx, msg.Chat.ID, msg.From.ID),
		ChatID:      msg.Chat.ID,
	}
	if info := h.deps.Config.Telegram.BotInfo; info != nil {
		status.BotUsername = info.Username
	}
	if h.deps.Counter != nil {
		n, err := h.deps.Counter.CountUsers(ctx)
		if err != nil {
			log.WarnContext(ctx, "Failed to count known users", "error", err)
		}
		status.KnownUsers = n
	}
	reply(ctx, b, log, msg, format.StatusText(status), true)
}

// NewUserInfoHandler returns a handler for the /uinfo command.
func NewUserInfoHandler(deps HandlerDeps) bot.HandlerFunc {
	return userInfoHandler{deps}.Handle
}

type userInfoHandler struct {
	deps HandlerDeps
}

func (h userInfoHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "uinfo")

	msg := commandMessage(ctx, log, update)
	if msg == nil {
		return
	}
	msgs := h.deps.Config.Messages
	req := RequestFromMessage(msg)

	if !h.deps.Limiter.Allow(req.Issuer.ID) {
		reply(ctx, b, log, msg, msgs.RateLimited, false)
		return
	}

	target, err := h.deps.Resolver.Identify(ctx, req)
	switch {
	case moderation.ReasonOf(err) == moderation.DenyNoTargetSpecified:
		target = req.Issuer
	case err != nil:
		reply(ctx, b, log, msg, denialTextOf(msgs, err), false)
		return
	}

	info := format.UserInfo{User: target}
	role, err := h.deps.Directory.ParticipantRole(ctx, msg.Chat.ID, target.ID)
	if err != nil {
		log.ErrorContext(ctx, "Role lookup failed", "error", err, "chat_id", msg.Chat.ID, "user_id", target.ID)
		reply(ctx, b, log, msg, fill(msgs.LookupFailed, "error", moderation.Truncate(err.Error(), 50)), false)
		return
	}
	info.Role = role

	if h.deps.Users != nil {
		known, err := h.deps.Users.Record(ctx, target.ID)
		switch {
		case err != nil:
			log.WarnContext(ctx, "Known user lookup failed", "error", err, "user_id", target.ID)
		case known != nil:
			info.FirstSeen = known.FirstSeen
			info.LastSeen = known.LastSeen
			if !info.User.IsPremium {
				info.User.IsPremium = known.IsPremium
			}
		}
	}
	reply(ctx, b, log, msg, format.UserInfoText(info, h.deps.Config.Moderation.Location()), true)
}
