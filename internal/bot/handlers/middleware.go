// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/modbot/internal/moderation"
)

// AdminOnly runs the shared issuer gates (cooldown, then admin check) and
// replies with the denial instead of calling next. notAdminMsg replaces the
// stock not-admin reply.
func AdminOnly(deps HandlerDeps, notAdminMsg string) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.From == nil {
				return
			}
			msg := update.Message

			err := deps.Engine.Authorize(ctx, RequestFromMessage(msg))
			if err == nil {
				next(ctx, bot, update)
				return
			}

			log := deps.Logger.With("middleware", "AdminOnly")
			reason := moderation.ReasonOf(err)
			log.InfoContext(ctx, "Command refused", "reason", reason.String(),
				"user_id", msg.From.ID, "chat_id", msg.Chat.ID)

			text := denialTextOf(deps.Config.Messages, err)
			if reason == moderation.DenyNotAdmin && notAdminMsg != "" {
				text = notAdminMsg
			}
			reply(ctx, bot, log, msg, text, false)
		}
	}
}

// ObserveUsers records every user visible in an update before passing it on,
// so that handles can later be resolved to ids.
func ObserveUsers(users KnownUsers, logger *slog.Logger) tgbot.Middleware {
	log := logger.With("middleware", "ObserveUsers")
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			for _, u := range visibleUsers(update) {
				if err := users.Observe(ctx, UserRefFrom(u)); err != nil {
					log.WarnContext(ctx, "Failed to record user", "user_id", u.ID, "error", err)
				}
			}
			next(ctx, bot, update)
		}
	}
}

func visibleUsers(update *models.Update) []*models.User {
	var out []*models.User
	add := func(u *models.User) {
		if u != nil && u.ID != 0 {
			out = append(out, u)
		}
	}

	if msg := update.Message; msg != nil {
		add(msg.From)
		if msg.ReplyToMessage != nil {
			add(msg.ReplyToMessage.From)
		}
		for i := range msg.NewChatMembers {
			add(&msg.NewChatMembers[i])
		}
		add(msg.LeftChatMember)
	}
	if cm := update.ChatMember; cm != nil {
		add(&cm.From)
	}
	return out
}
