package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/modbot/internal/config"
	"github.com/edgard/modbot/internal/moderation"
)

// UserRefFrom converts a Telegram user.
func UserRefFrom(u *models.User) moderation.UserRef {
	if u == nil {
		return moderation.UserRef{}
	}
	return moderation.UserRef{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsBot:     u.IsBot,
		IsPremium: u.IsPremium,
	}
}

// RequestFromMessage builds the command request carried by msg.
func RequestFromMessage(msg *models.Message) moderation.CommandRequest {
	req := moderation.CommandRequest{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Issuer:    UserRefFrom(msg.From),
		Text:      msg.Text,
	}
	if r := msg.ReplyToMessage; r != nil {
		target := &moderation.ReplyTarget{MessageID: r.ID}
		switch {
		case r.SenderChat != nil:
			target.AuthorIsChat = true
		case r.From != nil:
			target.AuthorID = r.From.ID
		}
		req.ReplyTo = target
	}
	return req
}

// commandMessage returns the message of a command update, or nil when the
// update cannot carry a command.
func commandMessage(ctx context.Context, log *slog.Logger, update *models.Update) *models.Message {
	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Received update with nil message or sender", "update_id", update.ID)
		return nil
	}
	return update.Message
}

// reply sends text to the chat of msg as a reply to it. Delivery failures are
// only logged.
func reply(ctx context.Context, b *bot.Bot, log *slog.Logger, msg *models.Message, text string, html bool) {
	params := &bot.SendMessageParams{
		ChatID:          msg.Chat.ID,
		Text:            text,
		ReplyParameters: &models.ReplyParameters{MessageID: msg.ID, AllowSendingWithoutReply: true},
	}
	if html {
		params.ParseMode = models.ParseModeHTML
	}
	if _, err := b.SendMessage(ctx, params); err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", msg.Chat.ID)
	}
}

// fill substitutes {name} placeholders in a configured message.
func fill(tmpl string, pairs ...string) string {
	if len(pairs) == 0 {
		return tmpl
	}
	keyed := make([]string, 0, len(pairs))
	for i := 0; i+1 < len(pairs); i += 2 {
		keyed = append(keyed, "{"+pairs[i]+"}", pairs[i+1])
	}
	return strings.NewReplacer(keyed...).Replace(tmpl)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// DenialText maps a policy denial onto its configured reply.
func DenialText(m config.MessagesConfig, reason moderation.DenyReason, subject string) string {
	switch reason {
	case moderation.DenyRateLimited:
		return m.RateLimited
	case moderation.DenyNotAdmin:
		return m.NotAdmin
	case moderation.DenyNoTargetSpecified:
		return m.NoTarget
	case moderation.DenyUserNotFound:
		if subject == "" {
			subject = "-"
		}
		return fill(m.UserNotFound, "subject", subject)
	case moderation.DenyNotAUserAccount:
		return m.NotAUser
	case moderation.DenyNotAMember:
		return m.NotAMember
	case moderation.DenyBotNotAdmin:
		return m.BotNotAdmin
	case moderation.DenyCannotModerateCreator:
		return m.CannotModerateCreator
	case moderation.DenyCannotModerateAdmin:
		return m.CannotModerateAdmin
	case moderation.DenyCannotModerateSelf:
		return m.CannotModerateSelf
	default:
		return m.GeneralError
	}
}

// denialTextOf maps err onto its reply, falling back to the generic error.
func denialTextOf(m config.MessagesConfig, err error) string {
	var d *moderation.Denial
	if errors.As(err, &d) {
		return DenialText(m, d.Reason, d.Subject)
	}
	return m.GeneralError
}

// OutcomeText maps a moderation outcome onto its reply.
func OutcomeText(m config.MessagesConfig, out moderation.Outcome) string {
	switch out.State {
	case moderation.StateApplied:
		if out.Action == moderation.ActionRemove {
			return fill(m.RemoveSuccess, "user", out.TargetName())
		}
		return fill(m.ActionSuccess, "user", out.TargetName(), "action", out.Action.PastTense())
	case moderation.StateDenied:
		return DenialText(m, out.Reason, out.Subject)
	}

	switch out.Failure {
	case moderation.FailurePermissionRevoked:
		return m.PermissionRevoked
	case moderation.FailureTargetNotInChat:
		return m.TargetNotInChat
	case moderation.FailureTargetProtected:
		return m.TargetProtected
	}
	detail := "unknown error"
	if out.Err != nil {
		detail = moderation.Truncate(out.Err.Error(), 50)
	}
	return fill(m.ActionFailed, "action", capitalize(string(out.Action)), "error", detail)
}
