package telegram

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/modbot/internal/moderation"
)

// Executor applies restrictions through the Bot API.
type Executor struct {
	api    API
	logger *slog.Logger
}

var _ moderation.Executor = (*Executor)(nil)

// NewExecutor creates an Executor.
func NewExecutor(api API, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Executor{api: api, logger: logger.With("component", "action_executor")}
}

func mutedPermissions() *models.ChatPermissions {
	return &models.ChatPermissions{}
}

func fullPermissions() *models.ChatPermissions {
	return &models.ChatPermissions{
		CanSendMessages:       true,
		CanSendAudios:         true,
		CanSendDocuments:      true,
		CanSendPhotos:         true,
		CanSendVideos:         true,
		CanSendVideoNotes:     true,
		CanSendVoiceNotes:     true,
		CanSendPolls:          true,
		CanSendOtherMessages:  true,
		CanAddWebPagePreviews: true,
		CanInviteUsers:        true,
	}
}

// ApplyRestriction sets the rights of userID in chatID. Withholding view
// rights bans, withholding send rights mutes, and withholding nothing lifts
// both a ban and a mute.
func (e *Executor) ApplyRestriction(ctx context.Context, chatID, userID int64, rights moderation.Rights) error {
	switch {
	case rights.ViewMessages:
		_, err := e.api.BanChatMember(ctx, &bot.BanChatMemberParams{ChatID: chatID, UserID: userID})
		return translateError(err)

	case rights.SendMessages:
		_, err := e.api.RestrictChatMember(ctx, &bot.RestrictChatMemberParams{
			ChatID:      chatID,
			UserID:      userID,
			Permissions: mutedPermissions(),
		})
		return translateError(err)

	default:
		if _, err := e.api.UnbanChatMember(ctx, &bot.UnbanChatMemberParams{
			ChatID:       chatID,
			UserID:       userID,
			OnlyIfBanned: true,
		}); err != nil {
			return translateError(err)
		}
		_, err := e.api.RestrictChatMember(ctx, &bot.RestrictChatMemberParams{
			ChatID:      chatID,
			UserID:      userID,
			Permissions: fullPermissions(),
		})
		err = translateError(err)
		// Users that are no longer members, and admins, carry no restrictions to clear.
		if errors.Is(err, moderation.ErrTargetNotInChat) || errors.Is(err, moderation.ErrTargetProtected) {
			e.logger.DebugContext(ctx, "Nothing to unrestrict", "chat_id", chatID, "user_id", userID, "error", err)
			return nil
		}
		return err
	}
}

// RemoveParticipant takes userID out of chatID without leaving a ban behind.
func (e *Executor) RemoveParticipant(ctx context.Context, chatID, userID int64) error {
	if _, err := e.api.BanChatMember(ctx, &bot.BanChatMemberParams{ChatID: chatID, UserID: userID}); err != nil {
		return translateError(err)
	}
	_, err := e.api.UnbanChatMember(ctx, &bot.UnbanChatMemberParams{
		ChatID:       chatID,
		UserID:       userID,
		OnlyIfBanned: true,
	})
	return translateError(err)
}
