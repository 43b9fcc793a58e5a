package telegram

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"

	"github.com/edgard/modbot/internal/moderation"
)

// Fragments of Bot API error descriptions, lower-cased.
var (
	notInChatHints = []string{
		"user not found",
		"participant_id_invalid",
		"user_not_participant",
		"member not found",
		"user is not a member",
	}
	protectedHints = []string{
		"user is an administrator",
		"can't remove chat owner",
		"can't restrict self",
		"user_admin_invalid",
		"is an administrator of the chat",
	}
	noRightsHints = []string{
		"not enough rights",
		"chat_admin_required",
		"need administrator rights",
		"have no rights",
		"bot is not a member",
		"bot was kicked",
	}
)

func containsAny(s string, hints []string) bool {
	for _, h := range hints {
		if strings.Contains(s, h) {
			return true
		}
	}
	return false
}

// translateError maps a Bot API error onto the moderation sentinels while
// keeping the original error in the chain.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	desc := strings.ToLower(err.Error())

	switch {
	case containsAny(desc, protectedHints):
		return fmt.Errorf("%w: %w", moderation.ErrTargetProtected, err)
	case containsAny(desc, notInChatHints):
		return fmt.Errorf("%w: %w", moderation.ErrTargetNotInChat, err)
	case errors.Is(err, bot.ErrorForbidden), containsAny(desc, noRightsHints):
		return fmt.Errorf("%w: %w", moderation.ErrPermissionRevoked, err)
	default:
		return err
	}
}

// isLookupMiss reports whether a lookup error means the entity does not exist
// or is not visible to the bot.
func isLookupMiss(err error) bool {
	if errors.Is(err, bot.ErrorBadRequest) || errors.Is(err, bot.ErrorNotFound) {
		return true
	}
	desc := strings.ToLower(err.Error())
	return strings.Contains(desc, "chat not found") || containsAny(desc, notInChatHints)
}
