package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/modbot/internal/moderation"
)

// UserRegistry is the known-user store consulted before the Bot API.
type UserRegistry interface {
	Observe(ctx context.Context, user moderation.UserRef) error
	ByID(ctx context.Context, id int64) (moderation.UserRef, error)
	ByUsername(ctx context.Context, handle string) (moderation.UserRef, error)
}

// Directory answers role and entity queries through the Bot API.
type Directory struct {
	api      API
	registry UserRegistry
	logger   *slog.Logger
}

var _ moderation.Directory = (*Directory)(nil)

// NewDirectory creates a Directory. registry may be nil.
func NewDirectory(api API, registry UserRegistry, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Directory{
		api:      api,
		registry: registry,
		logger:   logger.With("component", "chat_directory"),
	}
}

// RoleFromMemberType maps a chat member status onto a Role.
func RoleFromMemberType(t models.ChatMemberType) moderation.Role {
	switch t {
	case models.ChatMemberTypeOwner:
		return moderation.RoleCreator
	case models.ChatMemberTypeAdministrator:
		return moderation.RoleAdmin
	case models.ChatMemberTypeMember, models.ChatMemberTypeRestricted:
		return moderation.RoleRegular
	case models.ChatMemberTypeBanned:
		return moderation.RoleBanned
	default:
		return moderation.RoleNotFound
	}
}

// ParticipantRole returns the role of userID in chatID. Users the platform
// does not know in the chat yield RoleNotFound without error.
func (d *Directory) ParticipantRole(ctx context.Context, chatID, userID int64) (moderation.Role, error) {
	member, err := d.api.GetChatMember(ctx, &bot.GetChatMemberParams{ChatID: chatID, UserID: userID})
	if err != nil {
		if errors.Is(translateError(err), moderation.ErrTargetNotInChat) {
			return moderation.RoleNotFound, nil
		}
		return moderation.RoleNotFound, fmt.Errorf("getChatMember %d in %d: %w", userID, chatID, err)
	}
	if member == nil {
		return moderation.RoleNotFound, nil
	}
	return RoleFromMemberType(member.Type), nil
}

// EntityByID resolves id through the registry, falling back to getChat.
func (d *Directory) EntityByID(ctx context.Context, id int64) (moderation.Entity, error) {
	if d.registry != nil {
		user, err := d.registry.ByID(ctx, id)
		if err == nil {
			return moderation.Entity{Kind: moderation.EntityUser, User: user}, nil
		}
		if !errors.Is(err, moderation.ErrEntityNotFound) {
			d.logger.WarnContext(ctx, "Registry lookup failed, asking the platform", "id", id, "error", err)
		}
	}
	return d.lookupChat(ctx, id)
}

// EntityByHandle resolves a handle through the registry, falling back to
// getChat, which only knows public chats, channels and users that talked to
// the bot.
func (d *Directory) EntityByHandle(ctx context.Context, handle string) (moderation.Entity, error) {
	if handle == "" {
		return moderation.Entity{}, moderation.ErrEntityNotFound
	}
	if d.registry != nil {
		user, err := d.registry.ByUsername(ctx, handle)
		if err == nil {
			return moderation.Entity{Kind: moderation.EntityUser, User: user}, nil
		}
		if !errors.Is(err, moderation.ErrEntityNotFound) {
			d.logger.WarnContext(ctx, "Registry lookup failed, asking the platform", "handle", handle, "error", err)
		}
	}
	return d.lookupChat(ctx, "@"+handle)
}

func (d *Directory) lookupChat(ctx context.Context, chatID any) (moderation.Entity, error) {
	chat, err := d.api.GetChat(ctx, &bot.GetChatParams{ChatID: chatID})
	if err != nil {
		if isLookupMiss(err) {
			return moderation.Entity{}, fmt.Errorf("%w: %v", moderation.ErrEntityNotFound, err)
		}
		return moderation.Entity{}, fmt.Errorf("getChat %v: %w", chatID, err)
	}
	if chat == nil {
		return moderation.Entity{}, moderation.ErrEntityNotFound
	}

	switch chat.Type {
	case models.ChatTypePrivate:
		user := moderation.UserRef{
			ID:        chat.ID,
			Username:  chat.Username,
			FirstName: chat.FirstName,
			LastName:  chat.LastName,
		}
		if d.registry != nil {
			if err := d.registry.Observe(ctx, user); err != nil {
				d.logger.WarnContext(ctx, "Failed to record resolved user", "user_id", user.ID, "error", err)
			}
		}
		return moderation.Entity{Kind: moderation.EntityUser, User: user}, nil
	case models.ChatTypeChannel:
		return moderation.Entity{Kind: moderation.EntityChannel, Title: chat.Title}, nil
	default:
		return moderation.Entity{Kind: moderation.EntityGroup, Title: chat.Title}, nil
	}
}
