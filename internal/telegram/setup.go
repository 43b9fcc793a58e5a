// Package telegram binds the moderation core to the Telegram Bot API: bot
// construction, handler registration and the chat directory, action executor
// and greeter adapters.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/modbot/internal/bot/handlers"
)

// API is the subset of *bot.Bot used by the adapters.
type API interface {
	GetChat(ctx context.Context, params *bot.GetChatParams) (*models.ChatFullInfo, error)
	GetChatMember(ctx context.Context, params *bot.GetChatMemberParams) (*models.ChatMember, error)
	BanChatMember(ctx context.Context, params *bot.BanChatMemberParams) (bool, error)
	UnbanChatMember(ctx context.Context, params *bot.UnbanChatMemberParams) (bool, error)
	RestrictChatMember(ctx context.Context, params *bot.RestrictChatMemberParams) (bool, error)
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

var _ API = (*bot.Bot)(nil)

// NewTelegramBot creates a go-telegram bot instance.
func NewTelegramBot(token string, logger *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_bot")

	b, err := bot.New(token, opts...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	prefix := token
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	log.Info("Telegram bot instance created", "token_prefix", prefix+"...")
	return b, nil
}

// applyMiddleware wraps handler so that the first middleware is the outermost.
func applyMiddleware(handler bot.HandlerFunc, mw []bot.Middleware) bot.HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	return handler
}

// RegisterHandlers registers every handler with b, wrapping each in its own
// middleware chain.
func RegisterHandlers(b *bot.Bot, logger *slog.Logger, registered map[string]handlers.RegisteredHandler) error {
	if b == nil {
		return fmt.Errorf("bot instance cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "handler_registry")

	if len(registered) == 0 {
		log.Warn("No handlers provided for registration")
		return nil
	}

	for name, reg := range registered {
		if reg.Handler == nil {
			log.Warn("Skipping registration for nil handler", "name", name)
			continue
		}
		final := applyMiddleware(reg.Handler, reg.Middleware)
		if reg.Match != nil {
			b.RegisterHandlerMatchFunc(reg.Match, final)
		} else {
			b.RegisterHandler(reg.HandlerType, reg.Pattern, reg.MatchType, final)
		}
		log.Debug("Registered handler", "name", name, "middleware_count", len(reg.Middleware))
	}

	log.Info("Registered Telegram handlers", "count", len(registered))
	return nil
}
