package telegram

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/modbot/internal/format"
	"github.com/edgard/modbot/internal/moderation"
)

// Greeter posts welcome and goodbye messages.
type Greeter struct {
	api API
	// pick chooses the welcome greeting line.
	pick func() string
}

var _ moderation.Greeter = (*Greeter)(nil)

// NewGreeter creates a Greeter using random greetings.
func NewGreeter(api API) *Greeter {
	return &Greeter{api: api, pick: format.RandomGreeting}
}

// Welcome posts the welcome card, replying to replyTo when it is non-zero.
func (g *Greeter) Welcome(ctx context.Context, chat moderation.ChatRef, user moderation.UserRef, replyTo int) error {
	params := &bot.SendMessageParams{
		ChatID:    chat.ID,
		Text:      format.Welcome(g.pick(), user, chat.Title),
		ParseMode: models.ParseModeHTML,
	}
	if replyTo != 0 {
		params.ReplyParameters = &models.ReplyParameters{MessageID: replyTo, AllowSendingWithoutReply: true}
	}
	if _, err := g.api.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("send welcome to %d: %w", chat.ID, translateError(err))
	}
	return nil
}

// Goodbye posts the farewell message.
func (g *Greeter) Goodbye(ctx context.Context, chat moderation.ChatRef, user moderation.UserRef) error {
	_, err := g.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chat.ID,
		Text:      format.Goodbye(user),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("send goodbye to %d: %w", chat.ID, translateError(err))
	}
	return nil
}
