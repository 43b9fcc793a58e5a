package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/modbot/internal/format"
)

// NewLogsHandler returns a handler for the /logs command.
func NewLogsHandler(deps HandlerDeps) bot.HandlerFunc {
	return logsHandler{deps}.Handle
}

type logsHandler struct {
	deps HandlerDeps
}

func (h logsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "logs")

	msg := commandMessage(ctx, log, update)
	if msg == nil {
		return
	}

	mod := h.deps.Config.Moderation
	entries := h.deps.Audit.Recent(mod.RecentLogs)
	log.DebugContext(ctx, "Rendering audit entries", "count", len(entries), "chat_id", msg.Chat.ID)
	reply(ctx, b, log, msg, format.Logs(entries, mod.Location()), true)
}
