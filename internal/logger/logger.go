// Package logger builds the slog logger and the update-level middleware.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// ParseLevel maps a configured level name onto slog, defaulting to info.
func ParseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a stdout logger and installs it as the slog default.
func NewLogger(levelStr string, jsonOutput bool) *slog.Logger {
	logger := New(os.Stdout, levelStr, jsonOutput)
	slog.SetDefault(logger)
	return logger
}

// New creates a logger writing to w.
func New(w io.Writer, levelStr string, jsonOutput bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(levelStr)}
	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Middleware logs every update with its chat, sender and duration.
func Middleware(log *slog.Logger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			startTime := time.Now()
			entry := log.With("update_id", update.ID)

			updateType := "other"
			if msg := update.Message; msg != nil {
				updateType = "message"
				entry = entry.With("message_id", msg.ID, "chat_id", msg.Chat.ID)
				if msg.From != nil {
					entry = entry.With("user_id", msg.From.ID)
				}
				switch {
				case len(msg.NewChatMembers) > 0:
					updateType = "members_joined"
					entry = entry.With("count", len(msg.NewChatMembers))
				case msg.LeftChatMember != nil:
					updateType = "member_left"
					entry = entry.With("member_id", msg.LeftChatMember.ID)
				case msg.Text != "":
					entry = entry.With("text_preview", truncateString(msg.Text, 50))
				}
			} else if update.ChatMember != nil {
				updateType = "chat_member"
				entry = entry.With("chat_id", update.ChatMember.Chat.ID)
			}
			entry = entry.With("update_type", updateType)

			entry.DebugContext(ctx, "Processing update")
			next(ctx, b, update)
			entry.InfoContext(ctx, "Finished processing update", "duration", time.Since(startTime))
		}
	}
}

// Recover stops a panicking handler from taking down the update loop. The
// panic is logged with its stack and the update is dropped.
func Recover(log *slog.Logger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			defer func() {
				if r := recover(); r != nil {
					log.ErrorContext(ctx, "Handler panicked",
						"update_id", update.ID, "panic", r, "stack", string(debug.Stack()))
				}
			}()
			next(ctx, b, update)
		}
	}
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(r[:maxLen-3]) + "..."
}
