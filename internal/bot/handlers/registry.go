package handlers

import (
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/modbot/internal/moderation"
)

// RegisteredHandler represents a command handler with its description and middleware.
// When Match is set it takes precedence over HandlerType, Pattern and MatchType.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
	Match       tgbot.MatchFunc
}

// ParseCommand extracts the command name from text. Commands must start with
// a slash and may carry an "@botname" suffix, in which case the suffix has to
// name this bot. Names are case-sensitive.
func ParseCommand(text, botUsername string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", false
	}
	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		if !strings.EqualFold(name[at+1:], botUsername) {
			return "", false
		}
		name = name[:at]
	}
	if name == "" {
		return "", false
	}
	return name, true
}

// CommandMatch matches messages carrying the named command.
func CommandMatch(name, botUsername string) tgbot.MatchFunc {
	return func(update *models.Update) bool {
		if update.Message == nil {
			return false
		}
		got, ok := ParseCommand(update.Message.Text, botUsername)
		return ok && got == name
	}
}

// MembershipMatch matches join and leave service messages.
func MembershipMatch(update *models.Update) bool {
	msg := update.Message
	return msg != nil && (len(msg.NewChatMembers) > 0 || msg.LeftChatMember != nil)
}

// RegisterAllCommands initializes and returns a map of all available bot commands.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	botUsername := ""
	if deps.Config.Telegram.BotInfo != nil {
		botUsername = deps.Config.Telegram.BotInfo.Username
	}
	command := func(name string, h tgbot.HandlerFunc, mw ...tgbot.Middleware) RegisteredHandler {
		return RegisteredHandler{Handler: h, Match: CommandMatch(name, botUsername), Middleware: mw}
	}

	handlers := make(map[string]RegisteredHandler)

	for _, action := range []moderation.Action{
		moderation.ActionBan,
		moderation.ActionUnban,
		moderation.ActionMute,
		moderation.ActionUnmute,
		moderation.ActionKick,
	} {
		handlers["/"+string(action)] = command(string(action), NewModerationHandler(deps, action))
	}
	handlers["/goodbye"] = command("goodbye", NewModerationHandler(deps, moderation.ActionRemove))

	msgs := deps.Config.Messages
	handlers["/welcome"] = command("welcome", NewWelcomeHandler(deps), AdminOnly(deps, msgs.NotAdmin))
	handlers["/logs"] = command("logs", NewLogsHandler(deps), AdminOnly(deps, msgs.LogsNotAdmin))

	handlers["/help"] = command("help", NewHelpHandler(deps))
	handlers["/status"] = command("status", NewStatusHandler(deps))
	handlers["/uinfo"] = command("uinfo", NewUserInfoHandler(deps))

	handlers["membership"] = RegisteredHandler{
		Handler: NewMembershipHandler(deps),
		Match:   MembershipMatch,
	}

	return handlers
}
