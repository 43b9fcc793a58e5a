// Package format renders the HTML messages the bot posts into chats.
package format

import (
	"fmt"
	"html"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/edgard/modbot/internal/moderation"
)

const separator = "━━━━━━━━━━━━━━━━━"

// Greetings are the opening lines picked at random for welcome messages.
var Greetings = []string{
	"🌸 A warm welcome to you!",
	"✨ We're glad to have you here!",
	"🥳 Let's make some memories together!",
	"💫 Hope you enjoy your stay!",
	"🔥 Welcome aboard!",
}

// RandomGreeting picks one of Greetings.
func RandomGreeting() string {
	return Greetings[rand.Intn(len(Greetings))]
}

// Mention renders a clickable link to the user's profile.
func Mention(u moderation.UserRef) string {
	name := u.FirstName
	if name == "" {
		name = u.Label()
	}
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, u.ID, html.EscapeString(name))
}

func handleOr(u moderation.UserRef, fallback string) string {
	if u.Username == "" {
		return fallback
	}
	return "@" + html.EscapeString(u.Username)
}

func yesNo(b bool) string {
	if b {
		return "✅ Yes"
	}
	return "❌ No"
}

// Welcome renders the greeting card for user joining the chat titled chatTitle.
func Welcome(greeting string, u moderation.UserRef, chatTitle string) string {
	if chatTitle == "" {
		chatTitle = "this group"
	}
	var b strings.Builder
	b.WriteString(html.EscapeString(greeting) + "\n\n")
	b.WriteString("✨ <b>Welcome to</b> ✨\n")
	b.WriteString("<b>" + html.EscapeString(chatTitle) + "</b>\n\n")
	b.WriteString(separator + "\n")
	b.WriteString("👤 <b>Name</b> ➝ " + Mention(u) + "\n")
	b.WriteString("🆔 <b>ID</b> ➝ <code>" + strconv.FormatInt(u.ID, 10) + "</code>\n")
	b.WriteString("📛 <b>Username</b> ➝ " + handleOr(u, "none") + "\n")
	b.WriteString(separator + "\n\n")
	b.WriteString("💬 <i>For queries, type</i> @admins")
	return b.String()
}

// Goodbye renders the farewell for a user who left or was removed.
func Goodbye(u moderation.UserRef) string {
	return "Goodbye, " + Mention(u) + "! 👋\n" +
		"We'll miss having you here! Thanks for being part of the community. " +
		"Wishing you all the best! Feel free to come back anytime. 😊🌟"
}

// Logs renders audit entries oldest first, with times in loc.
func Logs(entries []moderation.AuditEntry, loc *time.Location) string {
	if len(entries) == 0 {
		return "📋 No moderation actions logged yet."
	}
	if loc == nil {
		loc = time.Local
	}

	var b strings.Builder
	b.WriteString("📋 <b>Recent Moderation Actions:</b>\n\n")
	for _, e := range entries {
		status := "✅"
		if !e.Success {
			status = "❌"
		}
		fmt.Fprintf(&b, "%s <code>%s</code> - %s %s %s", status,
			e.Timestamp.In(loc).Format(time.TimeOnly),
			html.EscapeString(e.IssuerName), string(e.Action), html.EscapeString(e.TargetName))
		if !e.Success && e.Detail != "" {
			b.WriteString(" <i>(" + html.EscapeString(e.Detail) + ")</i>")
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Status is the data shown by the status command.
type Status struct {
	BotID       int64
	BotUsername string
	BotIsAdmin  bool
	UserIsAdmin bool
	ChatID      int64
	KnownUsers  int64
}

// StatusText renders s.
func StatusText(s Status) string {
	var b strings.Builder
	b.WriteString("🤖 <b>Bot Status:</b>\n")
	fmt.Fprintf(&b, "• Bot ID: <code>%d</code>\n", s.BotID)
	fmt.Fprintf(&b, "• Username: @%s\n", html.EscapeString(s.BotUsername))
	fmt.Fprintf(&b, "• Bot Admin Status: %s\n", yesNo(s.BotIsAdmin))
	fmt.Fprintf(&b, "• Your Admin Status: %s\n", yesNo(s.UserIsAdmin))
	fmt.Fprintf(&b, "• Chat ID: <code>%d</code>\n", s.ChatID)
	fmt.Fprintf(&b, "• Known Users: %d\n", s.KnownUsers)
	b.WriteString("• Rate Limiting: ✅ Active\n")
	b.WriteString("• Action Logging: ✅ Active\n")
	b.WriteString("• Clean Welcome: ✅ Active\n\n")
	if s.BotIsAdmin {
		b.WriteString("✅ <b>Bot ready to moderate!</b>")
	} else {
		b.WriteString("⚠️ <b>Bot needs admin privileges!</b>")
	}
	return b.String()
}

// UserInfo is the data shown by the user info command.
type UserInfo struct {
	User moderation.UserRef
	Role moderation.Role
	// FirstSeen and LastSeen are zero when the user was never observed.
	FirstSeen time.Time
	LastSeen  time.Time
}

// UserInfoText renders u with times in loc.
func UserInfoText(u UserInfo, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	seen := func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return t.In(loc).Format(time.DateTime)
	}

	var b strings.Builder
	b.WriteString("<b>📊 User Information:</b>\n\n")
	fmt.Fprintf(&b, "🆔 <b>ID:</b> <code>%d</code>\n", u.User.ID)
	fmt.Fprintf(&b, "👤 <b>Name:</b> %s\n", html.EscapeString(strings.TrimSpace(u.User.FullName())))
	fmt.Fprintf(&b, "📛 <b>Username:</b> %s\n", handleOr(u.User, "None"))
	fmt.Fprintf(&b, "🤖 <b>Bot:</b> %s\n", yesNo(u.User.IsBot))
	fmt.Fprintf(&b, "⭐ <b>Premium:</b> %s\n", yesNo(u.User.IsPremium))
	fmt.Fprintf(&b, "🏷 <b>Role:</b> %s\n", u.Role.String())
	fmt.Fprintf(&b, "🕓 <b>First seen:</b> %s\n", seen(u.FirstSeen))
	fmt.Fprintf(&b, "🕘 <b>Last seen:</b> %s", seen(u.LastSeen))
	return b.String()
}
