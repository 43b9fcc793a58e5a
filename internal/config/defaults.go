package config

import "time"

const (
	DefaultLogLevel           = "info"
	DefaultDBPath             = "modbot.db"
	DefaultPollTimeout        = 10 * time.Second
	DefaultRecentLogs         = 5
	DefaultAuditCapacity      = 500
	DefaultTimezone           = "UTC"
	DefaultKnownUserRetention = 180 * 24 * time.Hour
	DefaultMetricsListen      = ""
)

// Task names known to the scheduler.
const (
	TaskRateLimitSweep = "ratelimit_sweep"
	TaskDirectoryPrune = "directory_prune"
	TaskSQLMaintenance = "sql_maintenance"
)

// DefaultTasks enables every periodic task.
var DefaultTasks = map[string]TaskConfig{
	TaskRateLimitSweep: {Enabled: true, Schedule: "0 */5 * * * *"},
	TaskDirectoryPrune: {Enabled: true, Schedule: "0 30 3 * * *"},
	TaskSQLMaintenance: {Enabled: true, Schedule: "0 0 4 * * *"},
}

// DefaultMessages are the stock replies.
var DefaultMessages = MessagesConfig{
	RateLimited:           "⏱️ Please wait before using another command.",
	NotAdmin:              "❌ Only admins can use this command.",
	LogsNotAdmin:          "❌ Only admins can view logs.",
	BotNotAdmin:           "❌ Bot is not an admin in this group or lacks necessary permissions.",
	CannotModerateCreator: "❌ Cannot moderate the group creator.",
	CannotModerateAdmin:   "❌ Cannot moderate admins.",
	CannotModerateSelf:    "❌ Bot cannot moderate itself.",
	NoTarget:              "❌ Please reply to a user or use @username",
	UserNotFound:          "❌ User not found: {subject}",
	NotAUser:              "❌ That's not a user account.",
	NotAMember:            "❌ User is not a member of this group.",
	ActionSuccess:         "✅ {user} has been {action}.",
	RemoveSuccess:         "✅ Successfully removed {user} from the group.",
	PermissionRevoked:     "❌ Bot needs admin privileges with ban/restrict permissions.",
	TargetNotInChat:       "❌ User is not in this group.",
	TargetProtected:       "❌ Cannot moderate this admin.",
	ActionFailed:          "❌ {action} failed: {error}",
	LookupFailed:          "❌ Could not fetch user info: {error}",
	WelcomeUsage: "🔸 Welcome Command Usage:\n\n" +
		"Method 1: /welcome @username\n" +
		"Method 2: Reply to user's message with /welcome",
	GoodbyeUsage: "🔸 Goodbye Command Usage:\n\n" +
		"Method 1: /goodbye @username\n" +
		"Method 2: Reply to user's message with /goodbye\n\n" +
		"⚠️ Warning: This will remove the user from the group!",
	GeneralError: "❌ An error occurred. Please try again later.",
	Help: "🤖 Moderation Bot Commands:\n\n" +
		"Admin Only Commands:\n" +
		"• /ban - Ban user (reply or @username)\n" +
		"• /unban - Unban user\n" +
		"• /mute - Mute user (reply or @username)\n" +
		"• /unmute - Unmute user\n" +
		"• /kick - Kick user (reply or @username)\n" +
		"• /welcome - Send custom welcome (reply or @username)\n" +
		"• /goodbye - Remove user & send goodbye (reply or @username)\n" +
		"• /logs - Show recent moderation actions\n\n" +
		"Public Commands:\n" +
		"• /help - Show this help\n" +
		"• /status - Check bot status\n" +
		"• /uinfo - Get user info (reply or @username)\n\n" +
		"Commands also work as /ban@botname in groups with several bots.",
}
