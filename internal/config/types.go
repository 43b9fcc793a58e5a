// Package config loads the bot configuration from defaults, an optional YAML
// file, a .env file and the environment.
package config

import (
	"errors"
	"time"

	"github.com/go-telegram/bot/models"
)

// ErrConfiguration wraps every load or validation failure.
var ErrConfiguration = errors.New("configuration error")

// Config is the root configuration.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Moderation ModerationConfig `mapstructure:"moderation"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Messages   MessagesConfig   `mapstructure:"messages"`
}

// LoggerConfig selects the log level and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds platform credentials and polling settings.
type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`
	// APIID and APIHash identify an MTProto application. The Bot API
	// transport does not need them; they are accepted for deployments that
	// share one environment with other clients.
	APIID       string        `mapstructure:"api_id"       validate:"omitempty,numeric"`
	APIHash     string        `mapstructure:"api_hash"     validate:"omitempty,hexadecimal"`
	PollTimeout time.Duration `mapstructure:"poll_timeout" validate:"min=0,max=5m"`

	// BotInfo is filled from getMe at startup.
	BotInfo *models.User `mapstructure:"-" validate:"-"`
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// ModerationConfig tunes the audit trail.
type ModerationConfig struct {
	RecentLogs    int    `mapstructure:"recent_logs"    validate:"min=1,max=50"`
	AuditCapacity int    `mapstructure:"audit_capacity" validate:"min=1,max=100000"`
	Timezone      string `mapstructure:"timezone"       validate:"required"`
	// KnownUserRetention is how long unseen users stay in the directory.
	KnownUserRetention time.Duration `mapstructure:"known_user_retention" validate:"min=1h"`
}

// SchedulerConfig lists the periodic tasks.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig enables a task and sets its cron schedule.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// MetricsConfig sets the Prometheus listener. An empty address disables it.
type MetricsConfig struct {
	Listen string `mapstructure:"listen" validate:"omitempty,hostname_port"`
}

// MessagesConfig holds every reply posted by the bot. Placeholders in braces
// are substituted by the handlers.
type MessagesConfig struct {
	RateLimited           string `mapstructure:"rate_limited"            validate:"required"`
	NotAdmin              string `mapstructure:"not_admin"               validate:"required"`
	LogsNotAdmin          string `mapstructure:"logs_not_admin"          validate:"required"`
	BotNotAdmin           string `mapstructure:"bot_not_admin"           validate:"required"`
	CannotModerateCreator string `mapstructure:"cannot_moderate_creator" validate:"required"`
	CannotModerateAdmin   string `mapstructure:"cannot_moderate_admin"   validate:"required"`
	CannotModerateSelf    string `mapstructure:"cannot_moderate_self"    validate:"required"`
	NoTarget              string `mapstructure:"no_target"               validate:"required"`
	UserNotFound          string `mapstructure:"user_not_found"          validate:"required"`
	NotAUser              string `mapstructure:"not_a_user"              validate:"required"`
	NotAMember            string `mapstructure:"not_a_member"            validate:"required"`
	ActionSuccess         string `mapstructure:"action_success"          validate:"required"`
	RemoveSuccess         string `mapstructure:"remove_success"          validate:"required"`
	PermissionRevoked     string `mapstructure:"permission_revoked"      validate:"required"`
	TargetNotInChat       string `mapstructure:"target_not_in_chat"      validate:"required"`
	TargetProtected       string `mapstructure:"target_protected"        validate:"required"`
	ActionFailed          string `mapstructure:"action_failed"           validate:"required"`
	LookupFailed          string `mapstructure:"lookup_failed"           validate:"required"`
	WelcomeUsage          string `mapstructure:"welcome_usage"           validate:"required"`
	GoodbyeUsage          string `mapstructure:"goodbye_usage"           validate:"required"`
	GeneralError          string `mapstructure:"general_error"           validate:"required"`
	Help                  string `mapstructure:"help"                    validate:"required"`
}
