package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. MODBOT_LOGGER_LEVEL.
const EnvPrefix = "MODBOT"

// Load builds the configuration in increasing precedence: defaults, the YAML
// file at path (optional), then the environment. A .env file in the working
// directory is loaded into the environment first when present.
func Load(path string) (*Config, error) {
	return load(path, ".env")
}

func load(path, dotenv string) (*Config, error) {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: failed to load %s: %v", ErrConfiguration, dotenv, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Credentials keep their conventional unprefixed names.
	_ = v.BindEnv("telegram.token", "BOT_TOKEN", EnvPrefix+"_TELEGRAM_TOKEN")
	_ = v.BindEnv("telegram.api_id", "API_ID", EnvPrefix+"_TELEGRAM_API_ID")
	_ = v.BindEnv("telegram.api_hash", "API_HASH", EnvPrefix+"_TELEGRAM_API_HASH")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: failed to read config file %s: %v", ErrConfiguration, path, err)
			}
			slog.Debug("Config file not found, using defaults and environment", "path", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", false)

	v.SetDefault("telegram.poll_timeout", DefaultPollTimeout)

	v.SetDefault("database.path", DefaultDBPath)

	v.SetDefault("moderation.recent_logs", DefaultRecentLogs)
	v.SetDefault("moderation.audit_capacity", DefaultAuditCapacity)
	v.SetDefault("moderation.timezone", DefaultTimezone)
	v.SetDefault("moderation.known_user_retention", DefaultKnownUserRetention)

	for name, task := range DefaultTasks {
		v.SetDefault("scheduler.tasks."+name+".enabled", task.Enabled)
		v.SetDefault("scheduler.tasks."+name+".schedule", task.Schedule)
	}

	v.SetDefault("metrics.listen", DefaultMetricsListen)

	m := DefaultMessages
	for key, val := range map[string]string{
		"rate_limited":            m.RateLimited,
		"not_admin":               m.NotAdmin,
		"logs_not_admin":          m.LogsNotAdmin,
		"bot_not_admin":           m.BotNotAdmin,
		"cannot_moderate_creator": m.CannotModerateCreator,
		"cannot_moderate_admin":   m.CannotModerateAdmin,
		"cannot_moderate_self":    m.CannotModerateSelf,
		"no_target":               m.NoTarget,
		"user_not_found":          m.UserNotFound,
		"not_a_user":              m.NotAUser,
		"not_a_member":            m.NotAMember,
		"action_success":          m.ActionSuccess,
		"remove_success":          m.RemoveSuccess,
		"permission_revoked":      m.PermissionRevoked,
		"target_not_in_chat":      m.TargetNotInChat,
		"target_protected":        m.TargetProtected,
		"action_failed":           m.ActionFailed,
		"lookup_failed":           m.LookupFailed,
		"welcome_usage":           m.WelcomeUsage,
		"goodbye_usage":           m.GoodbyeUsage,
		"general_error":           m.GeneralError,
		"help":                    m.Help,
	} {
		v.SetDefault("messages."+key, val)
	}
}
