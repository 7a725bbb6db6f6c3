// Package config provides configuration loading, validation, and management
// for the file search bot. It handles reading from YAML files and BOT_*
// environment variables, setting default values, and validating parameters.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-telegram/bot/models"
	"github.com/spf13/viper"
)

// Config defines the application configuration parameters for all components
// of the bot, including logging, Telegram settings, database configuration,
// operation timeouts, user-facing messages, and scheduled tasks.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Bot       BotConfig       `mapstructure:"bot"`
	Messages  MessagesConfig  `mapstructure:"messages"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LoggerConfig controls log level and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot token and the chat identifiers the bot
// operates on. ForceChannelID and ForceGroupID are the two memberships
// required before any feature is usable. IndexChannelIDs lists the source
// channels whose media is indexed.
type TelegramConfig struct {
	Token           string  `mapstructure:"token"             validate:"required"`
	OwnerID         int64   `mapstructure:"owner_id"          validate:"required,gt=0"`
	ForceChannelID  int64   `mapstructure:"force_channel_id"  validate:"required"`
	ForceGroupID    int64   `mapstructure:"force_group_id"    validate:"required"`
	LogChannelID    int64   `mapstructure:"log_channel_id"`
	IndexChannelIDs []int64 `mapstructure:"index_channel_ids" validate:"min=1"`

	// BotInfo is populated at startup from getMe and is not read from the
	// config file.
	BotInfo *models.User `mapstructure:"-"`
}

// DatabaseConfig holds SQLite connection settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// BotConfig holds operational tunables for request handling.
type BotConfig struct {
	DBOperationTimeout time.Duration `mapstructure:"db_operation_timeout" validate:"min=1s,max=5m"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"      validate:"min=1s,max=5m"`

	// ReindexMissWindow is the number of consecutive missing message ids
	// after which a bulk reindex considers a channel's history exhausted.
	ReindexMissWindow int `mapstructure:"reindex_miss_window" validate:"min=1,max=1000"`

	// CursorTTL is how long a pagination cursor stays valid before the
	// cleanup task prunes it.
	CursorTTL time.Duration `mapstructure:"cursor_ttl" validate:"min=1m"`
}

// MessagesConfig holds all user-facing message templates.
type MessagesConfig struct {
	Welcome        string `mapstructure:"welcome"`
	JoinPrompt     string `mapstructure:"join_prompt"`
	StillNotJoined string `mapstructure:"still_not_joined"`
	Verified       string `mapstructure:"verified"`
	NotOwner       string `mapstructure:"not_owner"`
	ProvideQuery   string `mapstructure:"provide_query"`
	NoResults      string `mapstructure:"no_results"`
	NoMoreResults  string `mapstructure:"no_more_results"`
	InvalidAction  string `mapstructure:"invalid_action"`
	NotFound       string `mapstructure:"not_found"`
	GeneralError   string `mapstructure:"general_error"`
}

// SchedulerConfig configures the background task scheduler.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables a named scheduled task and sets its cron schedule.
// Schedules use the six-field cron format with a leading seconds field.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// LoadConfig loads and validates configuration from, in order of precedence:
// BOT_* environment variables, the YAML file at path, and built-in defaults.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing config file is allowed; everything can come from the
	// environment.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// IsOwner reports whether userID is the configured bot owner. Owner-only
// operations (settings, admin panel, reindex, broadcast) use this check.
func (c *Config) IsOwner(userID int64) bool {
	return userID == c.Telegram.OwnerID
}

// IsIndexChannel reports whether chatID is one of the configured source
// channels whose media should be indexed.
func (c *Config) IsIndexChannel(chatID int64) bool {
	for _, id := range c.Telegram.IndexChannelIDs {
		if id == chatID {
			return true
		}
	}
	return false
}
