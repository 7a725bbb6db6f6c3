package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default values for optional configuration parameters.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = true

	DefaultDBPath = "storage.db"

	DefaultDBOperationTimeout = 15 * time.Second
	DefaultRequestTimeout     = 30 * time.Second
	DefaultReindexMissWindow  = 50
	DefaultCursorTTL          = 24 * time.Hour
)

// Default user-facing messages.
var DefaultMessages = MessagesConfig{
	Welcome:        "👋 Welcome! Use /search <query> to find files.",
	JoinPrompt:     "🔒 Please join the required channel and group to use this bot.",
	StillNotJoined: "❌ Still not joined. Please join both and try again.",
	Verified:       "✅ You're verified! You may now use the bot.",
	NotOwner:       "❌ Only the bot owner can use this command.",
	ProvideQuery:   "Usage: /search <query>",
	NoResults:      "No results found.",
	NoMoreResults:  "No more results.",
	InvalidAction:  "This action is no longer valid. Please run the search again.",
	NotFound:       "That file is no longer available.",
	GeneralError:   "❌ An error occurred. Please try again later.",
}

// setDefaults registers default values for all optional parameters.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", DefaultLogJSON)

	v.SetDefault("database.path", DefaultDBPath)

	v.SetDefault("bot.db_operation_timeout", DefaultDBOperationTimeout)
	v.SetDefault("bot.request_timeout", DefaultRequestTimeout)
	v.SetDefault("bot.reindex_miss_window", DefaultReindexMissWindow)
	v.SetDefault("bot.cursor_ttl", DefaultCursorTTL)

	v.SetDefault("messages.welcome", DefaultMessages.Welcome)
	v.SetDefault("messages.join_prompt", DefaultMessages.JoinPrompt)
	v.SetDefault("messages.still_not_joined", DefaultMessages.StillNotJoined)
	v.SetDefault("messages.verified", DefaultMessages.Verified)
	v.SetDefault("messages.not_owner", DefaultMessages.NotOwner)
	v.SetDefault("messages.provide_query", DefaultMessages.ProvideQuery)
	v.SetDefault("messages.no_results", DefaultMessages.NoResults)
	v.SetDefault("messages.no_more_results", DefaultMessages.NoMoreResults)
	v.SetDefault("messages.invalid_action", DefaultMessages.InvalidAction)
	v.SetDefault("messages.not_found", DefaultMessages.NotFound)
	v.SetDefault("messages.general_error", DefaultMessages.GeneralError)

	v.SetDefault("scheduler.tasks.cursor_cleanup.enabled", true)
	v.SetDefault("scheduler.tasks.cursor_cleanup.schedule", "0 0 * * * *")
	v.SetDefault("scheduler.tasks.sql_maintenance.enabled", true)
	v.SetDefault("scheduler.tasks.sql_maintenance.schedule", "0 0 4 * * *")
}
