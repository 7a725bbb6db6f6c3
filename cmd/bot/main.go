// Package main contains the entrypoint for the Telegram bot application.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/svnig/filesearchbot/internal/bot"
	"github.com/svnig/filesearchbot/internal/bot/handlers"
	"github.com/svnig/filesearchbot/internal/bot/tasks"
	"github.com/svnig/filesearchbot/internal/broadcast"
	"github.com/svnig/filesearchbot/internal/config"
	"github.com/svnig/filesearchbot/internal/database"
	"github.com/svnig/filesearchbot/internal/gate"
	"github.com/svnig/filesearchbot/internal/ingest"
	"github.com/svnig/filesearchbot/internal/logger"
	"github.com/svnig/filesearchbot/internal/search"
	"github.com/svnig/filesearchbot/internal/settings"
	"github.com/svnig/filesearchbot/internal/stats"
	"github.com/svnig/filesearchbot/internal/telegram"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger, db,
// telegram client, bot, scheduler), handles graceful shutdown, and returns an
// exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	// Retrieve bot info and store it in the config for runtime use
	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	client := telegram.NewClient(tg, log, cfg.Telegram.LogChannelID, cfg.Bot.RequestTimeout)

	settingsMgr, err := settings.NewManager(ctx, store, log)
	if err != nil {
		log.Error("Failed to load persisted settings", "error", err)
		return 1
	}

	indexer := ingest.NewIndexer(store, log)

	hDeps := handlers.HandlerDeps{
		Logger:     log,
		Config:     cfg,
		Store:      store,
		Settings:   settingsMgr,
		Gate:       gate.New(client, store, log, cfg.Telegram.ForceChannelID, cfg.Telegram.ForceGroupID, cfg.Telegram.LogChannelID),
		Engine:     search.NewEngine(store, log),
		Cursors:    search.NewCursors(store, log),
		Indexer:    indexer,
		Reindexer:  ingest.NewReindexer(indexer, client, log, cfg.Bot.ReindexMissWindow),
		Dispatcher: broadcast.NewDispatcher(store, client, log),
		Aggregator: stats.NewAggregator(store, log),
	}
	tDeps := tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Config: cfg,
	}

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	// Inline queries and channel posts have no pattern to match on, so they
	// go through a match-func registration instead of the command registry.
	tg.RegisterHandlerMatchFunc(func(update *models.Update) bool {
		return update.InlineQuery != nil || update.ChannelPost != nil
	}, handlers.NewDefaultHandler(hDeps))

	if _, err := tg.SetMyCommands(ctx, &tgbot.SetMyCommandsParams{
		Commands: []models.BotCommand{
			{Command: "search", Description: "Find indexed files by caption"},
			{Command: "stats", Description: "Index and audience statistics"},
			{Command: "help", Description: "List available commands"},
		},
	}); err != nil {
		log.Warn("Failed to set bot command list", "error", err)
	}

	sched := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	app := bot.NewBot(log, cfg, db, store, tg, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
