package handlers

import (
	"log/slog"

	"github.com/svnig/filesearchbot/internal/broadcast"
	"github.com/svnig/filesearchbot/internal/config"
	"github.com/svnig/filesearchbot/internal/database"
	"github.com/svnig/filesearchbot/internal/gate"
	"github.com/svnig/filesearchbot/internal/ingest"
	"github.com/svnig/filesearchbot/internal/search"
	"github.com/svnig/filesearchbot/internal/settings"
	"github.com/svnig/filesearchbot/internal/stats"
)

// HandlerDeps provides dependencies for Telegram command, callback, and
// inline handlers.
type HandlerDeps struct {
	Logger     *slog.Logger
	Config     *config.Config
	Store      database.Store
	Settings   *settings.Manager
	Gate       *gate.Gate
	Engine     *search.Engine
	Cursors    *search.Cursors
	Indexer    *ingest.Indexer
	Reindexer  *ingest.Reindexer
	Dispatcher *broadcast.Dispatcher
	Aggregator *stats.Aggregator
}
