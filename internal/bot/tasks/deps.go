// Package tasks implements scheduled background tasks for the file search
// bot, along with their registration mechanism.
package tasks

import (
	"log/slog"

	"github.com/svnig/filesearchbot/internal/config"
	"github.com/svnig/filesearchbot/internal/database"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Config *config.Config
}
