// Package stats computes aggregate counters over the content index and the
// user registry.
package stats

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/svnig/filesearchbot/internal/database"
)

// Stats holds the aggregate counters reported by /stats.
type Stats struct {
	Users      int64
	Files      int64
	TotalBytes int64
}

// Aggregator computes Stats from the store. Total bytes come from the
// file_size column maintained at ingestion time, so no remote per-file
// lookups are needed.
type Aggregator struct {
	store  database.Store
	logger *slog.Logger
}

// NewAggregator creates an Aggregator.
func NewAggregator(store database.Store, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		store:  store,
		logger: logger.With("component", "stats"),
	}
}

// Compute returns the current aggregate counters.
func (a *Aggregator) Compute(ctx context.Context) (*Stats, error) {
	users, err := a.store.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	files, err := a.store.CountFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}

	totalBytes, err := a.store.SumFileSizes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum file sizes: %w", err)
	}

	s := &Stats{Users: users, Files: files, TotalBytes: totalBytes}
	a.logger.DebugContext(ctx, "Stats computed",
		"users", s.Users, "files", s.Files, "total_bytes", s.TotalBytes)
	return s, nil
}

// Format renders stats as an HTML message body.
func Format(s *Stats) string {
	return fmt.Sprintf(
		"📊 <b>Bot Statistics</b>\n\n👥 Total Users: <code>%d</code>\n📁 Total Files: <code>%d</code>\n💾 Storage Used: <code>%s</code>",
		s.Users, s.Files, humanize.Bytes(uint64(s.TotalBytes)))
}
