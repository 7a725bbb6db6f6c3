// Package ingest records media discovered in source channels into the
// content index. It serves both ingestion entry points: the live hook fired
// on every new channel post, and the owner-triggered bulk reindex that walks
// a channel's full history. Both paths converge on the same idempotent upsert
// and are safe to run concurrently and to re-apply.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/svnig/filesearchbot/internal/database"
)

// ErrMessageMissing is returned by a MessageSource when the requested message id
// does not exist in the channel (deleted, or beyond the last message).
var ErrMessageMissing = errors.New("message does not exist")

// Media describes one media-bearing channel message.
type Media struct {
	FileID    string
	Caption   string
	ChatID    int64
	MessageID int
	FileSize  int64
}

// MessageSource fetches a single channel message for history walking. The
// Bot API has no direct history access, so implementations typically inspect
// a forwarded copy of the message. A message that exists but carries no
// media yields (nil, nil).
type MessageSource interface {
	FetchMessage(ctx context.Context, chatID int64, messageID int) (*Media, error)
}

// Indexer upserts discovered media into the content index.
type Indexer struct {
	store  database.Store
	logger *slog.Logger
}

// NewIndexer creates an Indexer over the given store.
func NewIndexer(store database.Store, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{
		store:  store,
		logger: logger.With("component", "indexer"),
	}
}

// Ingest records one piece of media. Re-ingesting a known file id overwrites
// its caption and location; it never duplicates.
func (ix *Indexer) Ingest(ctx context.Context, m *Media) error {
	if m == nil || m.FileID == "" {
		return fmt.Errorf("cannot ingest empty media")
	}

	err := ix.store.UpsertFile(ctx, &database.File{
		FileID:    m.FileID,
		Caption:   m.Caption,
		ChatID:    m.ChatID,
		MessageID: m.MessageID,
		FileSize:  m.FileSize,
	})
	if err != nil {
		return fmt.Errorf("failed to index media: %w", err)
	}

	ix.logger.DebugContext(ctx, "Media indexed",
		"file_id", m.FileID, "chat_id", m.ChatID, "message_id", m.MessageID)
	return nil
}

// Reindexer walks the full history of source channels and upserts every
// media-bearing message found.
type Reindexer struct {
	indexer    *Indexer
	source     MessageSource
	logger     *slog.Logger
	missWindow int
}

// NewReindexer creates a Reindexer. missWindow is the number of consecutive
// missing message ids after which a channel's history is considered
// exhausted.
func NewReindexer(indexer *Indexer, source MessageSource, logger *slog.Logger, missWindow int) *Reindexer {
	if logger == nil {
		logger = slog.Default()
	}
	if missWindow < 1 {
		missWindow = 1
	}
	return &Reindexer{
		indexer:    indexer,
		source:     source,
		logger:     logger.With("component", "reindexer"),
		missWindow: missWindow,
	}
}

// Reindex walks every channel in chatIDs and returns the total number of
// media messages indexed. Individual fetch failures are skipped; the walk of
// a channel ends after missWindow consecutive misses. The context cancels
// the whole run, returning the count indexed so far alongside ctx.Err().
func (r *Reindexer) Reindex(ctx context.Context, chatIDs []int64) (int64, error) {
	var total int64

	for _, chatID := range chatIDs {
		indexed, err := r.reindexChannel(ctx, chatID)
		total += indexed
		if err != nil {
			return total, err
		}
	}

	r.logger.InfoContext(ctx, "Reindex completed", "channels", len(chatIDs), "indexed", total)
	return total, nil
}

func (r *Reindexer) reindexChannel(ctx context.Context, chatID int64) (int64, error) {
	log := r.logger.With("chat_id", chatID)
	log.InfoContext(ctx, "Reindexing channel history")

	var indexed int64
	misses := 0

	for messageID := 1; misses < r.missWindow; messageID++ {
		if err := ctx.Err(); err != nil {
			log.WarnContext(ctx, "Reindex cancelled", "indexed", indexed, "last_message_id", messageID-1)
			return indexed, err
		}

		media, err := r.source.FetchMessage(ctx, chatID, messageID)
		if err != nil {
			if !errors.Is(err, ErrMessageMissing) {
				log.DebugContext(ctx, "Skipping unreadable message", "message_id", messageID, "error", err)
			}
			misses++
			continue
		}
		misses = 0

		if media == nil {
			continue
		}

		if err := r.indexer.Ingest(ctx, media); err != nil {
			log.WarnContext(ctx, "Failed to index message during reindex",
				"message_id", messageID, "error", err)
			continue
		}
		indexed++
	}

	log.InfoContext(ctx, "Channel history walk finished", "indexed", indexed)
	return indexed, nil
}
