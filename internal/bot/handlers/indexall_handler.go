package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewIndexAllHandler returns a handler for the /indexall command, which
// re-scans every configured index channel. Useful after adding the bot to a
// channel with existing history, or after a database loss.
func NewIndexAllHandler(deps HandlerDeps) bot.HandlerFunc {
	return indexAllHandler{deps}.Handle
}

// indexAllHandler processes the /indexall command using injected dependencies.
type indexAllHandler struct {
	deps HandlerDeps
}

func (h indexAllHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "indexall")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Indexall handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	channels := h.deps.Config.Telegram.IndexChannelIDs
	if len(channels) == 0 {
		sendText(ctx, b, log, chatID, "No index channels are configured.")
		return
	}

	log.InfoContext(ctx, "Starting full reindex",
		"user_id", update.Message.From.ID, "channels", len(channels))
	sendText(ctx, b, log, chatID, fmt.Sprintf("⏳ Re-indexing %d channel(s). This may take a while…", len(channels)))

	indexed, err := h.deps.Reindexer.Reindex(ctx, channels)
	if err != nil {
		log.ErrorContext(ctx, "Reindex failed", "error", err, "indexed", indexed)
		sendText(ctx, b, log, chatID, fmt.Sprintf("❌ Re-index aborted after %d file(s): %v", indexed, err))
		return
	}

	log.InfoContext(ctx, "Reindex finished", "indexed", indexed)
	sendText(ctx, b, log, chatID, fmt.Sprintf("✅ Re-index complete: %d file(s) indexed.", indexed))
}
