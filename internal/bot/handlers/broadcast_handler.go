package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewBroadcastHandler returns a handler for the /broadcast command, which
// sends the supplied text to every registered user. Only accepted in the
// owner's private chat.
func NewBroadcastHandler(deps HandlerDeps) bot.HandlerFunc {
	return broadcastHandler{deps}.Handle
}

// broadcastHandler processes the /broadcast command using injected dependencies.
type broadcastHandler struct {
	deps HandlerDeps
}

func (h broadcastHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "broadcast")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Broadcast handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	if update.Message.Chat.Type != models.ChatTypePrivate {
		sendText(ctx, b, log, chatID, "Broadcasts can only be started from a private chat.")
		return
	}

	text := commandArgument(update.Message.Text)
	if text == "" {
		sendText(ctx, b, log, chatID, "Usage: /broadcast <text>")
		return
	}

	log.InfoContext(ctx, "Starting broadcast", "user_id", update.Message.From.ID, "text_len", len(text))

	result, err := h.deps.Dispatcher.Broadcast(ctx, text)
	if err != nil {
		log.ErrorContext(ctx, "Broadcast aborted", "error", err, "sent", result.Sent, "failed", result.Failed)
		sendText(ctx, b, log, chatID,
			fmt.Sprintf("❌ Broadcast aborted: %v (sent %d, failed %d)", err, result.Sent, result.Failed))
		return
	}

	log.InfoContext(ctx, "Broadcast finished", "sent", result.Sent, "failed", result.Failed)
	sendText(ctx, b, log, chatID,
		fmt.Sprintf("📣 Broadcast complete: %d delivered, %d failed.", result.Sent, result.Failed))
}
