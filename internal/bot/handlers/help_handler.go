package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewHelpHandler returns a handler for the /help command.
func NewHelpHandler(deps HandlerDeps) bot.HandlerFunc {
	return helpHandler{deps}.Handle
}

// helpHandler processes the /help command using injected dependencies.
type helpHandler struct {
	deps HandlerDeps
}

func (h helpHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "help")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Help handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	var sb strings.Builder
	sb.WriteString("Available commands:\n\n")
	sb.WriteString("/search <query> — find indexed files by caption\n")
	sb.WriteString("/stats — index and audience statistics\n")
	sb.WriteString("/help — this message\n")
	if h.deps.Config.IsOwner(update.Message.From.ID) {
		sb.WriteString("\nOwner commands:\n")
		sb.WriteString("/settings — delivery mode panel\n")
		sb.WriteString("/admin — delivery mode panel\n")
		sb.WriteString("/indexall — re-scan the index channels\n")
		sb.WriteString("/broadcast <text> — message every known user\n")
	}

	sendText(ctx, b, log, update.Message.Chat.ID, sb.String())
}
