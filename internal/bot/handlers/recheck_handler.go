package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewRecheckHandler returns a handler for the membership re-check callback
// attached to join prompts. Membership is verified fresh against Telegram on
// every press; on success the prompt is replaced with a confirmation.
func NewRecheckHandler(deps HandlerDeps) bot.HandlerFunc {
	return recheckHandler{deps}.Handle
}

// recheckHandler processes the recheck callback using injected dependencies.
type recheckHandler struct {
	deps HandlerDeps
}

func (h recheckHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "recheck")

	cq := update.CallbackQuery
	if cq == nil {
		log.WarnContext(ctx, "Recheck handler received update without callback query", "update_id", update.ID)
		return
	}

	from := cq.From
	decision := h.deps.Gate.Authorize(ctx, from.ID, displayName(&from))
	if !decision.Verified {
		log.InfoContext(ctx, "Membership re-check failed", "user_id", from.ID)
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.StillNotJoined, true)
		return
	}

	log.InfoContext(ctx, "Membership re-check passed", "user_id", from.ID)

	chatID := callbackChatID(cq)
	messageID := callbackMessageID(cq)
	if chatID != 0 && messageID != 0 {
		_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:    chatID,
			MessageID: messageID,
			Text:      h.deps.Config.Messages.Verified,
		})
		if err != nil {
			log.WarnContext(ctx, "Failed to replace join prompt", "error", err, "chat_id", chatID)
		}
	}

	answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.Verified, false)
}
