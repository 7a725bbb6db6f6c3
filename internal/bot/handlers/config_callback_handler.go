package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewConfigCallbackHandler returns a handler for configuration panel
// callbacks. Toggle flips the delivery mode; reload re-reads persisted
// settings into memory. Either way the panel message is redrawn to show the
// mode now in effect.
func NewConfigCallbackHandler(deps HandlerDeps) bot.HandlerFunc {
	return configCallbackHandler{deps}.Handle
}

// configCallbackHandler processes cfg: callbacks using injected dependencies.
type configCallbackHandler struct {
	deps HandlerDeps
}

func (h configCallbackHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "config_callback")

	cq := update.CallbackQuery
	if cq == nil {
		log.WarnContext(ctx, "Config callback handler received update without callback query", "update_id", update.ID)
		return
	}

	dbCtx, cancel := context.WithTimeout(ctx, h.deps.Config.Bot.DBOperationTimeout)
	defer cancel()

	var ack string
	switch cq.Data {
	case callbackToggleMode:
		mode, err := h.deps.Settings.ToggleDeliveryMode(dbCtx)
		if err != nil {
			log.ErrorContext(ctx, "Failed to toggle delivery mode", "error", err)
			answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.GeneralError, true)
			return
		}
		log.InfoContext(ctx, "Delivery mode toggled", "mode", mode, "user_id", cq.From.ID)
		ack = "Delivery mode: " + mode

	case callbackReload:
		if err := h.deps.Settings.Reload(dbCtx); err != nil {
			log.ErrorContext(ctx, "Failed to reload settings", "error", err)
			answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.GeneralError, true)
			return
		}
		log.InfoContext(ctx, "Settings reloaded", "user_id", cq.From.ID)
		ack = "Settings reloaded"

	default:
		log.WarnContext(ctx, "Unknown config callback", "data", cq.Data)
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.InvalidAction, true)
		return
	}

	chatID := callbackChatID(cq)
	messageID := callbackMessageID(cq)
	if chatID != 0 && messageID != 0 {
		_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:      chatID,
			MessageID:   messageID,
			Text:        panelText(h.deps.Settings.DeliveryMode()),
			ReplyMarkup: panelKeyboard(),
		})
		if err != nil {
			log.WarnContext(ctx, "Failed to redraw configuration panel", "error", err, "chat_id", chatID)
		}
	}

	answerCallback(ctx, b, log, cq.ID, ack, false)
}
