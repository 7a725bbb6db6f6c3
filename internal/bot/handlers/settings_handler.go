package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/svnig/filesearchbot/internal/database"
)

// NewSettingsHandler returns a handler for the /settings command, which opens
// the owner configuration panel.
func NewSettingsHandler(deps HandlerDeps) bot.HandlerFunc {
	return settingsHandler{deps}.Handle
}

// NewAdminHandler returns a handler for the /admin command. It opens the same
// configuration panel as /settings.
func NewAdminHandler(deps HandlerDeps) bot.HandlerFunc {
	return settingsHandler{deps}.Handle
}

// settingsHandler renders the owner configuration panel.
type settingsHandler struct {
	deps HandlerDeps
}

func (h settingsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "settings")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Settings handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Opening configuration panel", "chat_id", chatID, "user_id", update.Message.From.ID)

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        panelText(h.deps.Settings.DeliveryMode()),
		ReplyMarkup: panelKeyboard(),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send configuration panel", "error", err, "chat_id", chatID)
	}
}

// panelText renders the configuration panel body for the given delivery mode.
func panelText(mode string) string {
	desc := "search results are sent as message links"
	if mode == database.DeliveryModeCopy {
		desc = "search results are copied into the chat"
	}
	return fmt.Sprintf("⚙️ Bot settings\n\nDelivery mode: %s (%s)", mode, desc)
}

// panelKeyboard builds the configuration panel controls.
func panelKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{{
			{Text: "🔁 Toggle delivery mode", CallbackData: callbackToggleMode},
			{Text: "♻️ Reload", CallbackData: callbackReload},
		}},
	}
}
