package handlers

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/svnig/filesearchbot/internal/search"
)

// NewPageHandler returns a handler for page-navigation callbacks produced by
// search result keyboards. The callback data carries an opaque cursor token;
// unknown or expired tokens are rejected with an alert rather than guessed at.
func NewPageHandler(deps HandlerDeps) bot.HandlerFunc {
	return pageHandler{deps}.Handle
}

// pageHandler processes pg: callbacks using injected dependencies.
type pageHandler struct {
	deps HandlerDeps
}

func (h pageHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "page")

	cq := update.CallbackQuery
	if cq == nil {
		log.WarnContext(ctx, "Page handler received update without callback query", "update_id", update.ID)
		return
	}

	dbCtx, cancel := context.WithTimeout(ctx, h.deps.Config.Bot.DBOperationTimeout)
	defer cancel()

	query, pageNumber, err := h.deps.Cursors.Decode(dbCtx, cq.Data)
	if err != nil {
		if errors.Is(err, search.ErrMalformedAction) {
			answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.InvalidAction, true)
			return
		}
		log.ErrorContext(ctx, "Failed to decode page cursor", "error", err)
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.GeneralError, true)
		return
	}

	page, err := h.deps.Engine.RenderPage(dbCtx, query, pageNumber)
	if err != nil {
		log.ErrorContext(ctx, "Failed to render page", "error", err, "query", query, "page", pageNumber)
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.GeneralError, true)
		return
	}

	// The index may have shrunk since the cursor was issued.
	if len(page.Items) == 0 {
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.NoMoreResults, false)
		return
	}

	chatID := callbackChatID(cq)
	messageID := callbackMessageID(cq)
	if chatID == 0 || messageID == 0 {
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.InvalidAction, true)
		return
	}

	kb, err := h.deps.Cursors.NavigationKeyboard(dbCtx, page)
	if err != nil {
		log.ErrorContext(ctx, "Failed to build navigation keyboard", "error", err, "query", query)
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.GeneralError, true)
		return
	}

	params := &bot.EditMessageTextParams{
		ChatID:             chatID,
		MessageID:          messageID,
		Text:               search.FormatPage(page),
		ParseMode:          models.ParseModeHTML,
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: bot.True()},
	}
	if kb != nil {
		params.ReplyMarkup = kb
	}
	if _, err := b.EditMessageText(ctx, params); err != nil {
		log.WarnContext(ctx, "Failed to edit results message", "error", err, "chat_id", chatID)
	}

	answerCallback(ctx, b, log, cq.ID, "", false)
}
