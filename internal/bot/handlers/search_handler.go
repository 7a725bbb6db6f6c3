package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/svnig/filesearchbot/internal/database"
	"github.com/svnig/filesearchbot/internal/search"
)

// NewSearchHandler returns a handler for the /search command.
func NewSearchHandler(deps HandlerDeps) bot.HandlerFunc {
	return searchHandler{deps}.Handle
}

// searchHandler processes the /search command using injected dependencies.
type searchHandler struct {
	deps HandlerDeps
}

func (h searchHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "search")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Search handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	query := commandArgument(update.Message.Text)
	if query == "" {
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.ProvideQuery)
		return
	}

	log.InfoContext(ctx, "Handling /search command",
		"chat_id", chatID, "user_id", update.Message.From.ID, "query", query)

	dbCtx, cancel := context.WithTimeout(ctx, h.deps.Config.Bot.DBOperationTimeout)
	defer cancel()

	page, err := h.deps.Engine.RenderPage(dbCtx, query, 1)
	if err != nil {
		log.ErrorContext(ctx, "Search failed", "error", err, "query", query)
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.GeneralError)
		return
	}

	if page.TotalMatches == 0 {
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.NoResults)
		return
	}

	if h.deps.Settings.DeliveryMode() == database.DeliveryModeCopy {
		delivered := deliverCopies(ctx, b, log, chatID, page.Items)
		log.InfoContext(ctx, "Delivered search results as copies",
			"chat_id", chatID, "delivered", delivered, "total_matches", page.TotalMatches)
		return
	}

	kb, err := h.deps.Cursors.NavigationKeyboard(dbCtx, page)
	if err != nil {
		log.ErrorContext(ctx, "Failed to build navigation keyboard", "error", err, "query", query)
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.GeneralError)
		return
	}

	params := &bot.SendMessageParams{
		ChatID:             chatID,
		Text:               search.FormatPage(page),
		ParseMode:          models.ParseModeHTML,
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: bot.True()},
	}
	if kb != nil {
		params.ReplyMarkup = kb
	}
	if _, err := b.SendMessage(ctx, params); err != nil {
		log.ErrorContext(ctx, "Failed to send search results", "error", err, "chat_id", chatID)
	}
}
