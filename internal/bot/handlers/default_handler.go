package handlers

import (
	"context"
	"fmt"
	"html"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/svnig/filesearchbot/internal/database"
	"github.com/svnig/filesearchbot/internal/ingest"
	"github.com/svnig/filesearchbot/internal/search"
)

// NewDefaultHandler returns the catch-all handler for update kinds that
// cannot be matched by pattern: inline queries from users and new posts in
// the index channels. Everything else is dropped.
func NewDefaultHandler(deps HandlerDeps) bot.HandlerFunc {
	return defaultHandler{deps}.Handle
}

// defaultHandler dispatches unmatched updates using injected dependencies.
type defaultHandler struct {
	deps HandlerDeps
}

func (h defaultHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	switch {
	case update.InlineQuery != nil:
		h.handleInlineQuery(ctx, b, update.InlineQuery)
	case update.ChannelPost != nil:
		h.handleChannelPost(ctx, update.ChannelPost)
	}
}

// handleInlineQuery serves @botname <query> search. Unverified users get an
// empty result set with a verification button leading into the private chat.
func (h defaultHandler) handleInlineQuery(ctx context.Context, b *bot.Bot, iq *models.InlineQuery) {
	log := h.deps.Logger.With("handler", "inline_query")

	decision := h.deps.Gate.Authorize(ctx, iq.From.ID, displayName(iq.From))
	if !decision.Verified {
		log.InfoContext(ctx, "Inline query from unverified user", "user_id", iq.From.ID)
		h.answerInline(ctx, b, iq.ID, nil, &models.InlineQueryResultsButton{
			Text:           "Join required — tap to verify",
			StartParameter: startParamVerify,
		})
		return
	}

	query := iq.Query
	if query == "" {
		h.answerInline(ctx, b, iq.ID, nil, nil)
		return
	}

	dbCtx, cancel := context.WithTimeout(ctx, h.deps.Config.Bot.DBOperationTimeout)
	defer cancel()

	files, err := h.deps.Engine.Search(dbCtx, query, search.InlineLimit)
	if err != nil {
		log.ErrorContext(ctx, "Inline search failed", "error", err, "query", query)
		h.answerInline(ctx, b, iq.ID, nil, nil)
		return
	}

	copyMode := h.deps.Settings.DeliveryMode() == database.DeliveryModeCopy
	results := make([]models.InlineQueryResult, 0, len(files))
	for _, f := range files {
		preview := search.CaptionPreview(&f)
		link := search.MessageLink(f.ChatID, f.MessageID)
		article := &models.InlineQueryResultArticle{
			ID:    strconv.FormatInt(f.ID, 10),
			Title: preview,
		}
		if copyMode {
			// No direct channel link in copy mode; the stub leads into the
			// private chat where the bot copies the file over.
			link = h.deepLink(f.ID)
			article.ReplyMarkup = &models.InlineKeyboardMarkup{
				InlineKeyboard: [][]models.InlineKeyboardButton{{
					{Text: "📥 Get it in DM", URL: link},
				}},
			}
		}
		article.InputMessageContent = &models.InputTextMessageContent{
			MessageText: fmt.Sprintf("📄 <a href=\"%s\">%s</a>", link, html.EscapeString(preview)),
			ParseMode:   models.ParseModeHTML,
		}
		results = append(results, article)
	}

	log.InfoContext(ctx, "Answering inline query", "user_id", iq.From.ID, "query", query, "results", len(results))
	h.answerInline(ctx, b, iq.ID, results, nil)
}

// deepLink builds the t.me start link that makes the bot copy a file into
// the opener's private chat.
func (h defaultHandler) deepLink(fileRowID int64) string {
	return fmt.Sprintf("https://t.me/%s?start=%s%d",
		h.deps.Config.Telegram.BotInfo.Username, startParamGet, fileRowID)
}

func (h defaultHandler) answerInline(ctx context.Context, b *bot.Bot, queryID string, results []models.InlineQueryResult, button *models.InlineQueryResultsButton) {
	_, err := b.AnswerInlineQuery(ctx, &bot.AnswerInlineQueryParams{
		InlineQueryID: queryID,
		Results:       results,
		IsPersonal:    true,
		Button:        button,
	})
	if err != nil {
		h.deps.Logger.WarnContext(ctx, "Failed to answer inline query", "error", err)
	}
}

// handleChannelPost ingests media posted to a configured index channel.
// Posts from other channels and posts without indexable media are ignored.
func (h defaultHandler) handleChannelPost(ctx context.Context, post *models.Message) {
	log := h.deps.Logger.With("handler", "channel_post")

	if !h.deps.Config.IsIndexChannel(post.Chat.ID) {
		return
	}

	media := ingest.FromMessage(post)
	if media == nil {
		log.DebugContext(ctx, "Channel post carries no indexable media",
			"chat_id", post.Chat.ID, "message_id", post.ID)
		return
	}

	dbCtx, cancel := context.WithTimeout(ctx, h.deps.Config.Bot.DBOperationTimeout)
	defer cancel()

	if err := h.deps.Indexer.Ingest(dbCtx, media); err != nil {
		log.ErrorContext(ctx, "Failed to index channel post",
			"error", err, "chat_id", post.Chat.ID, "message_id", post.ID)
		return
	}
	log.InfoContext(ctx, "Indexed channel post",
		"chat_id", post.Chat.ID, "message_id", post.ID, "file_id", media.FileID)
}
