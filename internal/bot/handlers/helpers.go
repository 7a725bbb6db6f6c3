package handlers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/svnig/filesearchbot/internal/database"
)

// displayName builds the name stored in the user registry.
func displayName(u *models.User) string {
	if u == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

// commandArgument returns the text following a /command, with surrounding
// whitespace trimmed. An empty string means the command was sent bare.
func commandArgument(text string) string {
	_, rest, _ := strings.Cut(text, " ")
	return strings.TrimSpace(rest)
}

// sendText sends a plain text message, logging failures.
func sendText(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
	}
}

// callbackChatID extracts the chat id a callback query originated from.
// The message may be inaccessible to the bot; both cases carry the chat.
func callbackChatID(cq *models.CallbackQuery) int64 {
	if cq.Message.Message != nil {
		return cq.Message.Message.Chat.ID
	}
	if cq.Message.InaccessibleMessage != nil {
		return cq.Message.InaccessibleMessage.Chat.ID
	}
	return 0
}

// callbackMessageID extracts the message id a callback query is attached to,
// or 0 when the message is inaccessible and cannot be edited.
func callbackMessageID(cq *models.CallbackQuery) int {
	if cq.Message.Message != nil {
		return cq.Message.Message.ID
	}
	return 0
}

// answerCallback acknowledges a callback query, optionally with an alert.
// Failures are logged and swallowed; an unanswered callback only leaves the
// client spinner running.
func answerCallback(ctx context.Context, b *bot.Bot, log *slog.Logger, callbackID, text string, alert bool) {
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       alert,
	})
	if err != nil {
		log.WarnContext(ctx, "Failed to answer callback query", "error", err)
	}
}

// deliverCopies re-delivers each file's original message to chatID via
// copyMessage. Individual failures are logged and skipped; the count of
// successful deliveries is returned.
func deliverCopies(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, items []database.File) int {
	delivered := 0
	for _, item := range items {
		_, err := b.CopyMessage(ctx, &bot.CopyMessageParams{
			ChatID:     chatID,
			FromChatID: item.ChatID,
			MessageID:  item.MessageID,
		})
		if err != nil {
			log.WarnContext(ctx, "Failed to copy file to requester",
				"file_id", item.FileID, "chat_id", item.ChatID, "message_id", item.MessageID, "error", err)
			continue
		}
		delivered++
	}
	return delivered
}
