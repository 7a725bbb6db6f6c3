package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/svnig/filesearchbot/internal/database"
)

// Deep-link payload prefixes accepted by /start.
const (
	startParamGet    = "get_"
	startParamVerify = "verify"
)

// NewStartHandler returns a handler for the /start command. A bare /start
// sends the welcome message; deep-link payloads either deliver a single
// indexed file (get_<id>) or confirm membership verification (verify).
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return startHandler{deps}.Handle
}

// startHandler processes the /start command using injected dependencies.
type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Start handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	param := commandArgument(update.Message.Text)
	log.InfoContext(ctx, "Handling /start command", "chat_id", chatID, "user_id", update.Message.From.ID, "param", param)

	switch {
	case param == startParamVerify:
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.Verified)

	case strings.HasPrefix(param, startParamGet):
		h.deliverFile(ctx, b, chatID, strings.TrimPrefix(param, startParamGet))

	default:
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.Welcome)
	}
}

// deliverFile copies the indexed file identified by a get_ deep link into the
// user's chat.
func (h startHandler) deliverFile(ctx context.Context, b *bot.Bot, chatID int64, rawID string) {
	log := h.deps.Logger.With("handler", "start")

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		log.WarnContext(ctx, "Malformed deep-link file id", "raw_id", rawID, "chat_id", chatID)
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.NotFound)
		return
	}

	dbCtx, cancel := context.WithTimeout(ctx, h.deps.Config.Bot.DBOperationTimeout)
	file, err := h.deps.Store.GetFileByID(dbCtx, id)
	cancel()
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			sendText(ctx, b, log, chatID, h.deps.Config.Messages.NotFound)
			return
		}
		log.ErrorContext(ctx, "Failed to look up deep-linked file", "error", err, "file_row_id", id)
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.GeneralError)
		return
	}

	_, err = b.CopyMessage(ctx, &bot.CopyMessageParams{
		ChatID:     chatID,
		FromChatID: file.ChatID,
		MessageID:  file.MessageID,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to copy deep-linked file", "error", err, "file_row_id", id, "chat_id", chatID)
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.NotFound)
	}
}
