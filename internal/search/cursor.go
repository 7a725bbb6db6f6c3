package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/svnig/filesearchbot/internal/database"
)

// CallbackPagePrefix marks page-navigation callback data. The remainder of
// the data is a cursor token.
const CallbackPagePrefix = "pg:"

// ErrMalformedAction is returned when callback data does not decode to a
// known cursor, either because it is not a cursor token at all or because the
// cursor has been pruned.
var ErrMalformedAction = errors.New("malformed or expired action token")

// Cursors encodes (query, page) pairs into opaque callback tokens and back.
// The pair is stored server-side keyed by a random token, so the query text
// never travels inside callback data: no delimiter can collide with it and
// Telegram's 64-byte callback data limit cannot truncate it.
type Cursors struct {
	store  database.Store
	logger *slog.Logger
}

// NewCursors creates a cursor codec over the given store.
func NewCursors(store database.Store, logger *slog.Logger) *Cursors {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cursors{
		store:  store,
		logger: logger.With("component", "cursors"),
	}
}

// Encode stores a cursor for (query, page) and returns the callback data
// carrying its token.
func (c *Cursors) Encode(ctx context.Context, query string, page int) (string, error) {
	token, err := c.store.CreateCursor(ctx, query, page)
	if err != nil {
		return "", fmt.Errorf("failed to encode page cursor: %w", err)
	}
	return CallbackPagePrefix + token, nil
}

// Decode resolves callback data produced by Encode back into its query and
// page. Unknown tokens and foreign data yield ErrMalformedAction.
func (c *Cursors) Decode(ctx context.Context, data string) (query string, page int, err error) {
	token, ok := strings.CutPrefix(data, CallbackPagePrefix)
	if !ok || token == "" {
		return "", 0, ErrMalformedAction
	}

	cursor, err := c.store.GetCursor(ctx, token)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.logger.DebugContext(ctx, "Unknown cursor token", "token", token)
			return "", 0, ErrMalformedAction
		}
		return "", 0, fmt.Errorf("failed to decode page cursor: %w", err)
	}

	return cursor.Query, cursor.Page, nil
}

// NavigationKeyboard builds the Prev/Next control row for a page: Prev only
// when a previous page exists, Next only when a further page exists, and nil
// when neither applies so no control row is rendered at all.
func (c *Cursors) NavigationKeyboard(ctx context.Context, p *Page) (*models.InlineKeyboardMarkup, error) {
	var row []models.InlineKeyboardButton

	if p.Number > 1 {
		data, err := c.Encode(ctx, p.Query, p.Number-1)
		if err != nil {
			return nil, err
		}
		row = append(row, models.InlineKeyboardButton{Text: "⏪ Prev", CallbackData: data})
	}

	if p.Number < p.TotalPages {
		data, err := c.Encode(ctx, p.Query, p.Number+1)
		if err != nil {
			return nil, err
		}
		row = append(row, models.InlineKeyboardButton{Text: "Next ⏩", CallbackData: data})
	}

	if len(row) == 0 {
		return nil, nil
	}

	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{row},
	}, nil
}
