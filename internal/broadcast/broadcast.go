// Package broadcast implements best-effort fan-out of an operator message to
// every known user.
package broadcast

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/svnig/filesearchbot/internal/database"
)

// Sender delivers a text message to a single chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Result reports the outcome of a broadcast run.
type Result struct {
	Sent   int
	Failed int
}

// Dispatcher fans an operator message out to all known users. Individual
// delivery failures are counted and skipped; the run never aborts early
// except on context cancellation.
type Dispatcher struct {
	store  database.Store
	sender Sender
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(store database.Store, sender Sender, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		store:  store,
		sender: sender,
		logger: logger.With("component", "broadcast"),
	}
}

// Broadcast attempts to deliver text to every known user and returns the
// independent success and failure counts. There is no retry of failed
// deliveries.
func (d *Dispatcher) Broadcast(ctx context.Context, text string) (Result, error) {
	userIDs, err := d.store.ListUserIDs(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list broadcast recipients: %w", err)
	}

	var result Result
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			d.logger.WarnContext(ctx, "Broadcast cancelled",
				"sent", result.Sent, "failed", result.Failed)
			return result, err
		}

		if err := d.sender.SendMessage(ctx, userID, text); err != nil {
			d.logger.DebugContext(ctx, "Broadcast delivery failed", "user_id", userID, "error", err)
			result.Failed++
			continue
		}
		result.Sent++
	}

	d.logger.InfoContext(ctx, "Broadcast completed",
		"recipients", len(userIDs), "sent", result.Sent, "failed", result.Failed)
	return result, nil
}
