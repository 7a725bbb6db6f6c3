package tasks

import (
	"context"
	"fmt"
	"time"
)

// newCursorCleanupTask creates the scheduled task that prunes expired page
// cursors. Pagination buttons referencing a pruned cursor answer with the
// invalid-action alert instead of a page.
func newCursorCleanupTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "cursor_cleanup")

	return func(ctx context.Context) error {
		cutoff := time.Now().UTC().Add(-deps.Config.Bot.CursorTTL)

		pruned, err := deps.Store.DeleteCursorsBefore(ctx, cutoff)
		if err != nil {
			log.ErrorContext(ctx, "Cursor cleanup failed", "error", err)
			return fmt.Errorf("cursor cleanup failed: %w", err)
		}

		log.InfoContext(ctx, "Cursor cleanup completed", "pruned", pruned, "cutoff", cutoff)
		return nil
	}
}
