package settings_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/svnig/filesearchbot/internal/database"
	"github.com/svnig/filesearchbot/internal/settings"

	_ "modernc.org/sqlite"
)

func newTestStore(t *testing.T) database.Store {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })

	return database.NewStore(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestManagerLoadsSeededMode(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mgr, err := settings.NewManager(ctx, newTestStore(t), nil)
	if err != nil {
		t.Fatalf("manager init failed: %v", err)
	}

	if mode := mgr.DeliveryMode(); mode != database.DeliveryModeLink {
		t.Errorf("expected seeded mode %q, got %q", database.DeliveryModeLink, mode)
	}
}

func TestToggleDeliveryModePersistsAndAdopts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	mgr, err := settings.NewManager(ctx, store, nil)
	if err != nil {
		t.Fatalf("manager init failed: %v", err)
	}

	mode, err := mgr.ToggleDeliveryMode(ctx)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if mode != database.DeliveryModeCopy {
		t.Errorf("expected %q from toggle, got %q", database.DeliveryModeCopy, mode)
	}
	if got := mgr.DeliveryMode(); got != database.DeliveryModeCopy {
		t.Errorf("in-memory mode not adopted: got %q", got)
	}

	// The persisted row must agree with the in-memory copy.
	persisted, err := store.GetSettings(ctx)
	if err != nil {
		t.Fatalf("get settings failed: %v", err)
	}
	if persisted.DeliveryMode != database.DeliveryModeCopy {
		t.Errorf("persisted mode %q does not match toggled mode", persisted.DeliveryMode)
	}
}

func TestReloadPicksUpExternalChange(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	mgr, err := settings.NewManager(ctx, store, nil)
	if err != nil {
		t.Fatalf("manager init failed: %v", err)
	}

	// Flip the mode behind the manager's back.
	if _, err := store.ToggleDeliveryMode(ctx); err != nil {
		t.Fatalf("external toggle failed: %v", err)
	}
	if mode := mgr.DeliveryMode(); mode != database.DeliveryModeLink {
		t.Fatalf("expected stale in-memory mode before reload, got %q", mode)
	}

	if err := mgr.Reload(ctx); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if mode := mgr.DeliveryMode(); mode != database.DeliveryModeCopy {
		t.Errorf("expected %q after reload, got %q", database.DeliveryModeCopy, mode)
	}
}
