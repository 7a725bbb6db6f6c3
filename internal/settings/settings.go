// Package settings manages the runtime-mutable bot configuration persisted
// in the database. Unlike the boot-time configuration in internal/config,
// values here can be changed by the owner while the bot is running.
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/svnig/filesearchbot/internal/database"
)

// Manager holds the in-memory copy of the persisted settings row and keeps it
// consistent with the database. Mutations go through a single atomic database
// statement and update the in-memory copy under the same lock, so the two can
// never diverge mid-operation.
type Manager struct {
	store  database.Store
	logger *slog.Logger

	mu   sync.RWMutex
	mode string
}

// NewManager loads the persisted settings and returns a ready Manager.
func NewManager(ctx context.Context, store database.Store, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		store:  store,
		logger: logger.With("component", "settings"),
	}

	if err := m.Reload(ctx); err != nil {
		return nil, fmt.Errorf("failed to load initial settings: %w", err)
	}

	return m, nil
}

// DeliveryMode returns the current delivery mode.
func (m *Manager) DeliveryMode() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mode
}

// ToggleDeliveryMode flips the delivery mode, persisting and adopting the new
// value as one operation. It returns the new mode.
func (m *Manager) ToggleDeliveryMode(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mode, err := m.store.ToggleDeliveryMode(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to toggle delivery mode: %w", err)
	}

	m.mode = mode
	m.logger.InfoContext(ctx, "Delivery mode changed", "mode", mode)
	return mode, nil
}

// Reload re-reads the persisted settings into memory. Kept as an explicit
// operation for configuration edited out-of-band, e.g. directly in SQLite.
func (m *Manager) Reload(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.store.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload settings: %w", err)
	}

	m.mode = s.DeliveryMode
	m.logger.DebugContext(ctx, "Settings reloaded", "mode", m.mode)
	return nil
}
