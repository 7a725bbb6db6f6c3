package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for database operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// UpsertFile inserts a file record or, when the file_id already exists,
	// overwrites its caption, location, and size. The statement is atomic;
	// there is no separate existence check.
	UpsertFile(ctx context.Context, file *File) error

	// SearchFiles returns all files whose caption contains the query,
	// case-insensitively, ordered by insertion id. The ordering is stable
	// for an unchanged table, which is what pagination relies on.
	SearchFiles(ctx context.Context, query string) ([]File, error)

	// GetFileByID retrieves a file by its row id. Returns ErrNotFound if absent.
	GetFileByID(ctx context.Context, id int64) (*File, error)

	// CountFiles returns the total number of indexed files.
	CountFiles(ctx context.Context) (int64, error)

	// SumFileSizes returns the total stored bytes across all indexed files.
	SumFileSizes(ctx context.Context) (int64, error)

	// DeleteFilesByQuery deletes all files whose caption contains the query
	// and returns the number deleted.
	DeleteFilesByQuery(ctx context.Context, query string) (int64, error)

	// UpsertUser inserts or refreshes a user record and reports whether the
	// record was newly created. The "created" flag is derived from the
	// statement itself, so concurrent first-time requests from the same user
	// cannot both observe a first visit.
	UpsertUser(ctx context.Context, user *User) (created bool, err error)

	// CountUsers returns the total number of known users.
	CountUsers(ctx context.Context) (int64, error)

	// ListUserIDs returns the Telegram ids of all known users.
	ListUserIDs(ctx context.Context) ([]int64, error)

	// GetSettings retrieves the single runtime settings row.
	GetSettings(ctx context.Context) (*Settings, error)

	// ToggleDeliveryMode flips the persisted delivery mode in one atomic
	// statement and returns the new mode.
	ToggleDeliveryMode(ctx context.Context) (string, error)

	// CreateCursor stores a pagination cursor and returns its opaque token.
	CreateCursor(ctx context.Context, query string, page int) (string, error)

	// GetCursor retrieves a pagination cursor by token. Returns ErrNotFound
	// for unknown or already-pruned tokens.
	GetCursor(ctx context.Context, token string) (*PageCursor, error)

	// DeleteCursorsBefore prunes cursors created before the cutoff and
	// returns the number deleted.
	DeleteCursorsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) UpsertFile(ctx context.Context, file *File) error {
	if file == nil {
		return fmt.Errorf("cannot upsert nil file")
	}
	if file.FileID == "" {
		return fmt.Errorf("file must have a non-empty file_id")
	}
	if file.ChatID == 0 || file.MessageID == 0 {
		return fmt.Errorf("file must have a source chat_id and message_id")
	}

	now := time.Now().UTC()
	file.CreatedAt = now
	file.UpdatedAt = now
	file.CaptionLower = strings.ToLower(file.Caption)

	query := `
        INSERT INTO files (file_id, caption, caption_lower, chat_id, message_id, file_size, created_at, updated_at)
        VALUES (:file_id, :caption, :caption_lower, :chat_id, :message_id, :file_size, :created_at, :updated_at)
        ON CONFLICT(file_id) DO UPDATE SET
            caption = excluded.caption,
            caption_lower = excluded.caption_lower,
            chat_id = excluded.chat_id,
            message_id = excluded.message_id,
            file_size = excluded.file_size,
            updated_at = excluded.updated_at;
    `

	if _, err := s.db.NamedExecContext(ctx, query, file); err != nil {
		s.logger.ErrorContext(ctx, "Error upserting file", "file_id", file.FileID, "error", err)
		return fmt.Errorf("failed to upsert file %q: %w", file.FileID, err)
	}

	s.logger.DebugContext(ctx, "File upserted", "file_id", file.FileID, "chat_id", file.ChatID, "message_id", file.MessageID)
	return nil
}

func (s *sqlxStore) SearchFiles(ctx context.Context, query string) ([]File, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// SQLite's LIKE is case-insensitive for ASCII only, so the match runs
	// against the Go-lowercased caption copy with a lowercased query.
	var files []File
	stmt := `
        SELECT id, file_id, caption, chat_id, message_id, file_size, created_at, updated_at
        FROM files
        WHERE caption_lower LIKE ? ESCAPE '\'
        ORDER BY id;
    `

	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	if err := s.db.SelectContext(ctx, &files, stmt, pattern); err != nil {
		s.logger.ErrorContext(ctx, "Error searching files", "query", query, "error", err)
		return nil, fmt.Errorf("failed to search files for %q: %w", query, err)
	}

	s.logger.DebugContext(ctx, "File search completed", "query", query, "matches", len(files))
	return files, nil
}

func (s *sqlxStore) GetFileByID(ctx context.Context, id int64) (*File, error) {
	var file File
	stmt := `
        SELECT id, file_id, caption, chat_id, message_id, file_size, created_at, updated_at
        FROM files
        WHERE id = ?;
    `

	err := s.db.GetContext(ctx, &file, stmt, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNotFound
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting file by id", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get file %d: %w", id, err)
	}

	return &file, nil
}

func (s *sqlxStore) CountFiles(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM files;`); err != nil {
		return 0, fmt.Errorf("failed to count files: %w", err)
	}
	return count, nil
}

func (s *sqlxStore) SumFileSizes(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.GetContext(ctx, &total, `SELECT COALESCE(SUM(file_size), 0) FROM files;`); err != nil {
		return 0, fmt.Errorf("failed to sum file sizes: %w", err)
	}
	return total, nil
}

func (s *sqlxStore) DeleteFilesByQuery(ctx context.Context, query string) (int64, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	result, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE caption_lower LIKE ? ESCAPE '\';`, pattern)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting files by query", "query", query, "error", err)
		return 0, fmt.Errorf("failed to delete files for %q: %w", query, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to determine deleted row count: %w", err)
	}

	s.logger.InfoContext(ctx, "Deleted files by query", "query", query, "deleted", deleted)
	return deleted, nil
}

func (s *sqlxStore) UpsertUser(ctx context.Context, user *User) (bool, error) {
	if user == nil {
		return false, fmt.Errorf("cannot upsert nil user")
	}
	if user.UserID == 0 {
		return false, fmt.Errorf("user must have a non-zero user_id")
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	// A fresh insert stores created_at = now, so comparing the returned
	// created_at against our own timestamp distinguishes insert from update
	// without a second round trip or a check-then-write race.
	stmt := `
        INSERT INTO users (user_id, display_name, created_at, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(user_id) DO UPDATE SET
            display_name = excluded.display_name,
            updated_at = excluded.updated_at
        RETURNING created_at = ?;
    `

	var created bool
	err := s.db.GetContext(ctx, &created, stmt, user.UserID, user.DisplayName, now, now, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error upserting user", "user_id", user.UserID, "error", err)
		return false, fmt.Errorf("failed to upsert user %d: %w", user.UserID, err)
	}

	s.logger.DebugContext(ctx, "User upserted", "user_id", user.UserID, "created", created)
	return created, nil
}

func (s *sqlxStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users;`); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (s *sqlxStore) ListUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := s.db.SelectContext(ctx, &ids, `SELECT user_id FROM users ORDER BY id;`); err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}
	return ids, nil
}

func (s *sqlxStore) GetSettings(ctx context.Context) (*Settings, error) {
	var settings Settings
	err := s.db.GetContext(ctx, &settings,
		`SELECT id, delivery_mode, updated_at FROM settings WHERE id = 1;`)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNotFound
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting settings", "error", err)
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	return &settings, nil
}

func (s *sqlxStore) ToggleDeliveryMode(ctx context.Context) (string, error) {
	stmt := `
        UPDATE settings
        SET delivery_mode = CASE delivery_mode WHEN 'link' THEN 'copy' ELSE 'link' END,
            updated_at = ?
        WHERE id = 1
        RETURNING delivery_mode;
    `

	var mode string
	if err := s.db.GetContext(ctx, &mode, stmt, time.Now().UTC()); err != nil {
		s.logger.ErrorContext(ctx, "Error toggling delivery mode", "error", err)
		return "", fmt.Errorf("failed to toggle delivery mode: %w", err)
	}

	s.logger.InfoContext(ctx, "Delivery mode toggled", "mode", mode)
	return mode, nil
}

func (s *sqlxStore) CreateCursor(ctx context.Context, query string, page int) (string, error) {
	if page < 1 {
		return "", fmt.Errorf("cursor page must be >= 1, got %d", page)
	}

	cursor := PageCursor{
		Token:     uuid.NewString(),
		Query:     query,
		Page:      page,
		CreatedAt: time.Now().UTC(),
	}

	stmt := `
        INSERT INTO page_cursors (token, query, page, created_at)
        VALUES (:token, :query, :page, :created_at);
    `

	if _, err := s.db.NamedExecContext(ctx, stmt, cursor); err != nil {
		s.logger.ErrorContext(ctx, "Error creating cursor", "error", err)
		return "", fmt.Errorf("failed to create cursor: %w", err)
	}

	return cursor.Token, nil
}

func (s *sqlxStore) GetCursor(ctx context.Context, token string) (*PageCursor, error) {
	var cursor PageCursor
	err := s.db.GetContext(ctx, &cursor,
		`SELECT token, query, page, created_at FROM page_cursors WHERE token = ?;`, token)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNotFound
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting cursor", "token", token, "error", err)
		return nil, fmt.Errorf("failed to get cursor %q: %w", token, err)
	}

	return &cursor, nil
}

func (s *sqlxStore) DeleteCursorsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM page_cursors WHERE created_at < ?;`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune cursors: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to determine pruned cursor count: %w", err)
	}

	return deleted, nil
}

// RunSQLMaintenance performs database maintenance tasks like VACUUM.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `VACUUM;`); err != nil {
		s.logger.ErrorContext(ctx, "Error running database maintenance", "error", err)
		return fmt.Errorf("failed to run database maintenance: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance completed")
	return nil
}

// escapeLike escapes LIKE wildcard characters so query text is matched
// literally. The backslash is the ESCAPE character in every LIKE clause above.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
