// Package database provides the SQLite connection, schema migrations, and
// the data access layer (Store) for the file index, user registry, runtime
// settings, and pagination cursors.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/svnig/filesearchbot/migrations"

	_ "modernc.org/sqlite"
)

// NewDB opens the SQLite database at dbPath, brings the schema up to date
// from the embedded migrations, and returns the connection pool.
func NewDB(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %q: %w", dbPath, err)
	}

	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := migrateSchema(db.DB, cleanDBPath(dbPath)); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("Failed to close database after migration failure", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	slog.Info("Database ready", "path", dbPath)
	return db, nil
}

// CloseDB closes the connection pool, logging instead of returning the error
// since callers run it on the shutdown path.
func CloseDB(db *sqlx.DB) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		slog.Error("Failed to close database", "error", err)
	}
}

// migrateSchema applies any pending embedded migrations to db. dbName is the
// identifier the migrate driver records alongside its version table.
func migrateSchema(db *sql.DB, dbName string) error {
	if db == nil {
		return errors.New("no database connection to migrate")
	}
	if dbName == "" {
		return errors.New("no database name for the migration driver")
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	target, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to prepare migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, dbName, target)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	switch err := migrator.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		slog.Debug("Schema already up to date")
	case err != nil:
		return fmt.Errorf("failed to apply migrations: %w", err)
	default:
		slog.Info("Schema migrations applied")
	}
	return nil
}

// cleanDBPath strips connection-string decoration (file: prefix, query
// parameters, percent-encoding) from a SQLite path so migrateSchema gets a
// plain file name.
func cleanDBPath(path string) string {
	path = strings.TrimPrefix(path, "file:")
	if idx := strings.Index(path, "?"); idx != -1 {
		path = path[:idx]
	}
	if decoded, err := url.PathUnescape(path); err == nil {
		return decoded
	}
	return path
}
