// Package database_test tests the store against a real SQLite database.
package database_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/svnig/filesearchbot/internal/database"

	_ "modernc.org/sqlite"
)

// newTestStore opens a fresh migrated database in a temp directory.
func newTestStore(t *testing.T) database.Store {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })

	return database.NewStore(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestUpsertFileIdempotent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	first := &database.File{FileID: "BQAC-1", Caption: "golang tutorial", ChatID: -1001, MessageID: 10, FileSize: 100}
	if err := store.UpsertFile(ctx, first); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	// Same file id re-ingested from a different location with a new caption.
	second := &database.File{FileID: "BQAC-1", Caption: "golang tutorial v2", ChatID: -1002, MessageID: 99, FileSize: 200}
	if err := store.UpsertFile(ctx, second); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	count, err := store.CountFiles(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 file after re-ingestion, got %d", count)
	}

	files, err := store.SearchFiles(ctx, "golang")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 match, got %d", len(files))
	}
	got := files[0]
	if got.Caption != "golang tutorial v2" || got.ChatID != -1002 || got.MessageID != 99 || got.FileSize != 200 {
		t.Errorf("last write did not win: %+v", got)
	}
}

func TestUpsertFileValidation(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		file *database.File
	}{
		{name: "nil file", file: nil},
		{name: "empty file id", file: &database.File{ChatID: -1001, MessageID: 1}},
		{name: "missing location", file: &database.File{FileID: "BQAC-2"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := store.UpsertFile(ctx, tc.file); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestSearchFiles(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	seed := []database.File{
		{FileID: "f1", Caption: "Go Tutorial Part 1", ChatID: -1001, MessageID: 1},
		{FileID: "f2", Caption: "going places", ChatID: -1001, MessageID: 2},
		{FileID: "f3", Caption: "100% legit report", ChatID: -1001, MessageID: 3},
		{FileID: "f4", Caption: "snake_case_notes", ChatID: -1001, MessageID: 4},
		{FileID: "f5", Caption: "", ChatID: -1001, MessageID: 5},
	}
	for i := range seed {
		if err := store.UpsertFile(ctx, &seed[i]); err != nil {
			t.Fatalf("seed upsert failed: %v", err)
		}
	}

	tests := []struct {
		name      string
		query     string
		wantIDs   []string
		wantCount int
	}{
		{name: "case insensitive substring", query: "go", wantIDs: []string{"f1", "f2"}},
		{name: "upper case query", query: "GO", wantIDs: []string{"f1", "f2"}},
		{name: "percent is literal", query: "100%", wantIDs: []string{"f3"}},
		{name: "underscore is literal", query: "case_n", wantIDs: []string{"f4"}},
		{name: "no matches", query: "rust", wantIDs: nil},
		{name: "empty query matches all", query: "", wantIDs: []string{"f1", "f2", "f3", "f4", "f5"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			files, err := store.SearchFiles(ctx, tc.query)
			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			if len(files) != len(tc.wantIDs) {
				t.Fatalf("expected %d matches, got %d", len(tc.wantIDs), len(files))
			}
			for i, want := range tc.wantIDs {
				if files[i].FileID != want {
					t.Errorf("match %d: expected file id %q, got %q", i, want, files[i].FileID)
				}
			}
		})
	}
}

func TestSearchFilesUnicodeCaseFolding(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	seed := []database.File{
		{FileID: "u1", Caption: "Видео Урок Go", ChatID: -1001, MessageID: 1},
		{FileID: "u2", Caption: "ÜBUNGSBLATT März", ChatID: -1001, MessageID: 2},
		{FileID: "u3", Caption: "plain ascii", ChatID: -1001, MessageID: 3},
	}
	for i := range seed {
		if err := store.UpsertFile(ctx, &seed[i]); err != nil {
			t.Fatalf("seed upsert failed: %v", err)
		}
	}

	tests := []struct {
		name   string
		query  string
		wantID string
	}{
		{name: "cyrillic lower query", query: "видео", wantID: "u1"},
		{name: "cyrillic upper query", query: "ВИДЕО", wantID: "u1"},
		{name: "cyrillic inner word", query: "урок", wantID: "u1"},
		{name: "umlaut lower query", query: "übungsblatt", wantID: "u2"},
		{name: "umlaut upper query", query: "MÄRZ", wantID: "u2"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			files, err := store.SearchFiles(ctx, tc.query)
			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			if len(files) != 1 {
				t.Fatalf("expected 1 match (case-insensitive substring), got %d", len(files))
			}
			if files[0].FileID != tc.wantID {
				t.Errorf("expected file id %q, got %q", tc.wantID, files[0].FileID)
			}
		})
	}
}

func TestSearchFilesStableOrder(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 7; i++ {
		f := database.File{FileID: "stable-" + string(rune('a'+i)), Caption: "report", ChatID: -1001, MessageID: i}
		if err := store.UpsertFile(ctx, &f); err != nil {
			t.Fatalf("seed upsert failed: %v", err)
		}
	}

	first, err := store.SearchFiles(ctx, "report")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	second, err := store.SearchFiles(ctx, "report")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("result sizes differ between identical searches: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].FileID != second[i].FileID {
			t.Errorf("position %d differs between identical searches: %q vs %q", i, first[i].FileID, second[i].FileID)
		}
	}
}

func TestGetFileByID(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	if err := store.UpsertFile(ctx, &database.File{FileID: "f1", Caption: "x", ChatID: -1001, MessageID: 1}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	files, err := store.SearchFiles(ctx, "x")
	if err != nil || len(files) != 1 {
		t.Fatalf("seed lookup failed: %v (%d matches)", err, len(files))
	}

	got, err := store.GetFileByID(ctx, files[0].ID)
	if err != nil {
		t.Fatalf("get by id failed: %v", err)
	}
	if got.FileID != "f1" {
		t.Errorf("expected file id f1, got %q", got.FileID)
	}

	if _, err := store.GetFileByID(ctx, 99999); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestDeleteFilesByQuery(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	seed := []database.File{
		{FileID: "d1", Caption: "old backup 2020", ChatID: -1001, MessageID: 1},
		{FileID: "d2", Caption: "OLD Backup 2021", ChatID: -1001, MessageID: 2},
		{FileID: "d3", Caption: "fresh snapshot", ChatID: -1001, MessageID: 3},
	}
	for i := range seed {
		if err := store.UpsertFile(ctx, &seed[i]); err != nil {
			t.Fatalf("seed upsert failed: %v", err)
		}
	}

	deleted, err := store.DeleteFilesByQuery(ctx, "old backup")
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 deleted, got %d", deleted)
	}

	count, err := store.CountFiles(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 remaining file, got %d", count)
	}
}

func TestUpsertUserCreatedFlag(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.UpsertUser(ctx, &database.User{UserID: 42, DisplayName: "Ada"})
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if !created {
		t.Error("expected created=true on first upsert")
	}

	created, err = store.UpsertUser(ctx, &database.User{UserID: 42, DisplayName: "Ada L"})
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if created {
		t.Error("expected created=false on repeat upsert")
	}

	count, err := store.CountUsers(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 user, got %d", count)
	}
}

func TestListUserIDs(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []int64{5, 1, 9} {
		if _, err := store.UpsertUser(ctx, &database.User{UserID: id, DisplayName: "u"}); err != nil {
			t.Fatalf("seed upsert failed: %v", err)
		}
	}

	ids, err := store.ListUserIDs(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	// Registration order, not numeric order.
	want := []int64{5, 1, 9}
	if len(ids) != len(want) {
		t.Fatalf("expected %d ids, got %d", len(want), len(ids))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("id %d: expected %d, got %d", i, want[i], ids[i])
		}
	}
}

func TestToggleDeliveryMode(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	s, err := store.GetSettings(ctx)
	if err != nil {
		t.Fatalf("get settings failed: %v", err)
	}
	if s.DeliveryMode != database.DeliveryModeLink {
		t.Fatalf("expected seeded mode %q, got %q", database.DeliveryModeLink, s.DeliveryMode)
	}

	mode, err := store.ToggleDeliveryMode(ctx)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if mode != database.DeliveryModeCopy {
		t.Errorf("expected %q after first toggle, got %q", database.DeliveryModeCopy, mode)
	}

	mode, err = store.ToggleDeliveryMode(ctx)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if mode != database.DeliveryModeLink {
		t.Errorf("expected %q after second toggle, got %q", database.DeliveryModeLink, mode)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	// Queries full of delimiter-looking characters must survive unchanged.
	query := `a:b|c;d "quoted" pg: 100%`
	token, err := store.CreateCursor(ctx, query, 7)
	if err != nil {
		t.Fatalf("create cursor failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	cursor, err := store.GetCursor(ctx, token)
	if err != nil {
		t.Fatalf("get cursor failed: %v", err)
	}
	if cursor.Query != query || cursor.Page != 7 {
		t.Errorf("cursor round-trip mismatch: got query %q page %d", cursor.Query, cursor.Page)
	}

	if _, err := store.GetCursor(ctx, "no-such-token"); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown token, got %v", err)
	}

	if _, err := store.CreateCursor(ctx, "q", 0); err == nil {
		t.Error("expected error for page < 1, got nil")
	}
}

func TestDeleteCursorsBefore(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	token, err := store.CreateCursor(ctx, "prune me", 1)
	if err != nil {
		t.Fatalf("create cursor failed: %v", err)
	}

	// A cutoff in the past prunes nothing.
	deleted, err := store.DeleteCursorsBefore(ctx, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("expected 0 pruned with past cutoff, got %d", deleted)
	}

	deleted, err = store.DeleteCursorsBefore(ctx, time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 pruned with future cutoff, got %d", deleted)
	}

	if _, err := store.GetCursor(ctx, token); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("expected pruned cursor to be gone, got %v", err)
	}
}

func TestSumFileSizes(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	total, err := store.SumFileSizes(ctx)
	if err != nil {
		t.Fatalf("sum failed: %v", err)
	}
	if total != 0 {
		t.Errorf("expected 0 on empty index, got %d", total)
	}

	sizes := []int64{100, 250, 4096}
	for i, size := range sizes {
		f := database.File{FileID: "s" + string(rune('a'+i)), Caption: "sized", ChatID: -1001, MessageID: i + 1, FileSize: size}
		if err := store.UpsertFile(ctx, &f); err != nil {
			t.Fatalf("seed upsert failed: %v", err)
		}
	}

	total, err = store.SumFileSizes(ctx)
	if err != nil {
		t.Fatalf("sum failed: %v", err)
	}
	if total != 4446 {
		t.Errorf("expected total 4446, got %d", total)
	}
}
