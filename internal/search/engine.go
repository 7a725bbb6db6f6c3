// Package search turns free-text queries into stable, navigable result pages
// over the content index, and encodes page cursors into opaque callback
// tokens.
package search

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"

	"github.com/svnig/filesearchbot/internal/database"
)

const (
	// PageSize is the number of results per page in command search.
	PageSize = 5

	// InlineLimit is the maximum number of results returned to an inline query.
	InlineLimit = 10

	// captionPreviewLen is the display truncation applied to captions.
	captionPreviewLen = 50
)

// Page is one rendered page of search results. Items is empty when the
// requested page is beyond the last page; TotalMatches distinguishes an
// exhausted pagination from a query with no matches at all.
type Page struct {
	Query        string
	Number       int
	TotalMatches int
	TotalPages   int
	Items        []database.File
}

// Engine executes queries against the content index and slices the result
// into pages.
type Engine struct {
	store  database.Store
	logger *slog.Logger
}

// NewEngine creates a search engine over the given store.
func NewEngine(store database.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:  store,
		logger: logger.With("component", "search"),
	}
}

// RenderPage fetches all matches for query and returns page pageNumber of
// them. Two consecutive calls over an unchanged index observe the same
// ordering and totals. An out-of-range page yields an empty Items slice, not
// an error.
func (e *Engine) RenderPage(ctx context.Context, query string, pageNumber int) (*Page, error) {
	if pageNumber < 1 {
		pageNumber = 1
	}

	files, err := e.store.SearchFiles(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}

	total := len(files)
	totalPages := (total + PageSize - 1) / PageSize

	page := &Page{
		Query:        query,
		Number:       pageNumber,
		TotalMatches: total,
		TotalPages:   totalPages,
	}

	start := (pageNumber - 1) * PageSize
	if start < total {
		end := start + PageSize
		if end > total {
			end = total
		}
		page.Items = files[start:end]
	}

	e.logger.DebugContext(ctx, "Rendered search page",
		"query", query, "page", pageNumber, "total_matches", total, "total_pages", totalPages)
	return page, nil
}

// Search fetches matches for query capped at limit, for callers that present
// a single bounded result set instead of pages.
func (e *Engine) Search(ctx context.Context, query string, limit int) ([]database.File, error) {
	files, err := e.store.SearchFiles(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}

// CaptionPreview returns the display form of a file's caption, truncated to
// the preview length. Files indexed without a caption display as "Unnamed".
func CaptionPreview(f *database.File) string {
	caption := strings.TrimSpace(f.Caption)
	if caption == "" {
		return "Unnamed"
	}
	runes := []rune(caption)
	if len(runes) <= captionPreviewLen {
		return caption
	}
	return string(runes[:captionPreviewLen])
}

// MessageLink builds the t.me link referencing a file's original message in
// its source channel.
func MessageLink(chatID int64, messageID int) string {
	s := strconv.FormatInt(chatID, 10)
	s = strings.TrimPrefix(s, "-100")
	return fmt.Sprintf("https://t.me/c/%s/%d", s, messageID)
}

// FormatPage renders a page as an HTML message body: a header with the query
// and page position, then one linked caption preview per item.
func FormatPage(p *Page) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔍 Results for: <b>%s</b> (Page %d/%d)\n\n",
		html.EscapeString(p.Query), p.Number, p.TotalPages)

	for i, item := range p.Items {
		fmt.Fprintf(&b, "%d. <a href=\"%s\">%s</a>\n",
			i+1,
			MessageLink(item.ChatID, item.MessageID),
			html.EscapeString(CaptionPreview(&item)))
	}

	return b.String()
}
