package database

import "time"

// Delivery modes stored in the settings row. In link mode search results are
// rendered as clickable message links; in copy mode the matched media is
// re-delivered to the requester directly.
const (
	DeliveryModeLink = "link"
	DeliveryModeCopy = "copy"
)

// File represents a piece of media discovered in a source channel. FileID is
// the stable Telegram file identifier; at most one row exists per FileID and
// re-ingestion overwrites caption and location (last write wins). FileSize is
// captured at ingestion time so stats never need a per-file remote lookup.
type File struct {
	ID        int64     `db:"id"`
	FileID    string    `db:"file_id"`
	Caption   string    `db:"caption"`
	ChatID    int64     `db:"chat_id"`
	MessageID int       `db:"message_id"`
	FileSize  int64     `db:"file_size"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	// CaptionLower is maintained by the store on every write. SQLite's LIKE
	// folds case only for ASCII, so matching runs against this Unicode
	// lowercased copy instead of the caption itself.
	CaptionLower string `db:"caption_lower"`
}

// User represents a bot user. A row is created on the user's first gated
// interaction and the display name is refreshed on every subsequent one.
type User struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	DisplayName string    `db:"display_name"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Settings is the single mutable runtime-configuration row (id = 1).
type Settings struct {
	ID           int64     `db:"id"`
	DeliveryMode string    `db:"delivery_mode"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// PageCursor is a server-side pagination cursor. The opaque token travels in
// callback data; the query text and target page stay in the database, so any
// query text round-trips safely regardless of its characters.
type PageCursor struct {
	Token     string    `db:"token"`
	Query     string    `db:"query"`
	Page      int       `db:"page"`
	CreatedAt time.Time `db:"created_at"`
}
