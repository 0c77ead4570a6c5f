// Package domain contains the core entities and invariants for the shelf.
package domain

import (
	"strings"
	"time"
)

// Status is a book's reading status. The set is open ended so clients can
// introduce new shelves without a schema change; "read" and "toread" are the
// two the UI ships with.
type Status string

// Built-in statuses.
const (
	StatusRead   Status = "read"
	StatusToRead Status = "toread"
)

// Rating bounds. Ratings submitted outside this range are clamped, never rejected.
const (
	MinRating = 0
	MaxRating = 5
)

// DefaultTitle is substituted when an imported or normalized book has no title.
const DefaultTitle = "Untitled"

// Book is one entry on the shelf.
type Book struct {
	// ID is an opaque unique identifier (see internal/id).
	ID string `json:"id"`
	// Title is the display title, trimmed and non-empty after normalization.
	Title string `json:"title"`
	// Link is an optional URL associated with the book.
	Link string `json:"link,omitempty"`
	// FinishedAt is an optional ISO date string (YYYY-MM-DD). It is the
	// primary shelf sort key; empty means not finished yet.
	FinishedAt string `json:"finished_at,omitempty"`
	// Rating is clamped to [MinRating, MaxRating].
	Rating int `json:"rating"`
	// Notes is free text.
	Notes string `json:"notes,omitempty"`
	// Status defaults to StatusRead.
	Status Status `json:"status"`
	// CreatedAt is the server-assigned creation timestamp.
	CreatedAt time.Time `json:"created_at"`
	// CreatedAtMs is the client-assigned creation timestamp in Unix
	// milliseconds. Subscriptions order strictly by this field, and it is
	// the sort tiebreak, so it must agree with CreatedAt in relative order.
	CreatedAtMs int64 `json:"created_at_ms"`
	// FetchedCoverURL is the system-derived cover, set asynchronously after
	// creation by the cover lookup. Never set by the user.
	FetchedCoverURL string `json:"fetched_cover_url,omitempty"`
	// CoverURL is the user override; it wins over FetchedCoverURL when set.
	CoverURL string `json:"cover_url,omitempty"`
	// StickerID weakly references a Sticker displayed on the book card.
	StickerID StickerRef `json:"sticker_id,omitempty"`
	// Doodle is owned by the book: created empty with it, cleared rather
	// than deleted.
	Doodle Doodle `json:"doodle"`
}

// ClampRating clamps r into the valid rating range.
func ClampRating(r int) int {
	if r < MinRating {
		return MinRating
	}
	if r > MaxRating {
		return MaxRating
	}
	return r
}

// Normalize fills defaults and enforces invariants on a partial or imported
// book. After Normalize the record is fully defaulted and safe to persist.
func (b *Book) Normalize(nowMs int64) {
	b.Title = strings.TrimSpace(b.Title)
	if b.Title == "" {
		b.Title = DefaultTitle
	}
	b.Link = strings.TrimSpace(b.Link)
	b.Rating = ClampRating(b.Rating)
	if b.Status == "" {
		b.Status = StatusRead
	}
	if b.CreatedAtMs == 0 {
		b.CreatedAtMs = nowMs
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.UnixMilli(b.CreatedAtMs)
	}
	b.Doodle.Normalize()
}

// CoverSource returns the cover URL to display: the user override when set,
// otherwise the fetched one, otherwise empty.
func (b *Book) CoverSource() string {
	if b.CoverURL != "" {
		return b.CoverURL
	}
	return b.FetchedCoverURL
}
