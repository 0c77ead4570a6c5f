package domain

import (
	"strings"
	"time"
)

// Sticker is an uploaded raster image users decorate books and goals with.
// Stickers are immutable after creation except for deletion.
type Sticker struct {
	ID string `json:"id"`
	// Name is an optional label.
	Name string `json:"name,omitempty"`
	// DataURL is the self-contained image payload (data URI).
	DataURL     string    `json:"data_url"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedAtMs int64     `json:"created_at_ms"`
}

// Normalize fills defaults on an imported sticker.
func (s *Sticker) Normalize(nowMs int64) {
	s.Name = strings.TrimSpace(s.Name)
	if s.CreatedAtMs == 0 {
		s.CreatedAtMs = nowMs
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.UnixMilli(s.CreatedAtMs)
	}
}

// Valid reports whether the sticker carries an image payload. Stickers
// without one are dropped on import rather than stored as empty shells.
func (s *Sticker) Valid() bool {
	return s.DataURL != ""
}

// StickerRef is a weak reference to a Sticker by ID. It is a reference, not
// ownership: the referenced sticker may have been deleted, so every read
// goes through Resolve and handles the dangling case.
type StickerRef string

// IsZero reports whether the reference is null.
func (r StickerRef) IsZero() bool {
	return r == ""
}

// Resolve looks the reference up in the given stickers. The second return
// is false for a null or dangling reference.
func (r StickerRef) Resolve(stickers []Sticker) (*Sticker, bool) {
	if r.IsZero() {
		return nil, false
	}
	for i := range stickers {
		if stickers[i].ID == string(r) {
			return &stickers[i], true
		}
	}
	return nil, false
}
