// Package backup implements the shelf export and import document format.
// Exports are self-contained JSON documents; imports are strictly additive
// and by default mint fresh IDs for everything they bring in.
package backup

import (
	"encoding/json/v2"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/cozyshelfapp/shelf-server/internal/domain"
	apperr "github.com/cozyshelfapp/shelf-server/internal/errors"
	"github.com/cozyshelfapp/shelf-server/internal/id"
)

// FormatVersion is the current export document version. Documents without
// a version field are treated as version 1; they predate the field.
const FormatVersion = 1

// Document is one complete shelf export.
type Document struct {
	Version      int              `json:"version"`
	ExportID     string           `json:"export_id"`
	ExportedAtMs int64            `json:"exported_at_ms"`
	Books        []domain.Book    `json:"books"`
	Stickers     []domain.Sticker `json:"stickers"`
	Goals        []domain.Goal    `json:"goals"`
}

// Export builds a document from collection snapshots.
func Export(books []domain.Book, stickers []domain.Sticker, goals []domain.Goal) *Document {
	return &Document{
		Version:      FormatVersion,
		ExportID:     uuid.NewString(),
		ExportedAtMs: id.NowMs(),
		Books:        books,
		Stickers:     stickers,
		Goals:        goals,
	}
}

// Write encodes the document as JSON.
func (d *Document) Write(w io.Writer) error {
	if err := json.MarshalWrite(w, d); err != nil {
		return fmt.Errorf("encode export document: %w", err)
	}
	return nil
}

// Read decodes and version-checks an export document.
func Read(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.UnmarshalRead(r, &doc); err != nil {
		return nil, apperr.Validation("export document is not valid JSON").WithCause(err)
	}
	if doc.Version == 0 {
		doc.Version = FormatVersion
	}
	if doc.Version > FormatVersion {
		return nil, apperr.Validationf("unsupported export version %d", doc.Version)
	}
	return &doc, nil
}

// ImportOptions control how a document is prepared for import.
type ImportOptions struct {
	// PreserveIDs keeps the document's IDs instead of minting fresh ones.
	// Only safe when importing into an empty account; the default remap
	// guarantees no collision with existing entries.
	PreserveIDs bool
}

// Prepare normalizes a document's entities for import. Unless IDs are
// preserved, every entity gets a fresh ID and sticker references inside
// books and goals are remapped to the new sticker IDs. References to
// stickers the document does not carry are cleared rather than imported
// dangling.
func Prepare(doc *Document, opts ImportOptions, nowMs int64) (books []domain.Book, stickers []domain.Sticker, goals []domain.Goal, err error) {
	remap := make(map[string]string, len(doc.Stickers))

	stickers = make([]domain.Sticker, 0, len(doc.Stickers))
	for _, st := range doc.Stickers {
		st.Normalize(nowMs)
		if !st.Valid() {
			continue
		}
		oldID := st.ID
		if !opts.PreserveIDs || st.ID == "" {
			st.ID = id.MustGenerate("stk")
		}
		if oldID != "" {
			remap[oldID] = st.ID
		}
		stickers = append(stickers, st)
	}

	books = make([]domain.Book, 0, len(doc.Books))
	for _, b := range doc.Books {
		b.Normalize(nowMs)
		if !opts.PreserveIDs || b.ID == "" {
			b.ID = id.MustGenerate("bk")
		}
		b.StickerID = remapRef(b.StickerID, remap)
		books = append(books, b)
	}

	goals = make([]domain.Goal, 0, len(doc.Goals))
	for _, g := range doc.Goals {
		g.Normalize(nowMs)
		if !opts.PreserveIDs || g.ID == "" {
			g.ID = id.MustGenerate("gl")
		}
		g.RewardStickerID = remapRef(g.RewardStickerID, remap)
		goals = append(goals, g)
	}

	return books, stickers, goals, nil
}

// remapRef translates a sticker reference through the old-to-new ID map.
// Unknown references are cleared.
func remapRef(ref domain.StickerRef, remap map[string]string) domain.StickerRef {
	if ref.IsZero() {
		return ""
	}
	if newID, ok := remap[string(ref)]; ok {
		return domain.StickerRef(newID)
	}
	return ""
}
