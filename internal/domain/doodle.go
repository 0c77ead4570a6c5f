package domain

// Canvas and budget constants. All doodle geometry is expressed in a fixed
// logical pixel space so persisted strokes are resolution independent.
const (
	CanvasWidth  = 900
	CanvasHeight = 600

	// MaxDoodlePoints bounds the total number of stroke points persisted per
	// doodle. Pruning is by whole strokes, newest kept first.
	MaxDoodlePoints = 12000

	// MaxDoodleElements bounds how many placed stickers a doodle keeps.
	MaxDoodleElements = 60

	// EraserWidthScale widens eraser strokes relative to the nominal brush
	// width so erasing feels proportionally larger than drawing.
	EraserWidthScale = 2.0

	// DefaultElementSize is the square bounding diameter for a newly placed
	// sticker, in logical pixels.
	DefaultElementSize = 120
)

// Point is a coordinate in logical canvas space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// StrokeType distinguishes pen strokes from eraser strokes.
type StrokeType string

// Stroke types.
const (
	StrokePen   StrokeType = "pen"
	StrokeErase StrokeType = "erase"
)

// Stroke is one continuous pointer gesture. Insertion order across a
// doodle's strokes is draw order is paint order.
type Stroke struct {
	Type StrokeType `json:"type"`
	// Color is only meaningful for pen strokes.
	Color string `json:"color,omitempty"`
	// Width is the brush diameter in logical pixels.
	Width float64 `json:"width"`
	// Points has length >= 2 for any persisted stroke; single-point strokes
	// are accidental taps and discarded at capture time.
	Points []Point `json:"points"`
}

// Persistable reports whether the stroke has enough points to keep.
func (s *Stroke) Persistable() bool {
	return len(s.Points) >= 2 && s.Width > 0
}

// PaintWidth is the effective brush diameter: eraser strokes paint at
// EraserWidthScale times their nominal width.
func (s *Stroke) PaintWidth() float64 {
	if s.Type == StrokeErase {
		return s.Width * EraserWidthScale
	}
	return s.Width
}

// PlacedSticker is a sticker stamped onto the doodle. The image payload is
// copied at placement time, not referenced, so placed stickers survive
// deletion of the sticker they came from.
type PlacedSticker struct {
	// Type tags the element kind in the persisted document.
	Type string `json:"type"`
	// DataURL is the embedded image payload.
	DataURL string `json:"data_url"`
	// X, Y is the center point; Size the square bounding diameter.
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
}

// ElementSticker is the Type tag for PlacedSticker elements.
const ElementSticker = "sticker"

// Doodle is the freehand layer owned 1:1 by a book. It has no independent
// lifecycle: created empty with its book and cleared, never deleted.
type Doodle struct {
	Strokes  []Stroke        `json:"strokes"`
	Elements []PlacedSticker `json:"elements"`
	Width    int             `json:"width"`
	Height   int             `json:"height"`
	// ThumbHash is a BlurHash of the last rendered thumbnail, used as the
	// placeholder when a fast synchronous render loses the image-decode race.
	ThumbHash   string `json:"thumb_hash,omitempty"`
	UpdatedAtMs int64  `json:"updated_at_ms"`
}

// NewDoodle returns an empty doodle at the fixed logical canvas size.
func NewDoodle() Doodle {
	return Doodle{Width: CanvasWidth, Height: CanvasHeight}
}

// Clear resets the doodle to empty, keeping its canvas dimensions.
func (d *Doodle) Clear(nowMs int64) {
	d.Strokes = nil
	d.Elements = nil
	d.ThumbHash = ""
	d.UpdatedAtMs = nowMs
}

// Empty reports whether the doodle has no content.
func (d *Doodle) Empty() bool {
	return len(d.Strokes) == 0 && len(d.Elements) == 0
}

// PointCount returns the total number of stroke points.
func (d *Doodle) PointCount() int {
	n := 0
	for i := range d.Strokes {
		n += len(d.Strokes[i].Points)
	}
	return n
}

// Normalize repairs an imported or partial doodle: canvas dimensions are
// forced to the logical size, non-persistable strokes and payload-less
// elements dropped, and the budgets enforced. A doodle that is malformed
// beyond repair simply normalizes to empty.
func (d *Doodle) Normalize() {
	d.Width = CanvasWidth
	d.Height = CanvasHeight

	kept := d.Strokes[:0]
	for _, s := range d.Strokes {
		if !s.Persistable() {
			continue
		}
		if s.Type != StrokePen && s.Type != StrokeErase {
			s.Type = StrokePen
		}
		kept = append(kept, s)
	}
	d.Strokes = PruneStrokes(kept, MaxDoodlePoints)

	els := d.Elements[:0]
	for _, e := range d.Elements {
		if e.DataURL == "" {
			continue
		}
		e.Type = ElementSticker
		if e.Size <= 0 {
			e.Size = DefaultElementSize
		}
		els = append(els, e)
	}
	d.Elements = TruncateElements(els, MaxDoodleElements)
}

// MergeSession appends a drawing session's strokes and elements after the
// persisted ones (commit order = draw order across the full history) and
// enforces both budgets.
func (d *Doodle) MergeSession(strokes []Stroke, elements []PlacedSticker, nowMs int64) {
	merged := make([]Stroke, 0, len(d.Strokes)+len(strokes))
	merged = append(merged, d.Strokes...)
	merged = append(merged, strokes...)
	d.Strokes = PruneStrokes(merged, MaxDoodlePoints)

	els := make([]PlacedSticker, 0, len(d.Elements)+len(elements))
	els = append(els, d.Elements...)
	els = append(els, elements...)
	d.Elements = TruncateElements(els, MaxDoodleElements)

	d.UpdatedAtMs = nowMs
}

// PruneStrokes enforces a total point budget over an ordered stroke history.
// Scanning from the newest stroke backward, it keeps the longest suffix whose
// cumulative point count fits the budget; the stroke that would exceed it is
// dropped along with everything older. No stroke is partially trimmed, so
// recent drawing activity stays intact at the cost of old history.
func PruneStrokes(strokes []Stroke, budget int) []Stroke {
	total := 0
	cut := 0
	for i := len(strokes) - 1; i >= 0; i-- {
		total += len(strokes[i].Points)
		if total > budget {
			cut = i + 1
			break
		}
	}
	if cut == 0 {
		return strokes
	}
	return append([]Stroke(nil), strokes[cut:]...)
}

// TruncateElements keeps the most recent max elements, dropping the oldest
// placed stickers first.
func TruncateElements(elements []PlacedSticker, max int) []PlacedSticker {
	if len(elements) <= max {
		return elements
	}
	return append([]PlacedSticker(nil), elements[len(elements)-max:]...)
}
