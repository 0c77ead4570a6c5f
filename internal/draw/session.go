package draw

import (
	"github.com/cozyshelfapp/shelf-server/internal/domain"
)

// Viewport maps device (display) coordinates into the fixed logical canvas
// space. DisplayWidth/Height describe the on-screen size of the canvas,
// which may differ from the logical size on any given device.
type Viewport struct {
	OriginX       float64
	OriginY       float64
	DisplayWidth  float64
	DisplayHeight float64
}

// LogicalViewport is the identity mapping: device space is logical space.
func LogicalViewport() Viewport {
	return Viewport{DisplayWidth: domain.CanvasWidth, DisplayHeight: domain.CanvasHeight}
}

// ToLogical converts a device coordinate to logical canvas space.
func (v Viewport) ToLogical(x, y float64) domain.Point {
	return domain.Point{
		X: (x - v.OriginX) * (domain.CanvasWidth / v.DisplayWidth),
		Y: (y - v.OriginY) * (domain.CanvasHeight / v.DisplayHeight),
	}
}

// Brush holds the current pen settings.
type Brush struct {
	Color string
	Width float64
}

// Session is one open drawing-editor session over a book's doodle. It owns
// the live surface and an uncommitted buffer of strokes and placed stickers.
// Nothing touches the persisted doodle until Commit; closing the editor
// without committing discards the buffer entirely.
//
// A single continuous pointer-contact gesture produces exactly one stroke:
// Begin opens it, each Move appends one point and paints only the new
// segment, End (or a pointer cancel) closes it. Strokes with fewer than two
// points are treated as accidental taps and discarded.
type Session struct {
	surface  *Surface
	viewport Viewport

	brush   Brush
	erasing bool

	active   *domain.Stroke
	strokes  []domain.Stroke
	elements []domain.PlacedSticker

	armed *domain.Sticker
}

// NewSession opens a session over the persisted doodle, painting its current
// content onto the live surface.
func NewSession(d *domain.Doodle, vp Viewport) *Session {
	s := &Session{
		surface:  NewSurface(),
		viewport: vp,
		brush:    Brush{Color: "#111111", Width: 6},
	}
	s.surface.Render(d)
	return s
}

// SetBrush updates the pen color and width for subsequent strokes.
func (s *Session) SetBrush(b Brush) {
	s.brush = b
}

// SetErasing toggles eraser mode for subsequent strokes.
func (s *Session) SetErasing(on bool) {
	s.erasing = on
}

// Drawing reports whether a pointer contact is currently active.
func (s *Session) Drawing() bool {
	return s.active != nil
}

// Begin starts a new stroke at the given device coordinate. A Begin while a
// stroke is active implies the previous contact's end event was lost; the
// active stroke is ended first.
func (s *Session) Begin(deviceX, deviceY float64) {
	if s.active != nil {
		s.End()
	}

	st := &domain.Stroke{
		Type:   domain.StrokePen,
		Color:  s.brush.Color,
		Width:  s.brush.Width,
		Points: []domain.Point{s.viewport.ToLogical(deviceX, deviceY)},
	}
	if s.erasing {
		st.Type = domain.StrokeErase
		st.Color = ""
	}
	s.active = st
}

// Move appends a point to the active stroke and paints only the last
// segment. A full-stroke redraw per move would be wasted work since
// segments are append-only. Moves without an active contact are ignored.
func (s *Session) Move(deviceX, deviceY float64) {
	if s.active == nil {
		return
	}
	p := s.viewport.ToLogical(deviceX, deviceY)
	prev := s.active.Points[len(s.active.Points)-1]
	s.active.Points = append(s.active.Points, p)
	s.surface.PaintSegment(s.active, prev, p)
}

// End closes the active stroke. Strokes with fewer than two points are
// discarded as taps; everything else joins the uncommitted session buffer.
// Pointer-cancel is handled identically.
func (s *Session) End() {
	st := s.active
	s.active = nil
	if st == nil || !st.Persistable() {
		return
	}
	s.strokes = append(s.strokes, *st)
}

// SelectSticker arms placement mode with the given sticker.
func (s *Session) SelectSticker(st domain.Sticker) {
	s.armed = &st
}

// Place stamps the armed sticker centered at the device coordinate, appending
// it to the uncommitted element buffer and painting it immediately. Placing
// with no sticker armed is a stale-UI no-op.
func (s *Session) Place(deviceX, deviceY float64) {
	if s.armed == nil {
		return
	}
	p := s.viewport.ToLogical(deviceX, deviceY)
	el := domain.PlacedSticker{
		Type:    domain.ElementSticker,
		DataURL: s.armed.DataURL,
		X:       p.X,
		Y:       p.Y,
		Size:    domain.DefaultElementSize,
	}
	s.elements = append(s.elements, el)
	s.surface.PaintElement(&el)
}

// Strokes returns the uncommitted session strokes.
func (s *Session) Strokes() []domain.Stroke {
	return s.strokes
}

// Elements returns the uncommitted session elements.
func (s *Session) Elements() []domain.PlacedSticker {
	return s.elements
}

// Surface exposes the live surface (for preview rendering).
func (s *Session) Surface() *Surface {
	return s.surface
}

// Commit merges the session buffer into the doodle: persisted strokes first,
// session strokes after, point budget enforced; same for elements. The
// session buffer is consumed.
func (s *Session) Commit(d *domain.Doodle, nowMs int64) {
	if s.active != nil {
		s.End()
	}
	d.MergeSession(s.strokes, s.elements, nowMs)
	s.strokes = nil
	s.elements = nil
}

// Discard drops the entire uncommitted buffer, strokes and elements alike.
// Used when the editor closes without saving; there is no partial commit.
func (s *Session) Discard() {
	s.active = nil
	s.strokes = nil
	s.elements = nil
}
