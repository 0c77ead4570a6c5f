// Package draw renders doodles: stroke capture, raster compositing, and
// thumbnail generation. All painting happens in the fixed logical canvas
// space defined by the domain package.
package draw

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	stddraw "image/draw"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"math"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/cozyshelfapp/shelf-server/internal/domain"
)

var errMalformedDataURL = errors.New("malformed data url")

// placeholderGray is painted where a sticker payload fails to decode during
// a synchronous render. The render degrades rather than blocks or errors.
var placeholderGray = color.RGBA{R: 0xC8, G: 0xC8, B: 0xC8, A: 0x80}

// Surface is an in-memory raster the logical canvas is composited onto.
type Surface struct {
	img *image.RGBA
}

// NewSurface creates a transparent surface at the logical canvas size.
func NewSurface() *Surface {
	return &Surface{img: image.NewRGBA(image.Rect(0, 0, domain.CanvasWidth, domain.CanvasHeight))}
}

// Image exposes the backing raster.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

// Clear resets every pixel to transparent.
func (s *Surface) Clear() {
	for i := range s.img.Pix {
		s.img.Pix[i] = 0
	}
}

// Render repaints the surface from a persisted doodle: clear, then every
// stroke in array order, then every placed element in array order. Strokes
// always underlay stickers.
func (s *Surface) Render(d *domain.Doodle) {
	s.Clear()
	for i := range d.Strokes {
		s.PaintStroke(&d.Strokes[i])
	}
	for i := range d.Elements {
		s.PaintElement(&d.Elements[i])
	}
}

// PaintStroke paints a whole stroke segment by segment.
func (s *Surface) PaintStroke(st *domain.Stroke) {
	for i := 1; i < len(st.Points); i++ {
		s.PaintSegment(st, st.Points[i-1], st.Points[i])
	}
}

// PaintSegment paints the single segment from -> to with the stroke's brush.
// Pen strokes composite source-over in the stroke color; eraser strokes
// composite destination-out, removing opacity from whatever is already
// rendered, at the widened eraser width.
func (s *Surface) PaintSegment(st *domain.Stroke, from, to domain.Point) {
	mask := rasterizeCapsule(from, to, st.PaintWidth()/2)
	if st.Type == domain.StrokeErase {
		s.destinationOut(mask)
		return
	}
	src := image.NewUniform(parseHexColor(st.Color))
	stddraw.DrawMask(s.img, s.img.Bounds(), src, image.Point{}, mask, image.Point{}, stddraw.Over)
}

// PaintElement stamps a placed sticker, scaled to its bounding square and
// centered on its position. A payload that fails to decode degrades to a
// flat placeholder tile.
func (s *Surface) PaintElement(e *domain.PlacedSticker) {
	half := e.Size / 2
	rect := image.Rect(
		int(math.Round(e.X-half)), int(math.Round(e.Y-half)),
		int(math.Round(e.X+half)), int(math.Round(e.Y+half)),
	)

	img, err := DecodeDataURL(e.DataURL)
	if err != nil {
		stddraw.Draw(s.img, rect, image.NewUniform(placeholderGray), image.Point{}, stddraw.Over)
		return
	}

	scaleOver(s.img, rect, img)
}

// destinationOut multiplies every channel by the inverse of the mask
// coverage. Neither image/draw nor x/image/draw exposes a Porter-Duff
// destination-out operator, so it is applied by hand over the premultiplied
// RGBA pixels.
func (s *Surface) destinationOut(mask *image.Alpha) {
	b := s.img.Bounds().Intersect(mask.Bounds())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		mi := mask.PixOffset(b.Min.X, y)
		di := s.img.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			a := uint32(mask.Pix[mi])
			if a != 0 {
				inv := 255 - a
				p := s.img.Pix[di : di+4 : di+4]
				p[0] = uint8(uint32(p[0]) * inv / 255)
				p[1] = uint8(uint32(p[1]) * inv / 255)
				p[2] = uint8(uint32(p[2]) * inv / 255)
				p[3] = uint8(uint32(p[3]) * inv / 255)
			}
			mi++
			di += 4
		}
	}
}

// rasterizeCapsule rasterizes a thick line segment (a rectangle with round
// caps at both ends) into an alpha mask covering the logical canvas.
func rasterizeCapsule(from, to domain.Point, radius float64) *image.Alpha {
	r := vector.NewRasterizer(domain.CanvasWidth, domain.CanvasHeight)

	dx := to.X - from.X
	dy := to.Y - from.Y
	length := math.Hypot(dx, dy)
	if length > 0 {
		// Perpendicular offset at half the brush width.
		nx := -dy / length * radius
		ny := dx / length * radius
		r.MoveTo(float32(from.X+nx), float32(from.Y+ny))
		r.LineTo(float32(to.X+nx), float32(to.Y+ny))
		r.LineTo(float32(to.X-nx), float32(to.Y-ny))
		r.LineTo(float32(from.X-nx), float32(from.Y-ny))
		r.ClosePath()
	}
	addCircle(r, from, radius)
	addCircle(r, to, radius)

	mask := image.NewAlpha(image.Rect(0, 0, domain.CanvasWidth, domain.CanvasHeight))
	r.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}

// circleKappa is the cubic Bezier control-point factor approximating a
// quarter circle.
const circleKappa = 0.5522847498307936

// addCircle appends a circle to the rasterizer's path as four cubics.
func addCircle(r *vector.Rasterizer, c domain.Point, radius float64) {
	k := float32(radius * circleKappa)
	x := float32(c.X)
	y := float32(c.Y)
	rad := float32(radius)

	r.MoveTo(x+rad, y)
	r.CubeTo(x+rad, y+k, x+k, y+rad, x, y+rad)
	r.CubeTo(x-k, y+rad, x-rad, y+k, x-rad, y)
	r.CubeTo(x-rad, y-k, x-k, y-rad, x, y-rad)
	r.CubeTo(x+k, y-rad, x+rad, y-k, x+rad, y)
	r.ClosePath()
}

// scaleOver scales src into rect over dst. ApproxBiLinear is a good
// speed/quality tradeoff for sticker-sized stamps.
func scaleOver(dst *image.RGBA, rect image.Rectangle, src image.Image) {
	xdraw.ApproxBiLinear.Scale(dst, rect, src, src.Bounds(), xdraw.Over, nil)
}

// DecodeDataURL decodes a data URI image payload into an image.
func DecodeDataURL(dataURL string) (image.Image, error) {
	payload := dataURL
	if strings.HasPrefix(dataURL, "data:") {
		_, rest, ok := strings.Cut(dataURL, ",")
		if !ok {
			return nil, errMalformedDataURL
		}
		payload = rest
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return img, nil
}

// parseHexColor parses a #RRGGBB color string, falling back to near-black
// (the pen default) on anything it cannot parse.
func parseHexColor(s string) color.RGBA {
	c := color.RGBA{R: 0x11, G: 0x11, B: 0x11, A: 0xFF}
	if len(s) != 7 || s[0] != '#' {
		return c
	}
	if r, ok := hexByte(s[1], s[2]); ok {
		c.R = r
	}
	if g, ok := hexByte(s[3], s[4]); ok {
		c.G = g
	}
	if b, ok := hexByte(s[5], s[6]); ok {
		c.B = b
	}
	return c
}

func hexByte(hi, lo byte) (uint8, bool) {
	h, ok1 := hexNibble(hi)
	l, ok2 := hexNibble(lo)
	return h<<4 | l, ok1 && ok2
}

func hexNibble(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}
