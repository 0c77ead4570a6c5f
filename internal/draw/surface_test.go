package draw

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cozyshelfapp/shelf-server/internal/domain"
)

// solidPNGDataURL builds a data URI holding a small solid-color PNG.
func solidPNGDataURL(t *testing.T, c color.RGBA, size int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func penStroke(points ...domain.Point) domain.Stroke {
	return domain.Stroke{Type: domain.StrokePen, Color: "#FF0000", Width: 10, Points: points}
}

func TestSurface_PaintStroke(t *testing.T) {
	s := NewSurface()
	st := penStroke(domain.Point{X: 100, Y: 100}, domain.Point{X: 200, Y: 100})
	s.PaintStroke(&st)

	_, _, _, a := s.Image().At(150, 100).RGBA()
	assert.NotZero(t, a, "interior of a pen stroke is painted")

	_, _, _, a = s.Image().At(150, 300).RGBA()
	assert.Zero(t, a, "pixels far from the stroke stay transparent")
}

func TestSurface_EraseRemovesOpacity(t *testing.T) {
	s := NewSurface()
	pen := penStroke(domain.Point{X: 100, Y: 100}, domain.Point{X: 200, Y: 100})
	s.PaintStroke(&pen)

	erase := domain.Stroke{
		Type:   domain.StrokeErase,
		Width:  10,
		Points: []domain.Point{{X: 100, Y: 100}, {X: 200, Y: 100}},
	}
	s.PaintStroke(&erase)

	_, _, _, a := s.Image().At(150, 100).RGBA()
	assert.Zero(t, a, "eraser composites destination-out, not white paint")
}

func TestSurface_EraserWiderThanPen(t *testing.T) {
	s := NewSurface()
	// A pen stroke at width 10 reaches ~5px either side of its centerline.
	pen := penStroke(domain.Point{X: 100, Y: 100}, domain.Point{X: 200, Y: 100})
	s.PaintStroke(&pen)

	// An eraser at the same nominal width paints at 2x, so a pass 8px off
	// the centerline still clears it.
	erase := domain.Stroke{
		Type:   domain.StrokeErase,
		Width:  10,
		Points: []domain.Point{{X: 100, Y: 108}, {X: 200, Y: 108}},
	}
	s.PaintStroke(&erase)

	_, _, _, a := s.Image().At(150, 100).RGBA()
	assert.Zero(t, a)
}

func TestSurface_RenderOrder_StickersOverStrokes(t *testing.T) {
	blue := color.RGBA{B: 0xFF, A: 0xFF}
	d := domain.NewDoodle()
	d.Strokes = []domain.Stroke{penStroke(domain.Point{X: 400, Y: 300}, domain.Point{X: 500, Y: 300})}
	d.Elements = []domain.PlacedSticker{{
		Type:    domain.ElementSticker,
		DataURL: solidPNGDataURL(t, blue, 8),
		X:       450, Y: 300, Size: 100,
	}}

	s := NewSurface()
	s.Render(&d)

	r, g, b, a := s.Image().At(450, 300).RGBA()
	assert.NotZero(t, a)
	assert.Zero(t, r>>8)
	assert.Zero(t, g>>8)
	assert.Equal(t, uint32(0xFF), b>>8, "the sticker paints over the stroke")
}

func TestSurface_PaintElement_DecodeFailurePlaceholder(t *testing.T) {
	s := NewSurface()
	el := domain.PlacedSticker{
		Type:    domain.ElementSticker,
		DataURL: "data:image/png;base64,not-valid-base64!!",
		X:       100, Y: 100, Size: 40,
	}
	s.PaintElement(&el)

	_, _, _, a := s.Image().At(100, 100).RGBA()
	assert.NotZero(t, a, "a failed decode degrades to a placeholder tile")
}

func TestDecodeDataURL(t *testing.T) {
	url := solidPNGDataURL(t, color.RGBA{R: 0xFF, A: 0xFF}, 4)

	img, err := DecodeDataURL(url)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())

	_, err = DecodeDataURL("data:image/png")
	assert.Error(t, err)

	_, err = DecodeDataURL("data:image/png;base64,AAAA")
	assert.Error(t, err, "valid base64 but not an image")
}

func TestParseHexColor(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 0xFF, G: 0x00, B: 0x99, A: 0xFF}, parseHexColor("#ff0099"))
	assert.Equal(t, color.RGBA{R: 0x11, G: 0x11, B: 0x11, A: 0xFF}, parseHexColor("red"), "unparseable falls back to the pen default")
	assert.Equal(t, color.RGBA{R: 0x11, G: 0x11, B: 0x11, A: 0xFF}, parseHexColor(""))
}
