// Package daily derives the deterministic sticker-of-the-day and the starter
// sticker pack every new user begins with.
package daily

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"time"

	"github.com/cozyshelfapp/shelf-server/internal/domain"
	"github.com/cozyshelfapp/shelf-server/internal/id"
	"github.com/cozyshelfapp/shelf-server/internal/logger"
)

// assetSize is the pixel size of generated sticker assets.
const assetSize = 96

// shape paints one starter asset onto a square canvas in the given color.
type shape struct {
	name  string
	paint func(img *image.RGBA, c color.RGBA)
}

// pack is the fixed starter pack. Order matters: the daily hash indexes
// into it, so reordering would change which asset a day-key derives.
var pack = []shape{
	{"Dot", paintDot},
	{"Ring", paintRing},
	{"Diamond", paintDiamond},
	{"Blossom", paintBlossom},
	{"Sparkle", paintSparkle},
}

// Hash computes the polynomial hash h = h*31 + c over the string, in
// unsigned 32-bit arithmetic. The same day-key always hashes the same, so
// daily derivation is stable across invocations and devices.
func Hash(s string) uint32 {
	var h uint32
	for _, c := range s {
		h = h*31 + uint32(c)
	}
	return h
}

// Hue derives a hue in [0, 360) from a day-key.
func Hue(dayKey string) int {
	return int(Hash(dayKey) % 360)
}

// DeriveAsset renders the daily asset for a day-key: the hash selects one
// starter shape and retints it to the derived hue.
func DeriveAsset(dayKey string) (name, dataURL string) {
	h := Hash(dayKey)
	sh := pack[int(h%uint32(len(pack)))]
	c := hslToRGB(float64(h%360), 0.55, 0.6)
	return sh.name, renderAsset(sh, c)
}

// StarterPack returns the stickers a fresh account is seeded with, each
// shape in a hue spread evenly around the wheel.
func StarterPack(nowMs int64) []domain.Sticker {
	stickers := make([]domain.Sticker, 0, len(pack))
	for i, sh := range pack {
		hue := float64(i) * 360 / float64(len(pack))
		stickers = append(stickers, domain.Sticker{
			ID:          id.MustGenerate("stk"),
			Name:        sh.name,
			DataURL:     renderAsset(sh, hslToRGB(hue, 0.55, 0.6)),
			CreatedAt:   time.UnixMilli(nowMs),
			CreatedAtMs: nowMs,
		})
	}
	return stickers
}

// MarkerStore persists the per-user last-granted day-key and new stickers.
type MarkerStore interface {
	// DailyMarker returns the last day-key a daily sticker was granted for,
	// or "" if never.
	DailyMarker(ctx context.Context, userID string) (string, error)
	SetDailyMarker(ctx context.Context, userID, dayKey string) error
	CreateSticker(ctx context.Context, userID string, sticker *domain.Sticker) error
}

// Generator grants at most one daily sticker per calendar day per user.
type Generator struct {
	store  MarkerStore
	logger *logger.Logger
}

// NewGenerator creates a daily sticker generator.
func NewGenerator(store MarkerStore, log *logger.Logger) *Generator {
	return &Generator{store: store, logger: log}
}

// Grant issues the sticker-of-the-day for the user if it has not been
// granted yet today. Repeated invocations on the same day are no-ops
// returning nil; the marker is written only after the sticker exists so a
// failed create can be retried.
func (g *Generator) Grant(ctx context.Context, userID string, now time.Time) (*domain.Sticker, error) {
	day := id.DayKey(now)

	last, err := g.store.DailyMarker(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("read daily marker: %w", err)
	}
	if last == day {
		return nil, nil
	}

	name, dataURL := DeriveAsset(day)
	sticker := &domain.Sticker{
		ID:          id.MustGenerate("stk"),
		Name:        name + " of the day",
		DataURL:     dataURL,
		CreatedAt:   now,
		CreatedAtMs: now.UnixMilli(),
	}

	if err := g.store.CreateSticker(ctx, userID, sticker); err != nil {
		return nil, fmt.Errorf("create daily sticker: %w", err)
	}
	if err := g.store.SetDailyMarker(ctx, userID, day); err != nil {
		return nil, fmt.Errorf("write daily marker: %w", err)
	}

	g.logger.Info("granted daily sticker",
		"user_id", userID,
		"day", day,
		"asset", name,
	)
	return sticker, nil
}

// renderAsset paints a shape and encodes it as a PNG data URI.
func renderAsset(sh shape, c color.RGBA) string {
	img := image.NewRGBA(image.Rect(0, 0, assetSize, assetSize))
	sh.paint(img, c)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		// Encoding an in-memory RGBA cannot fail in practice.
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func paintDot(img *image.RGBA, c color.RGBA) {
	fillWhere(img, c, func(dx, dy float64) bool {
		return math.Hypot(dx, dy) < assetSize*0.38
	})
}

func paintRing(img *image.RGBA, c color.RGBA) {
	fillWhere(img, c, func(dx, dy float64) bool {
		d := math.Hypot(dx, dy)
		return d > assetSize*0.26 && d < assetSize*0.4
	})
}

func paintDiamond(img *image.RGBA, c color.RGBA) {
	fillWhere(img, c, func(dx, dy float64) bool {
		return math.Abs(dx)+math.Abs(dy) < assetSize*0.4
	})
}

func paintBlossom(img *image.RGBA, c color.RGBA) {
	fillWhere(img, c, func(dx, dy float64) bool {
		for i := 0; i < 5; i++ {
			angle := 2 * math.Pi * float64(i) / 5
			cx := math.Cos(angle) * assetSize * 0.22
			cy := math.Sin(angle) * assetSize * 0.22
			if math.Hypot(dx-cx, dy-cy) < assetSize*0.18 {
				return true
			}
		}
		return false
	})
}

func paintSparkle(img *image.RGBA, c color.RGBA) {
	fillWhere(img, c, func(dx, dy float64) bool {
		thin := assetSize * 0.07
		long := assetSize * 0.42
		return (math.Abs(dx) < thin && math.Abs(dy) < long) ||
			(math.Abs(dy) < thin && math.Abs(dx) < long)
	})
}

// fillWhere sets pixels where pred holds, with coordinates centered on the
// canvas midpoint.
func fillWhere(img *image.RGBA, c color.RGBA, pred func(dx, dy float64) bool) {
	mid := float64(assetSize) / 2
	for y := 0; y < assetSize; y++ {
		for x := 0; x < assetSize; x++ {
			if pred(float64(x)+0.5-mid, float64(y)+0.5-mid) {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

// hslToRGB converts HSL color space to RGB.
// h: hue (0-360), s: saturation (0-1), l: lightness (0-1).
func hslToRGB(h, s, l float64) color.RGBA {
	h /= 360.0

	var r1, g1, b1 float64
	if s == 0 {
		r1, g1, b1 = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q

		r1 = hueToRGB(p, q, h+1.0/3.0)
		g1 = hueToRGB(p, q, h)
		b1 = hueToRGB(p, q, h-1.0/3.0)
	}

	return color.RGBA{
		R: uint8(r1 * 255),
		G: uint8(g1 * 255),
		B: uint8(b1 * 255),
		A: 0xFF,
	}
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
