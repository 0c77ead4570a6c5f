package draw

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/bbrks/go-blurhash"
	xdraw "golang.org/x/image/draw"

	"github.com/cozyshelfapp/shelf-server/internal/domain"
)

// Thumbnail dimensions preserve the 3:2 canvas aspect ratio.
const (
	ThumbWidth  = 300
	ThumbHeight = 200
)

// blurHashSize is the size thumbnails are shrunk to before BlurHash
// computation. BlurHash is a low-resolution placeholder, so a small input
// produces a near-identical hash in a fraction of the time.
const blurHashSize = 64

// RenderThumbnail does a full redraw of the doodle and downscales it to
// thumbnail size. The returned BlurHash string is stored alongside the
// doodle so later fast renders have a placeholder if an element payload
// loses the decode race.
func RenderThumbnail(d *domain.Doodle) (*image.RGBA, string) {
	surface := NewSurface()
	surface.Render(d)

	thumb := image.NewRGBA(image.Rect(0, 0, ThumbWidth, ThumbHeight))
	xdraw.ApproxBiLinear.Scale(thumb, thumb.Bounds(), surface.Image(), surface.Image().Bounds(), xdraw.Src, nil)

	hash := computeBlurHash(thumb)
	return thumb, hash
}

// ThumbnailPNG renders the doodle thumbnail and encodes it as PNG.
func ThumbnailPNG(d *domain.Doodle) ([]byte, string, error) {
	thumb, hash := RenderThumbnail(d)

	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		return nil, "", fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), hash, nil
}

// Placeholder reconstructs a thumbnail-sized image from a stored BlurHash.
// A missing or corrupt hash degrades to a flat placeholder tile rather than
// an error; placeholder rendering is always best effort.
func Placeholder(hash string) *image.RGBA {
	if hash != "" {
		if img, err := blurhash.Decode(hash, ThumbWidth, ThumbHeight, 1); err == nil {
			if rgba, ok := img.(*image.RGBA); ok {
				return rgba
			}
			rgba := image.NewRGBA(img.Bounds())
			xdraw.Copy(rgba, image.Point{}, img, img.Bounds(), xdraw.Src, nil)
			return rgba
		}
	}

	flat := image.NewRGBA(image.Rect(0, 0, ThumbWidth, ThumbHeight))
	xdraw.Copy(flat, image.Point{}, image.NewUniform(placeholderGray), flat.Bounds(), xdraw.Src, nil)
	return flat
}

// computeBlurHash hashes a small copy of the image. 4x3 components keep the
// hash in the 20-30 character range while still resembling the doodle.
func computeBlurHash(img image.Image) string {
	small := image.NewRGBA(image.Rect(0, 0, blurHashSize, blurHashSize))
	xdraw.ApproxBiLinear.Scale(small, small.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	hash, err := blurhash.Encode(4, 3, small)
	if err != nil {
		return ""
	}
	return hash
}
