// Package photo normalises friend photos before they are stored.
package photo

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/mmynk/kinship/internal/apperr"
)

const (
	// MaxDimension bounds the longest side of a stored photo in pixels.
	MaxDimension = 800

	// Quality is the JPEG quality stored photos are encoded at.
	Quality = 80
)

// ErrUnsupported is returned for data that is not a JPEG, PNG or WebP image.
var ErrUnsupported = apperr.InvalidArg("photo must be a JPEG, PNG or WebP image")

// Normalize decodes data, scales it so neither side exceeds MaxDimension and
// re-encodes it as JPEG.
func Normalize(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrUnsupported
	}

	w, h := fit(src.Bounds().Dx(), src.Bounds().Dy())
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	// JPEG has no alpha, flatten onto white.
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode photo: %w", err)
	}
	return buf.Bytes(), nil
}

// fit scales w x h down so the longest side is at most MaxDimension,
// keeping the aspect ratio.
func fit(w, h int) (int, int) {
	if w <= MaxDimension && h <= MaxDimension {
		return w, h
	}
	if w >= h {
		return MaxDimension, max(1, h*MaxDimension/w)
	}
	return max(1, w*MaxDimension/h), MaxDimension
}
