// Package imagegen implements validation-gated image generation.
//
// verify.go contains the decode-check applied to every network payload
// before it enters the cache. A body that does not decode as an image is
// a network failure, not a cache entry.
package imagegen

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Image verification errors
var (
	// ErrEmptyImage is returned for a zero-length payload
	ErrEmptyImage = errors.New("imagegen: empty image data")

	// ErrInvalidImage is returned when the payload does not decode as
	// any supported format (PNG, JPEG, GIF, WebP)
	ErrInvalidImage = errors.New("imagegen: invalid image data")
)

// ImageInfo describes a verified image payload.
type ImageInfo struct {
	// Format is the detected encoding ("png", "jpeg", "gif", "webp")
	Format string

	// Width and Height are the decoded pixel dimensions
	Width  int
	Height int
}

// VerifyImage checks that data is a well-formed image and returns its
// format and dimensions. Only the header is decoded; the full pixel data
// is not materialized. Pure function.
func VerifyImage(data []byte) (ImageInfo, error) {
	if len(data) == 0 {
		return ImageInfo{}, ErrEmptyImage
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return ImageInfo{}, fmt.Errorf("%w: non-positive dimensions %dx%d", ErrInvalidImage, cfg.Width, cfg.Height)
	}

	return ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}
