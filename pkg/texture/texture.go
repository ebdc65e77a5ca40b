// Package texture synthesizes, encodes and decodes the images embedded in
// GLB files.
package texture

import (
	"errors"
	"fmt"
	"strings"
)

// Texture errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrInvalidDimensions = errors.New("invalid image dimensions")
)

// DefaultJPEGQuality is used when a JPEG quality of zero is requested.
const DefaultJPEGQuality = 90

// MIME types of the formats glTF allows for embedded images.
const (
	MIMEPNG  = "image/png"
	MIMEJPEG = "image/jpeg"
	MIMEWebP = "image/webp"
)

// Format is an encoded image format.
type Format int

// Supported output formats.
const (
	PNG Format = iota
	JPEG
	WebP
)

// String returns the lowercase format name.
func (f Format) String() string {
	switch f {
	case PNG:
		return "png"
	case JPEG:
		return "jpeg"
	case WebP:
		return "webp"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// MIME returns the format's MIME type.
func (f Format) MIME() string {
	switch f {
	case PNG:
		return MIMEPNG
	case JPEG:
		return MIMEJPEG
	case WebP:
		return MIMEWebP
	default:
		return ""
	}
}

// ParseFormat accepts a format name ("png", "jpeg"/"jpg", "webp") or a MIME type.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png", MIMEPNG:
		return PNG, nil
	case "jpeg", "jpg", MIMEJPEG:
		return JPEG, nil
	case "webp", MIMEWebP:
		return WebP, nil
	default:
		return 0, fmt.Errorf("%q: %w", s, ErrUnsupportedFormat)
	}
}

func checkDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%dx%d: %w", width, height, ErrInvalidDimensions)
	}
	return nil
}
