package convert

import (
	"fmt"
	"strings"
)

// Format identifies a supported output image format.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatWEBP Format = "webp"
)

var allFormats = []Format{FormatJPEG, FormatPNG, FormatWEBP}

// Formats returns the supported output formats in display order.
func Formats() []Format {
	out := make([]Format, len(allFormats))
	copy(out, allFormats)
	return out
}

// ParseFormat normalizes a user-supplied format name. "jpg" is accepted as an
// alias for jpeg.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	case "webp":
		return FormatWEBP, nil
	default:
		return "", fmt.Errorf("%w: %q (expected jpeg, png, or webp)", ErrUnsupportedFormat, value)
	}
}

func (f Format) String() string {
	return string(f)
}

// Extension returns the output filename extension without the leading dot.
func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return "jpg"
	case FormatPNG:
		return "png"
	case FormatWEBP:
		return "webp"
	default:
		return string(f)
	}
}

// MIME returns the media type emitted for this format.
func (f Format) MIME() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatWEBP:
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// UsesQuality reports whether the format's encoder honors a quality setting.
// PNG is lossless and ignores it.
func (f Format) UsesQuality() bool {
	return f != FormatPNG
}
