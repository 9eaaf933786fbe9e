package convert_test

import (
	"errors"
	"testing"

	"imagemill/internal/convert"
)

func TestParseFormatAcceptsAliases(t *testing.T) {
	for input, want := range map[string]convert.Format{
		"jpeg": convert.FormatJPEG,
		"JPG":  convert.FormatJPEG,
		" png": convert.FormatPNG,
		"WebP": convert.FormatWEBP,
	} {
		got, err := convert.ParseFormat(input)
		if err != nil {
			t.Fatalf("ParseFormat(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseFormat(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestParseFormatRejectsUnknown(t *testing.T) {
	if _, err := convert.ParseFormat("gif"); !errors.Is(err, convert.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestFormatExtensionAndMIME(t *testing.T) {
	tests := []struct {
		format convert.Format
		ext    string
		mime   string
	}{
		{convert.FormatJPEG, "jpg", "image/jpeg"},
		{convert.FormatPNG, "png", "image/png"},
		{convert.FormatWEBP, "webp", "image/webp"},
	}
	for _, tc := range tests {
		if got := tc.format.Extension(); got != tc.ext {
			t.Fatalf("%s extension = %q, want %q", tc.format, got, tc.ext)
		}
		if got := tc.format.MIME(); got != tc.mime {
			t.Fatalf("%s mime = %q, want %q", tc.format, got, tc.mime)
		}
	}
}

func TestFormatUsesQuality(t *testing.T) {
	if convert.FormatPNG.UsesQuality() {
		t.Fatal("png should ignore quality")
	}
	if !convert.FormatJPEG.UsesQuality() || !convert.FormatWEBP.UsesQuality() {
		t.Fatal("jpeg and webp should honor quality")
	}
}

func TestParseModeAcceptsAliases(t *testing.T) {
	for input, want := range map[string]convert.Mode{
		"scale":      convert.ModeScale,
		"Pixel":      convert.ModePixel,
		"px":         convert.ModePixel,
		"cm":         convert.ModeCentimeter,
		"centimeter": convert.ModeCentimeter,
	} {
		got, err := convert.ParseMode(input)
		if err != nil {
			t.Fatalf("ParseMode(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseMode(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestParseModeRejectsUnknown(t *testing.T) {
	if _, err := convert.ParseMode("stretch"); !errors.Is(err, convert.ErrInvalidSettings) {
		t.Fatalf("expected ErrInvalidSettings, got %v", err)
	}
}
