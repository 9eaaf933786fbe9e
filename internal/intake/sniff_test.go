package intake_test

import (
	"testing"

	"imagemill/internal/intake"
)

func TestSniffBytesRecognizesSupportedFormats(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}, "image/jpeg"},
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0}, "image/png"},
		{"webp", []byte("RIFF\x24\x00\x00\x00WEBPVP8 "), "image/webp"},
		{"gif87", []byte("GIF87a\x01\x00"), "image/gif"},
		{"gif89", []byte("GIF89a\x01\x00"), "image/gif"},
		{"tiff little endian", []byte{'I', 'I', 0x2A, 0x00, 0, 0}, "image/tiff"},
		{"tiff big endian", []byte{'M', 'M', 0x00, 0x2A, 0, 0}, "image/tiff"},
		{"bmp", []byte("BM\x36\x00\x00\x00"), "image/bmp"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := intake.SniffBytes(tc.head)
			if !ok {
				t.Fatalf("SniffBytes(%q) not recognized", tc.head)
			}
			if got != tc.want {
				t.Fatalf("SniffBytes = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSniffBytesRejectsOthers(t *testing.T) {
	for _, head := range [][]byte{
		nil,
		[]byte("plain text file"),
		[]byte("RIFF\x24\x00\x00\x00WAVE"),
		[]byte{0xFF, 0xD7},
	} {
		if mime, ok := intake.SniffBytes(head); ok {
			t.Fatalf("SniffBytes(%q) unexpectedly recognized as %s", head, mime)
		}
	}
}
