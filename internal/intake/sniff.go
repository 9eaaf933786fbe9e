package intake

import (
	"bytes"
	"io"
	"os"
)

// sniffLen is the number of leading bytes needed to recognize every
// supported container.
const sniffLen = 16

// SniffBytes reports the MIME type matching the magic bytes at the start of
// head, or false when no supported image format matches.
func SniffBytes(head []byte) (string, bool) {
	switch {
	case len(head) >= 3 && bytes.Equal(head[:3], []byte{0xFF, 0xD8, 0xFF}):
		return "image/jpeg", true
	case len(head) >= 8 && bytes.Equal(head[:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}):
		return "image/png", true
	case len(head) >= 12 && bytes.Equal(head[:4], []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WEBP")):
		return "image/webp", true
	case len(head) >= 6 && (bytes.Equal(head[:6], []byte("GIF87a")) || bytes.Equal(head[:6], []byte("GIF89a"))):
		return "image/gif", true
	case len(head) >= 4 && (bytes.Equal(head[:4], []byte{'I', 'I', 0x2A, 0x00}) || bytes.Equal(head[:4], []byte{'M', 'M', 0x00, 0x2A})):
		return "image/tiff", true
	case len(head) >= 2 && bytes.Equal(head[:2], []byte("BM")):
		return "image/bmp", true
	default:
		return "", false
	}
}

// Sniff reads the head of the file at path and reports its detected MIME
// type, or false when the file is unreadable or not a supported image.
func Sniff(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return "", false
	}
	return SniffBytes(head[:n])
}
