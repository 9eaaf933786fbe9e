package metadata

import (
	"fmt"
	"io"
	"os"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
)

// Summary reports the identifying EXIF fields found in a source image.
type Summary struct {
	TagCount    int
	CameraMake  string
	CameraModel string
	Software    string
	Taken       string
	HasGPS      bool
	GPSCount    int
	SerialCount int
}

// HasMetadata reports whether the source carries any EXIF tags at all.
func (s Summary) HasMetadata() bool {
	return s.TagCount > 0
}

// Discards lists the categories of identifying metadata a re-encode removes.
func (s Summary) Discards() []string {
	categories := []string{}
	if s.HasGPS {
		categories = append(categories, "GPS")
	}
	if s.CameraMake != "" || s.CameraModel != "" {
		categories = append(categories, "Device Model")
	}
	if s.Taken != "" {
		categories = append(categories, "Timestamp")
	}
	if s.SerialCount > 0 {
		categories = append(categories, "Serial Number")
	}
	return categories
}

// Summarize scans rs for EXIF data. A source without EXIF yields a zero
// Summary and no error.
func Summarize(rs io.ReadSeeker) (Summary, error) {
	summary := Summary{}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return summary, fmt.Errorf("seek source: %w", err)
	}

	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(rs, nil, true)
	if err != nil {
		if isNoExif(err) {
			return summary, nil
		}
		return summary, fmt.Errorf("scan exif: %w", err)
	}

	summary.TagCount = len(tags)
	for _, tag := range tags {
		name := tag.TagName
		if strings.HasPrefix(name, "GPS") || strings.Contains(tag.IfdPath, "GPS") {
			summary.HasGPS = true
			summary.GPSCount++
		}
		switch name {
		case "Make":
			summary.CameraMake = tag.Formatted
		case "Model", "CameraModelName":
			summary.CameraModel = tag.Formatted
		case "Software":
			summary.Software = tag.Formatted
		case "DateTimeOriginal":
			summary.Taken = tag.Formatted
		case "DateTimeDigitized", "DateTime":
			if summary.Taken == "" {
				summary.Taken = tag.Formatted
			}
		}
		if strings.Contains(strings.ToLower(name), "serial") {
			summary.SerialCount++
		}
	}

	return summary, nil
}

// SummarizeFile scans the image at path.
func SummarizeFile(path string) (Summary, error) {
	file, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("open source: %w", err)
	}
	defer file.Close()
	return Summarize(file)
}

// go-exif wraps its no-EXIF sentinel, so match by message.
func isNoExif(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "no exif")
}
