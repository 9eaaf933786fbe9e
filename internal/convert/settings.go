package convert

import (
	"fmt"
	"strings"

	"imagemill/internal/config"
)

// Mode selects how target dimensions are derived from the source.
type Mode string

const (
	// ModeScale multiplies the natural dimensions by a factor.
	ModeScale Mode = "scale"
	// ModePixel interprets Width and Height as pixels.
	ModePixel Mode = "pixel"
	// ModeCentimeter interprets Width and Height as printed centimeters.
	ModeCentimeter Mode = "centimeter"
)

// ParseMode normalizes a user-supplied resize mode. "cm" is accepted as an
// alias for centimeter.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "scale":
		return ModeScale, nil
	case "pixel", "px":
		return ModePixel, nil
	case "centimeter", "cm":
		return ModeCentimeter, nil
	default:
		return "", fmt.Errorf("%w: unknown resize mode %q (expected scale, pixel, or cm)", ErrInvalidSettings, value)
	}
}

func (m Mode) String() string {
	return string(m)
}

// Settings is a complete conversion policy for one pass over a batch.
type Settings struct {
	Format     Format
	Quality    float64
	Mode       Mode
	Scale      float64
	Width      *float64
	Height     *float64
	KeepAspect bool
	BaseName   string
	Sequence   bool
}

// SettingsFromConfig builds the baseline settings from configuration.
// Per-invocation values (target dimensions, rename base) are layered on by
// the caller afterwards.
func SettingsFromConfig(cfg *config.Config) (Settings, error) {
	format, err := ParseFormat(cfg.Convert.Format)
	if err != nil {
		return Settings{}, err
	}
	mode, err := ParseMode(cfg.Convert.ResizeMode)
	if err != nil {
		return Settings{}, err
	}
	settings := Settings{
		Format:     format,
		Quality:    cfg.Convert.Quality,
		Mode:       mode,
		Scale:      cfg.Convert.Scale,
		KeepAspect: cfg.Convert.KeepAspect,
		Sequence:   cfg.Convert.Sequence,
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Validate checks the policy for values the engine cannot act on.
func (s Settings) Validate() error {
	switch s.Format {
	case FormatJPEG, FormatPNG, FormatWEBP:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, s.Format)
	}
	if s.Quality <= 0 || s.Quality > 1 {
		return fmt.Errorf("%w: quality %v is outside (0, 1]", ErrInvalidSettings, s.Quality)
	}
	switch s.Mode {
	case ModeScale, ModePixel, ModeCentimeter:
	default:
		return fmt.Errorf("%w: unknown resize mode %q", ErrInvalidSettings, s.Mode)
	}
	if s.Mode == ModeScale && s.Scale <= 0 {
		return fmt.Errorf("%w: scale factor %v must be positive", ErrInvalidSettings, s.Scale)
	}
	if s.Width != nil && *s.Width <= 0 {
		return fmt.Errorf("%w: width %v must be positive", ErrInvalidSettings, *s.Width)
	}
	if s.Height != nil && *s.Height <= 0 {
		return fmt.Errorf("%w: height %v must be positive", ErrInvalidSettings, *s.Height)
	}
	return nil
}

// codecQuality converts the quality fraction to the 1..100 range shared by
// the JPEG and WEBP encoders.
func (s Settings) codecQuality() int {
	quality := int(s.Quality*100 + 0.5)
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}
	return quality
}
