package convert

import "math"

// pixelsPerCentimeter converts printed centimeters to pixels at 96 dpi.
const pixelsPerCentimeter = 37.795

// TargetSize computes the output dimensions for a source of the given natural
// size under the settings' resize policy. Both results are clamped to a
// minimum of one pixel.
func TargetSize(naturalWidth, naturalHeight int, s Settings) (int, int) {
	if naturalWidth < 1 {
		naturalWidth = 1
	}
	if naturalHeight < 1 {
		naturalHeight = 1
	}

	if s.Mode == ModeScale {
		return clampDimension(math.Round(float64(naturalWidth) * s.Scale)),
			clampDimension(math.Round(float64(naturalHeight) * s.Scale))
	}

	width, height := s.Width, s.Height
	if s.Mode == ModeCentimeter {
		width = centimetersToPixels(width)
		height = centimetersToPixels(height)
	}

	switch {
	case width == nil && height == nil:
		return naturalWidth, naturalHeight
	case !s.KeepAspect:
		outWidth, outHeight := float64(naturalWidth), float64(naturalHeight)
		if width != nil {
			outWidth = *width
		}
		if height != nil {
			outHeight = *height
		}
		return clampDimension(math.Round(outWidth)), clampDimension(math.Round(outHeight))
	case width != nil && height != nil:
		// Contain fit: the smaller factor keeps both dimensions inside the box.
		factor := math.Min(*width/float64(naturalWidth), *height/float64(naturalHeight))
		return clampDimension(math.Round(float64(naturalWidth) * factor)),
			clampDimension(math.Round(float64(naturalHeight) * factor))
	case width != nil:
		factor := *width / float64(naturalWidth)
		return clampDimension(math.Round(*width)),
			clampDimension(math.Round(float64(naturalHeight) * factor))
	default:
		factor := *height / float64(naturalHeight)
		return clampDimension(math.Round(float64(naturalWidth) * factor)),
			clampDimension(math.Round(*height))
	}
}

func centimetersToPixels(value *float64) *float64 {
	if value == nil {
		return nil
	}
	pixels := *value * pixelsPerCentimeter
	return &pixels
}

func clampDimension(value float64) int {
	if value < 1 || math.IsNaN(value) {
		return 1
	}
	return int(value)
}
