package main

import (
	"github.com/spf13/cobra"

	"imagemill/internal/config"
	"imagemill/internal/convert"
)

// settingsFlags holds the per-invocation conversion overrides shared by the
// convert and watch commands. A value only takes effect when its flag was
// set on the command line, so untouched flags leave the configuration
// defaults alone.
type settingsFlags struct {
	format     string
	quality    float64
	resizeMode string
	scale      float64
	width      float64
	height     float64
	keepAspect bool
	baseName   string
	sequence   bool
}

func registerSettingsFlags(cmd *cobra.Command, flags *settingsFlags) {
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "Output format (jpeg, png, or webp)")
	cmd.Flags().Float64VarP(&flags.quality, "quality", "q", 0, "Encode quality as a fraction in (0, 1]")
	cmd.Flags().StringVar(&flags.resizeMode, "resize-mode", "", "Resize mode (scale, pixel, or cm)")
	cmd.Flags().Float64Var(&flags.scale, "scale", 0, "Size multiplier for scale mode")
	cmd.Flags().Float64Var(&flags.width, "width", 0, "Target width in pixels, or centimeters with --resize-mode cm")
	cmd.Flags().Float64Var(&flags.height, "height", 0, "Target height in pixels, or centimeters with --resize-mode cm")
	cmd.Flags().BoolVar(&flags.keepAspect, "keep-aspect", true, "Preserve the source aspect ratio when resizing")
	cmd.Flags().StringVar(&flags.baseName, "base-name", "", "Replacement base name for output files")
	cmd.Flags().BoolVar(&flags.sequence, "sequence", false, "Append a sequential number to output names")
}

func (f *settingsFlags) apply(cmd *cobra.Command, cfg *config.Config) (convert.Settings, error) {
	settings, err := convert.SettingsFromConfig(cfg)
	if err != nil {
		return convert.Settings{}, err
	}

	set := cmd.Flags()
	if set.Changed("format") {
		format, err := convert.ParseFormat(f.format)
		if err != nil {
			return convert.Settings{}, err
		}
		settings.Format = format
	}
	if set.Changed("quality") {
		settings.Quality = f.quality
	}
	if set.Changed("resize-mode") {
		mode, err := convert.ParseMode(f.resizeMode)
		if err != nil {
			return convert.Settings{}, err
		}
		settings.Mode = mode
	}
	if set.Changed("scale") {
		settings.Scale = f.scale
	}
	if set.Changed("width") {
		width := f.width
		settings.Width = &width
	}
	if set.Changed("height") {
		height := f.height
		settings.Height = &height
	}
	// A bare --width or --height implies pixel mode unless a mode was
	// chosen explicitly.
	if !set.Changed("resize-mode") && settings.Mode == convert.ModeScale &&
		(set.Changed("width") || set.Changed("height")) {
		settings.Mode = convert.ModePixel
	}
	if set.Changed("keep-aspect") {
		settings.KeepAspect = f.keepAspect
	}
	if set.Changed("base-name") {
		settings.BaseName = f.baseName
	}
	if set.Changed("sequence") {
		settings.Sequence = f.sequence
	}

	if err := settings.Validate(); err != nil {
		return convert.Settings{}, err
	}
	return settings, nil
}
