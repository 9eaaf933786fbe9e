package convert

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/disintegration/imaging"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"

	// Registers the WEBP decoder; JPEG, PNG, GIF, TIFF, and BMP decoding is
	// registered by the imaging package.
	_ "golang.org/x/image/webp"

	"imagemill/internal/logging"
)

// Result describes a completed conversion.
type Result struct {
	SourceWidth  int
	SourceHeight int
	Width        int
	Height       int
	OutputBytes  int64
	Elapsed      time.Duration
}

// Engine converts images according to a Settings policy.
type Engine struct {
	logger *slog.Logger
}

// NewEngine constructs a conversion engine.
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: logging.NewComponentLogger(logger, "convert")}
}

// Convert decodes src, resizes it per the settings, and encodes the result to
// dst. The context is consulted between the decode, resize, and encode steps
// so a cancelled batch does not finish expensive work.
func (e *Engine) Convert(ctx context.Context, src io.Reader, dst io.Writer, settings Settings) (Result, error) {
	if err := settings.Validate(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	start := time.Now()
	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return Result{}, fmt.Errorf("%w: decode image: %w", ErrDecode, err)
	}

	bounds := img.Bounds()
	result := Result{SourceWidth: bounds.Dx(), SourceHeight: bounds.Dy()}
	result.Width, result.Height = TargetSize(result.SourceWidth, result.SourceHeight, settings)

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if result.Width != result.SourceWidth || result.Height != result.SourceHeight {
		img = imaging.Resize(img, result.Width, result.Height, imaging.Lanczos)
	}
	if settings.Format == FormatJPEG {
		img = matteWhite(img)
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	counting := &countingWriter{dst: dst}
	if err := encode(counting, img, settings); err != nil {
		return Result{}, err
	}
	result.OutputBytes = counting.written
	result.Elapsed = time.Since(start)

	e.logger.Debug("image converted",
		logging.String("format", settings.Format.String()),
		logging.Int("source_width", result.SourceWidth),
		logging.Int("source_height", result.SourceHeight),
		logging.Int("width", result.Width),
		logging.Int("height", result.Height),
		logging.Int64("bytes", result.OutputBytes),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

// ConvertFile converts inputPath into outputPath. The output file is removed
// again when conversion fails so half-written images never survive.
func (e *Engine) ConvertFile(ctx context.Context, inputPath, outputPath string, settings Settings) (Result, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return Result{}, fmt.Errorf("%w: open source: %w", ErrDecode, err)
	}
	defer in.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return Result{}, fmt.Errorf("%w: create output: %w", ErrEncode, err)
	}

	result, convertErr := e.Convert(ctx, in, out, settings)
	closeErr := out.Close()
	if convertErr != nil {
		os.Remove(outputPath)
		return Result{}, convertErr
	}
	if closeErr != nil {
		os.Remove(outputPath)
		return Result{}, fmt.Errorf("%w: close output: %w", ErrEncode, closeErr)
	}
	return result, nil
}

func encode(dst io.Writer, img image.Image, settings Settings) error {
	switch settings.Format {
	case FormatJPEG:
		if err := imaging.Encode(dst, img, imaging.JPEG, imaging.JPEGQuality(settings.codecQuality())); err != nil {
			return fmt.Errorf("%w: encode jpeg: %w", ErrEncode, err)
		}
	case FormatPNG:
		if err := imaging.Encode(dst, img, imaging.PNG); err != nil {
			return fmt.Errorf("%w: encode png: %w", ErrEncode, err)
		}
	case FormatWEBP:
		options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(settings.codecQuality()))
		if err != nil {
			return fmt.Errorf("%w: configure webp encoder: %w", ErrEncode, err)
		}
		if err := webp.Encode(dst, img, options); err != nil {
			return fmt.Errorf("%w: encode webp: %w", ErrEncode, err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, settings.Format)
	}
	return nil
}

// matteWhite composites the image over an opaque white background. JPEG has
// no alpha channel, and discarding it silently would turn transparent PNG
// regions black.
func matteWhite(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	matte := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.Paste(matte, img, image.Pt(0, 0))
}

type countingWriter struct {
	dst     io.Writer
	written int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	n, err := w.dst.Write(p)
	w.written += int64(n)
	return n, err
}
