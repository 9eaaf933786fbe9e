package intake

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	// Registers the WEBP decoder for dimension probing and previews.
	_ "golang.org/x/image/webp"

	"imagemill/internal/batch"
	"imagemill/internal/config"
	"imagemill/internal/logging"
)

// Skipped records a path that was not admitted and why.
type Skipped struct {
	Path   string
	Reason string
}

// Result summarizes one Scan call.
type Result struct {
	Added   []*batch.Item
	Skipped []Skipped
}

// Intake admits files into the batch store.
type Intake struct {
	cfg    *config.Config
	store  *batch.Store
	logger *slog.Logger
}

// New constructs an Intake.
func New(cfg *config.Config, store *batch.Store, logger *slog.Logger) *Intake {
	return &Intake{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "intake"),
	}
}

// Scan admits the given files and directories. Directories contribute their
// regular files in name order; recursive descends into subdirectories.
// Unsupported and unreadable paths are collected as skipped, never as errors.
func (in *Intake) Scan(ctx context.Context, paths []string, recursive bool) (Result, error) {
	var result Result
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		info, err := os.Stat(path)
		if err != nil {
			result.skip(in.logger, path, "not readable")
			continue
		}
		if info.IsDir() {
			if err := in.scanDir(ctx, path, recursive, &result); err != nil {
				return result, err
			}
			continue
		}
		in.addFile(ctx, path, &result)
	}
	return result, nil
}

// Add admits a single file and returns its item, or nil when it was skipped.
func (in *Intake) Add(ctx context.Context, path string) (*batch.Item, error) {
	var result Result
	in.addFile(ctx, path, &result)
	if len(result.Added) == 0 {
		if len(result.Skipped) > 0 {
			return nil, fmt.Errorf("skipped %s: %s", path, result.Skipped[0].Reason)
		}
		return nil, fmt.Errorf("skipped %s", path)
	}
	return result.Added[0], nil
}

func (in *Intake) scanDir(ctx context.Context, dir string, recursive bool, result *Result) error {
	if recursive {
		return filepath.WalkDir(dir, func(path string, entry os.DirEntry, err error) error {
			if err != nil {
				result.skip(in.logger, path, "not readable")
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if entry.Type().IsRegular() {
				in.addFile(ctx, path, result)
			}
			return nil
		})
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		result.skip(in.logger, dir, "not readable")
		return nil
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.Type().IsRegular() {
			in.addFile(ctx, filepath.Join(dir, entry.Name()), result)
		}
	}
	return nil
}

func (in *Intake) addFile(ctx context.Context, path string, result *Result) {
	mimeType, ok := Sniff(path)
	if !ok {
		result.skip(in.logger, path, "not a supported image")
		return
	}

	existing, err := in.store.FindBySourcePath(ctx, path)
	if err != nil {
		result.skip(in.logger, path, fmt.Sprintf("lookup failed: %v", err))
		return
	}
	if existing != nil {
		result.skip(in.logger, path, "already in batch")
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		result.skip(in.logger, path, "not readable")
		return
	}
	width, height := probeDimensions(path)

	item, err := in.store.Add(ctx, batch.NewItem{
		SourcePath:   path,
		SourceName:   filepath.Base(path),
		SourceSize:   info.Size(),
		SourceType:   mimeType,
		SourceWidth:  width,
		SourceHeight: height,
	})
	if err != nil {
		result.skip(in.logger, path, fmt.Sprintf("store rejected: %v", err))
		return
	}

	if in.cfg.Intake.Previews {
		if previewPath, err := in.writePreview(item.ID, path); err != nil {
			in.logger.Warn("preview generation failed",
				logging.String("source", path),
				logging.Error(err))
		} else {
			item.PreviewPath = previewPath
			if err := in.store.Update(ctx, item); err != nil {
				in.logger.Warn("record preview failed",
					logging.String(logging.FieldItemID, item.ID),
					logging.Error(err))
			}
		}
	}

	in.logger.Info("item added",
		logging.String(logging.FieldItemID, item.ID),
		logging.String("source", path),
		logging.String("type", mimeType),
		logging.Int("width", width),
		logging.Int("height", height),
	)
	result.Added = append(result.Added, item)
}

// writePreview renders a small thumbnail for UI-style listings. Preview
// failures are reported to the caller and never fail the intake.
func (in *Intake) writePreview(id, sourcePath string) (string, error) {
	dir := filepath.Join(in.cfg.Paths.StagingDir, "previews")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create preview dir: %w", err)
	}

	img, err := imaging.Open(sourcePath, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}
	size := in.cfg.Intake.PreviewSize
	if size <= 0 {
		size = 256
	}
	thumb := imaging.Fit(img, size, size, imaging.Lanczos)

	previewPath := filepath.Join(dir, id+".jpg")
	if err := imaging.Save(thumb, previewPath, imaging.JPEGQuality(80)); err != nil {
		return "", fmt.Errorf("save preview: %w", err)
	}
	return previewPath, nil
}

// Release removes the preview thumbnail and any staged output belonging to
// the given items. Called when items leave the batch.
func Release(logger *slog.Logger, items ...*batch.Item) {
	for _, item := range items {
		if item == nil {
			continue
		}
		for _, path := range []string{item.PreviewPath, item.OutputPath} {
			if path == "" {
				continue
			}
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				logger.Warn("release file failed",
					logging.String(logging.FieldItemID, item.ID),
					logging.String("path", path),
					logging.Error(err))
			}
		}
	}
}

// probeDimensions decodes just the image header for natural width and
// height. Zero values mean the header could not be parsed; conversion may
// still succeed and will report real dimensions.
func probeDimensions(path string) (int, int) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

func (r *Result) skip(logger *slog.Logger, path, reason string) {
	logger.Warn("file skipped", logging.String("path", path), logging.String("reason", reason))
	r.Skipped = append(r.Skipped, Skipped{Path: path, Reason: reason})
}
