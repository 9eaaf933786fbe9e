package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"imagemill/internal/batch"
	"imagemill/internal/config"
	"imagemill/internal/fileutil"
	"imagemill/internal/logging"
)

// lockFileName guards a destination directory against concurrent exports.
const lockFileName = ".imagemill.lock"

// Summary reports what an export run did.
type Summary struct {
	Exported int
	Archive  string
	Elapsed  time.Duration
}

// Exporter writes completed batch outputs to their destination.
type Exporter struct {
	cfg    *config.Config
	store  *batch.Store
	logger *slog.Logger
}

// New constructs an Exporter.
func New(cfg *config.Config, store *batch.Store, logger *slog.Logger) *Exporter {
	return &Exporter{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "export"),
	}
}

// Files copies completed outputs into destDir one at a time, pausing the
// configured delay between copies. An empty destDir uses the configured
// output directory. With ids given, only those items are exported.
func (e *Exporter) Files(ctx context.Context, destDir string, ids ...string) (Summary, error) {
	start := time.Now()
	if destDir == "" {
		destDir = e.cfg.Paths.OutputDir
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("create destination: %w", err)
	}

	lock := flock.New(filepath.Join(destDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return Summary{}, fmt.Errorf("acquire export lock: %w", err)
	}
	if !locked {
		return Summary{}, fmt.Errorf("another export is writing to %s", destDir)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	items, err := e.completedItems(ctx, ids)
	if err != nil {
		return Summary{}, err
	}

	delay := time.Duration(e.cfg.Export.DownloadDelayMS) * time.Millisecond
	summary := Summary{}
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if i > 0 && delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return summary, ctx.Err()
			}
		}

		destPath := filepath.Join(destDir, item.OutputName)
		if fileutil.Exists(destPath) && !e.cfg.Export.OverwriteExisting {
			return summary, fmt.Errorf("destination file already exists: %s (enable overwrite_existing to replace)", destPath)
		}
		if err := fileutil.CopyFileVerified(item.OutputPath, destPath); err != nil {
			return summary, fmt.Errorf("export %s: %w", item.OutputName, err)
		}
		if _, err := e.store.MarkExported(ctx, item.ID); err != nil {
			return summary, err
		}
		summary.Exported++
		e.logger.Info("item exported",
			logging.String(logging.FieldItemID, item.ID),
			logging.String("output", destPath),
			logging.Int64("bytes", item.OutputSize),
		)
	}
	summary.Elapsed = time.Since(start)
	return summary, nil
}

// completedItems returns the completed batch items to export, in intake
// order. With ids given, only matching completed items are returned and a
// missing or unfinished id is an error.
func (e *Exporter) completedItems(ctx context.Context, ids []string) ([]*batch.Item, error) {
	items, err := e.store.List(ctx, batch.StatusCompleted)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return items, nil
	}

	byID := make(map[string]*batch.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	selected := make([]*batch.Item, 0, len(ids))
	for _, id := range ids {
		item, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("item %s is not completed", id)
		}
		selected = append(selected, item)
	}
	return selected, nil
}
