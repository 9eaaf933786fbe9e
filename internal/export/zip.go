package export

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"imagemill/internal/batch"
	"imagemill/internal/logging"
)

// Zip collects completed outputs into a single archive at archivePath. An
// empty archivePath places the configured archive name in the configured
// output directory. When two items share an output name the later item wins,
// matching archive-member replacement semantics.
func (e *Exporter) Zip(ctx context.Context, archivePath string, ids ...string) (Summary, error) {
	start := time.Now()
	if archivePath == "" {
		archivePath = filepath.Join(e.cfg.Paths.OutputDir, e.cfg.Export.ZipName)
	}
	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return Summary{}, fmt.Errorf("create destination: %w", err)
	}

	items, err := e.completedItems(ctx, ids)
	if err != nil {
		return Summary{}, err
	}
	if len(items) == 0 {
		return Summary{}, fmt.Errorf("no completed items to archive")
	}
	items = lastWins(items)

	if ok := e.cfg.Export.OverwriteExisting; !ok {
		if _, err := os.Stat(archivePath); err == nil {
			return Summary{}, fmt.Errorf("archive already exists: %s (enable overwrite_existing to replace)", archivePath)
		}
	}

	out, err := os.Create(archivePath)
	if err != nil {
		return Summary{}, fmt.Errorf("create archive: %w", err)
	}

	summary, zipErr := e.writeArchive(ctx, out, items)
	closeErr := out.Close()
	if zipErr == nil {
		zipErr = closeErr
	}
	if zipErr != nil {
		os.Remove(archivePath)
		return Summary{}, zipErr
	}

	exportedIDs := make([]string, 0, len(items))
	for _, item := range items {
		exportedIDs = append(exportedIDs, item.ID)
	}
	if _, err := e.store.MarkExported(ctx, exportedIDs...); err != nil {
		return Summary{}, err
	}

	summary.Archive = archivePath
	summary.Elapsed = time.Since(start)
	e.logger.Info("archive written",
		logging.String("archive", archivePath),
		logging.Int("items", summary.Exported),
	)
	return summary, nil
}

func (e *Exporter) writeArchive(ctx context.Context, out io.Writer, items []*batch.Item) (Summary, error) {
	zw := zip.NewWriter(out)
	summary := Summary{}
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		src, err := os.Open(item.OutputPath)
		if err != nil {
			return summary, fmt.Errorf("open output for %s: %w", item.OutputName, err)
		}
		entry, err := zw.Create(item.OutputName)
		if err != nil {
			src.Close()
			return summary, fmt.Errorf("add archive entry %s: %w", item.OutputName, err)
		}
		if _, err := io.Copy(entry, src); err != nil {
			src.Close()
			return summary, fmt.Errorf("write archive entry %s: %w", item.OutputName, err)
		}
		src.Close()
		summary.Exported++
	}
	if err := zw.Close(); err != nil {
		return summary, fmt.Errorf("finalize archive: %w", err)
	}
	return summary, nil
}

// lastWins drops earlier items whose output name is reused by a later item,
// preserving intake order for the survivors.
func lastWins(items []*batch.Item) []*batch.Item {
	lastIndex := make(map[string]int, len(items))
	for i, item := range items {
		lastIndex[item.OutputName] = i
	}
	survivors := make([]*batch.Item, 0, len(lastIndex))
	for i, item := range items {
		if lastIndex[item.OutputName] == i {
			survivors = append(survivors, item)
		}
	}
	return survivors
}
