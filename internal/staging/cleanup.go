// Package staging sweeps leftover conversion artifacts out of the staging
// directory. Sessions normally release their own previews and outputs when
// they end; the sweep reclaims files orphaned by crashes or killed watch
// sessions.
package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"imagemill/internal/logging"
)

// areas are the staging subdirectories that hold per-item artifacts.
var areas = []string{"outputs", "previews"}

// Result contains the outcome of a staging sweep.
type Result struct {
	Removed []string
	Errors  []SweepError
}

// SweepError pairs a path with the error that kept it in place.
type SweepError struct {
	Path  string
	Error error
}

// CleanStale removes staged files older than maxAge from the outputs and
// previews areas. A maxAge of zero removes every file present. Directories
// and the area roots themselves are left in place.
func CleanStale(ctx context.Context, stagingDir string, maxAge time.Duration, logger *slog.Logger) Result {
	result := Result{}

	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" {
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, area := range areas {
		if ctx.Err() != nil {
			return result
		}
		sweepArea(filepath.Join(stagingDir, area), cutoff, logger, &result)
	}
	return result
}

func sweepArea(dir string, cutoff time.Time, logger *slog.Logger, result *Result) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, SweepError{Path: dir, Error: err})
		}
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, SweepError{Path: path, Error: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.Remove(path); err != nil {
			result.Errors = append(result.Errors, SweepError{Path: path, Error: err})
			if logger != nil {
				logger.Warn("failed to remove stale staging file",
					logging.String("path", path),
					logging.Error(err))
			}
			continue
		}
		result.Removed = append(result.Removed, path)
		if logger != nil {
			logger.Info("removed stale staging file",
				logging.String("path", path),
				logging.Duration("age", time.Since(info.ModTime())))
		}
	}
}
