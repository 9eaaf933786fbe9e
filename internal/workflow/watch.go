package workflow

import (
	"context"
	"errors"
	"time"

	"imagemill/internal/convert"
	"imagemill/internal/logging"
	"imagemill/internal/watcher"
)

// WatchOptions configures continuous dropzone processing.
type WatchOptions struct {
	// Dir is the dropzone directory to monitor.
	Dir string
	// Settings apply to every conversion the watch loop runs.
	Settings convert.Settings
	// Export copies each completed item to the output directory as passes
	// finish instead of waiting for an explicit export command.
	Export bool
}

// Start begins watching the dropzone in the background. Files already in the
// dropzone are admitted and converted before the first event arrives.
func (m *Manager) Start(ctx context.Context, opts WatchOptions) error {
	if err := opts.Settings.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("watch already running")
	}

	w, err := watcher.New(opts.Dir, 0, m.logger)
	if err != nil {
		m.mu.Unlock()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.runWatch(runCtx, w, opts)
	return nil
}

// Stop cancels watch mode and waits for the loop to drain.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Running reports whether watch mode is active.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Manager) runWatch(ctx context.Context, w *watcher.Watcher, opts WatchOptions) {
	defer m.wg.Done()
	defer func() {
		if err := w.Close(); err != nil {
			m.logger.Warn("close watcher failed", logging.Error(err))
		}
	}()

	m.scanDropzone(ctx, opts.Dir)
	m.drainPending(ctx, opts)

	// The periodic rescan covers files the filesystem watcher missed.
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case path := <-w.Arrivals():
			m.scanDropzone(ctx, path)
			m.drainPending(ctx, opts)
		case <-ticker.C:
			m.scanDropzone(ctx, opts.Dir)
			m.drainPending(ctx, opts)
		}
	}
}

func (m *Manager) scanDropzone(ctx context.Context, path string) {
	result, err := m.intake.Scan(ctx, []string{path}, false)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			m.logger.Warn("dropzone scan failed", logging.Error(err), logging.String("path", path))
		}
		return
	}
	if len(result.Added) > 0 {
		m.logger.Info("dropzone arrivals admitted", logging.Int("count", len(result.Added)))
	}
}

func (m *Manager) drainPending(ctx context.Context, opts WatchOptions) {
	if ctx.Err() != nil {
		return
	}
	pending, err := m.store.NextPending(ctx)
	if err != nil {
		m.logger.Warn("pending lookup failed", logging.Error(err))
		return
	}
	if pending == nil {
		return
	}

	summary, err := m.RunPass(ctx, opts.Settings)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			m.setLastError(err)
			m.logger.Error("watch pass failed", logging.Error(err))
		}
		return
	}

	if opts.Export && len(summary.CompletedIDs) > 0 {
		exported, err := m.exporter.Files(ctx, "", summary.CompletedIDs...)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				m.setLastError(err)
				m.logger.Error("watch export failed", logging.Error(err))
			}
			return
		}
		m.logger.Info("watch export finished", logging.Int("exported", exported.Exported))
	}
}
