package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"imagemill/internal/batch"
	"imagemill/internal/config"
	"imagemill/internal/convert"
	"imagemill/internal/export"
	"imagemill/internal/intake"
	"imagemill/internal/logging"
	"imagemill/internal/notifications"
)

// Manager runs conversion passes over the batch store and owns watch mode.
type Manager struct {
	cfg      *config.Config
	store    *batch.Store
	engine   *convert.Engine
	intake   *intake.Intake
	exporter *export.Exporter
	notifier notifications.Service
	logger   *slog.Logger

	pollInterval time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
}

// NewManager constructs a workflow manager.
func NewManager(cfg *config.Config, store *batch.Store, logger *slog.Logger) *Manager {
	return NewManagerWithNotifier(cfg, store, logger, notifications.NewService(cfg))
}

// NewManagerWithNotifier constructs a workflow manager with a custom notifier
// (used in tests).
func NewManagerWithNotifier(cfg *config.Config, store *batch.Store, logger *slog.Logger, notifier notifications.Service) *Manager {
	pollInterval := time.Duration(cfg.Workflow.PollInterval) * time.Second
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &Manager{
		cfg:          cfg,
		store:        store,
		engine:       convert.NewEngine(logger),
		intake:       intake.New(cfg, store, logger),
		exporter:     export.New(cfg, store, logger),
		notifier:     notifier,
		logger:       logging.NewComponentLogger(logger, "workflow"),
		pollInterval: pollInterval,
	}
}

// LastError reports the most recent pass-level error.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}
