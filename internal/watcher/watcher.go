package watcher

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"imagemill/internal/logging"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher monitors one dropzone directory and delivers settled file paths.
type Watcher struct {
	logger   *slog.Logger
	fsw      *fsnotify.Watcher
	arrivals chan string
	debounce time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New starts watching dir. A debounce of zero selects the default settle
// window. Callers drain Arrivals until their context ends, then Close.
func New(dir string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create filesystem watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{
		logger:   logging.NewComponentLogger(logger, "watcher"),
		fsw:      fsw,
		arrivals: make(chan string, 64),
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
	}
	go w.run()
	w.logger.Info("watching dropzone", logging.String("dir", dir))
	return w, nil
}

// Arrivals returns the stream of settled file paths. The channel is never
// closed; consumers stop by cancelling their own context and calling Close.
func (w *Watcher) Arrivals() <-chan string {
	return w.arrivals
}

// Close stops the watcher. Pending debounce timers are cancelled.
func (w *Watcher) Close() error {
	w.mu.Lock()
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()
	return w.fsw.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", logging.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
		return
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return
	}

	// Each write restarts the settle window so partially copied files are
	// announced once, after the final write.
	w.mu.Lock()
	if timer, exists := w.timers[event.Name]; exists {
		timer.Stop()
	}
	path := event.Name
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.deliver(path)
	})
	w.mu.Unlock()
}

func (w *Watcher) deliver(path string) {
	w.mu.Lock()
	delete(w.timers, path)
	w.mu.Unlock()

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return
	}

	select {
	case w.arrivals <- path:
	default:
		w.logger.Warn("arrival dropped, consumer too slow", logging.String("path", path))
	}
}
