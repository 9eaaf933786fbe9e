package watcher_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"imagemill/internal/logging"
	"imagemill/internal/watcher"
)

func newWatcher(t *testing.T, dir string) *watcher.Watcher {
	t.Helper()
	w, err := watcher.New(dir, 50*time.Millisecond, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if err := w.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return w
}

func waitForArrival(t *testing.T, w *watcher.Watcher) string {
	t.Helper()
	select {
	case path := <-w.Arrivals():
		return path
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for arrival")
		return ""
	}
}

func TestWatcherReportsNewFile(t *testing.T) {
	dir := t.TempDir()
	w := newWatcher(t, dir)

	dropped := filepath.Join(dir, "photo.png")
	if err := os.WriteFile(dropped, []byte("image data"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if got := waitForArrival(t, w); got != dropped {
		t.Fatalf("arrival %s, want %s", got, dropped)
	}
}

func TestWatcherCoalescesRapidWrites(t *testing.T) {
	dir := t.TempDir()
	w := newWatcher(t, dir)

	dropped := filepath.Join(dir, "photo.png")
	file, err := os.Create(dropped)
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := file.Write([]byte("chunk")); err != nil {
			t.Fatalf("write chunk: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}

	if got := waitForArrival(t, w); got != dropped {
		t.Fatalf("arrival %s, want %s", got, dropped)
	}
	select {
	case extra := <-w.Arrivals():
		t.Fatalf("unexpected second arrival: %s", extra)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherIgnoresHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	w := newWatcher(t, dir)

	if err := os.WriteFile(filepath.Join(dir, ".partial.png"), []byte("tmp"), 0o644); err != nil {
		t.Fatalf("write hidden file: %v", err)
	}
	visible := filepath.Join(dir, "visible.png")
	if err := os.WriteFile(visible, []byte("image data"), 0o644); err != nil {
		t.Fatalf("write visible file: %v", err)
	}

	if got := waitForArrival(t, w); got != visible {
		t.Fatalf("arrival %s, want %s", got, visible)
	}
}

func TestWatcherSkipsDeletedBeforeSettle(t *testing.T) {
	dir := t.TempDir()
	w := newWatcher(t, dir)

	transient := filepath.Join(dir, "gone.png")
	if err := os.WriteFile(transient, []byte("image data"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := os.Remove(transient); err != nil {
		t.Fatalf("remove file: %v", err)
	}

	select {
	case path := <-w.Arrivals():
		t.Fatalf("unexpected arrival for deleted file: %s", path)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherRejectsMissingDirectory(t *testing.T) {
	if _, err := watcher.New(filepath.Join(t.TempDir(), "absent"), 0, logging.NewNop()); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
