package workflow_test

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"imagemill/internal/batch"
	"imagemill/internal/config"
	"imagemill/internal/convert"
	"imagemill/internal/logging"
	"imagemill/internal/notifications"
	"imagemill/internal/testsupport"
	"imagemill/internal/workflow"
)

type recordingNotifier struct {
	mu       sync.Mutex
	events   []notifications.Event
	payloads []notifications.Payload
}

func (r *recordingNotifier) Publish(_ context.Context, event notifications.Event, payload notifications.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	r.payloads = append(r.payloads, payload)
	return nil
}

func (r *recordingNotifier) count(event notifications.Event) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, recorded := range r.events {
		if recorded == event {
			total++
		}
	}
	return total
}

func stagePNG(t *testing.T, cfg *config.Config, store *batch.Store, name string) *batch.Item {
	t.Helper()
	path := filepath.Join(testsupport.BaseDir(cfg), "sources", name)
	testsupport.WritePNG(t, path, 8, 8, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	return testsupport.AddItem(t, store, path, name)
}

func defaultSettings(t *testing.T, cfg *config.Config) convert.Settings {
	t.Helper()
	settings, err := convert.SettingsFromConfig(cfg)
	if err != nil {
		t.Fatalf("SettingsFromConfig: %v", err)
	}
	return settings
}

func TestRunPassConvertsPendingItems(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t)
	ctx := context.Background()

	stagePNG(t, cfg, store, "alpha.png")
	stagePNG(t, cfg, store, "beta.png")

	manager := workflow.NewManager(cfg, store, logging.NewNop())
	summary, err := manager.RunPass(ctx, defaultSettings(t, cfg))
	if err != nil {
		t.Fatalf("RunPass returned error: %v", err)
	}
	if summary.Converted != 2 || summary.Failed != 0 || summary.Skipped != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.CompletedIDs) != 2 {
		t.Fatalf("expected 2 completed ids, got %d", len(summary.CompletedIDs))
	}

	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	wantNames := []string{"alpha.jpg", "beta.jpg"}
	for i, item := range items {
		if item.Status != batch.StatusCompleted {
			t.Fatalf("item %d status = %s", i, item.Status)
		}
		if item.OutputName != wantNames[i] {
			t.Fatalf("item %d output name = %q, want %q", i, item.OutputName, wantNames[i])
		}
		info, err := os.Stat(item.OutputPath)
		if err != nil {
			t.Fatalf("stat output: %v", err)
		}
		if info.Size() != item.OutputSize {
			t.Fatalf("recorded size %d, file size %d", item.OutputSize, info.Size())
		}
	}
}

func TestRunPassSkipsCompletedItems(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t)
	ctx := context.Background()

	done := stagePNG(t, cfg, store, "done.png")
	stagePNG(t, cfg, store, "todo.png")

	if err := store.MarkProcessing(ctx, done.ID); err != nil {
		t.Fatalf("MarkProcessing: %v", err)
	}
	if err := store.Complete(ctx, done.ID, "/staged/done.webp", "done.webp", 10, 8, 8); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	manager := workflow.NewManager(cfg, store, logging.NewNop())
	summary, err := manager.RunPass(ctx, defaultSettings(t, cfg))
	if err != nil {
		t.Fatalf("RunPass returned error: %v", err)
	}
	if summary.Converted != 1 || summary.Skipped != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	kept, err := store.GetByID(ctx, done.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if kept.OutputName != "done.webp" {
		t.Fatalf("completed item was reconverted: %q", kept.OutputName)
	}
}

func TestRunPassRequeuesEarlierFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t)
	ctx := context.Background()

	item := stagePNG(t, cfg, store, "retry.png")
	if err := store.MarkProcessing(ctx, item.ID); err != nil {
		t.Fatalf("MarkProcessing: %v", err)
	}
	if err := store.Fail(ctx, item.ID, "simulated failure"); err != nil {
		t.Fatalf("Fail: %v", err)
	}

	manager := workflow.NewManager(cfg, store, logging.NewNop())
	summary, err := manager.RunPass(ctx, defaultSettings(t, cfg))
	if err != nil {
		t.Fatalf("RunPass returned error: %v", err)
	}
	if summary.Converted != 1 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	updated, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.Status != batch.StatusCompleted {
		t.Fatalf("status = %s, want completed", updated.Status)
	}
	if updated.ErrorMessage != "" {
		t.Fatalf("error message not cleared: %q", updated.ErrorMessage)
	}
}

func TestRunPassRecordsDecodeFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t)
	ctx := context.Background()

	stagePNG(t, cfg, store, "good.png")
	brokenPath := filepath.Join(testsupport.BaseDir(cfg), "sources", "broken.png")
	if err := os.MkdirAll(filepath.Dir(brokenPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(brokenPath, []byte("\x89PNG\r\n\x1a\nnot really a png"), 0o644); err != nil {
		t.Fatalf("write broken file: %v", err)
	}
	broken := testsupport.AddItem(t, store, brokenPath, "broken.png")

	notifier := &recordingNotifier{}
	manager := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), notifier)
	summary, err := manager.RunPass(ctx, defaultSettings(t, cfg))
	if err != nil {
		t.Fatalf("RunPass returned error: %v", err)
	}
	if summary.Converted != 1 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	failed, err := store.GetByID(ctx, broken.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if failed.Status != batch.StatusFailed {
		t.Fatalf("status = %s, want failed", failed.Status)
	}
	if !strings.Contains(failed.ErrorMessage, "decode") {
		t.Fatalf("error message = %q", failed.ErrorMessage)
	}
	if notifier.count(notifications.EventError) != 1 {
		t.Fatalf("expected 1 error notification, got %d", notifier.count(notifications.EventError))
	}
}

func TestRunPassAppliesSequenceNaming(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t)
	ctx := context.Background()

	stagePNG(t, cfg, store, "first.png")
	stagePNG(t, cfg, store, "second.png")

	settings := defaultSettings(t, cfg)
	settings.BaseName = "vacation"
	settings.Sequence = true

	manager := workflow.NewManager(cfg, store, logging.NewNop())
	if _, err := manager.RunPass(ctx, settings); err != nil {
		t.Fatalf("RunPass returned error: %v", err)
	}

	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	wantNames := []string{"vacation_1.jpg", "vacation_2.jpg"}
	for i, item := range items {
		if item.OutputName != wantNames[i] {
			t.Fatalf("item %d output name = %q, want %q", i, item.OutputName, wantNames[i])
		}
	}
}

func TestRunPassWithConcurrencyCap(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMaxConcurrent(1))
	store := testsupport.MustOpenStore(t)

	for _, name := range []string{"a.png", "b.png", "c.png"} {
		stagePNG(t, cfg, store, name)
	}

	manager := workflow.NewManager(cfg, store, logging.NewNop())
	summary, err := manager.RunPass(context.Background(), defaultSettings(t, cfg))
	if err != nil {
		t.Fatalf("RunPass returned error: %v", err)
	}
	if summary.Converted != 3 {
		t.Fatalf("converted = %d, want 3", summary.Converted)
	}
}

func TestRunPassPublishesBatchNotification(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t)

	stagePNG(t, cfg, store, "one.png")
	stagePNG(t, cfg, store, "two.png")

	notifier := &recordingNotifier{}
	manager := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), notifier)
	if _, err := manager.RunPass(context.Background(), defaultSettings(t, cfg)); err != nil {
		t.Fatalf("RunPass returned error: %v", err)
	}

	if notifier.count(notifications.EventBatchCompleted) != 1 {
		t.Fatalf("expected 1 batch notification, got %d", notifier.count(notifications.EventBatchCompleted))
	}
	notifier.mu.Lock()
	payload := notifier.payloads[len(notifier.payloads)-1]
	notifier.mu.Unlock()
	if payload["converted"] != "2" {
		t.Fatalf("payload converted = %q", payload["converted"])
	}
}

func TestRunPassSkipsNotificationWhenNothingToDo(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t)

	notifier := &recordingNotifier{}
	manager := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), notifier)
	summary, err := manager.RunPass(context.Background(), defaultSettings(t, cfg))
	if err != nil {
		t.Fatalf("RunPass returned error: %v", err)
	}
	if summary.Converted != 0 {
		t.Fatalf("unexpected conversions: %+v", summary)
	}
	if got := notifier.count(notifications.EventBatchCompleted); got != 0 {
		t.Fatalf("expected no batch notification, got %d", got)
	}
}

func waitForCondition(t *testing.T, timeout time.Duration, message string, check func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if check() {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", message)
}

func TestWatchConvertsAndExportsArrivals(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.PollInterval = 1
	store := testsupport.MustOpenStore(t)
	dropzone := t.TempDir()

	// Already present before the watcher starts; admitted by the initial scan.
	testsupport.WritePNG(t, filepath.Join(dropzone, "before.png"), 8, 8, color.NRGBA{R: 10, G: 200, B: 90, A: 255})

	manager := workflow.NewManager(cfg, store, logging.NewNop())
	ctx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()

	err := manager.Start(ctx, workflow.WatchOptions{
		Dir:      dropzone,
		Settings: defaultSettings(t, cfg),
		Export:   true,
	})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer manager.Stop()

	exported := func(name string) func() bool {
		path := filepath.Join(cfg.Paths.OutputDir, name)
		return func() bool {
			_, err := os.Stat(path)
			return err == nil
		}
	}
	waitForCondition(t, 10*time.Second, "initial file export", exported("before.jpg"))

	testsupport.WritePNG(t, filepath.Join(dropzone, "after.png"), 8, 8, color.NRGBA{R: 90, G: 10, B: 200, A: 255})
	waitForCondition(t, 10*time.Second, "arrival export", exported("after.jpg"))

	items, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	for _, item := range items {
		if item.Status != batch.StatusCompleted || !item.Exported() {
			t.Fatalf("item %s status=%s exported=%v", item.SourceName, item.Status, item.Exported())
		}
	}
}

func TestStartRejectsConcurrentWatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t)
	dropzone := t.TempDir()

	manager := workflow.NewManager(cfg, store, logging.NewNop())
	opts := workflow.WatchOptions{Dir: dropzone, Settings: defaultSettings(t, cfg)}

	if err := manager.Start(context.Background(), opts); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer manager.Stop()

	if err := manager.Start(context.Background(), opts); err == nil {
		t.Fatal("expected second Start to fail")
	}
	if !manager.Running() {
		t.Fatal("expected manager to stay running")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t)

	manager := workflow.NewManager(cfg, store, logging.NewNop())
	manager.Stop()

	if err := manager.Start(context.Background(), workflow.WatchOptions{
		Dir:      t.TempDir(),
		Settings: defaultSettings(t, cfg),
	}); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	manager.Stop()
	manager.Stop()
	if manager.Running() {
		t.Fatal("expected manager to be stopped")
	}
}
