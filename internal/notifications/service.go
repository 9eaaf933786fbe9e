package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"imagemill/internal/config"
)

const userAgent = "Imagemill/0.1.0"

// Event identifies a batch milestone worth announcing.
type Event string

const (
	EventBatchCompleted  Event = "batch-completed"
	EventExportCompleted Event = "export-completed"
	EventError           Event = "error"
	EventTest            Event = "test"
)

// Payload carries the event fields as strings. Numeric fields ("converted",
// "failed", "count") and durations ("duration") are parsed leniently; missing
// or malformed values read as zero.
type Payload map[string]string

// Service is the notification surface exposed to workflow components.
type Service interface {
	Publish(ctx context.Context, event Event, data Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:    topic,
		client:      &http.Client{Timeout: timeout},
		batch:       cfg.Notifications.Batch,
		errors:      cfg.Notifications.Errors,
		minItems:    cfg.Notifications.BatchMinItems,
		minDuration: time.Duration(cfg.Notifications.BatchMinSeconds) * time.Second,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	batch       bool
	errors      bool
	minItems    int
	minDuration time.Duration
}

func (n *ntfyService) Publish(ctx context.Context, event Event, data Payload) error {
	switch event {
	case EventBatchCompleted:
		return n.publishBatchCompleted(ctx, data)
	case EventExportCompleted:
		return n.publishExportCompleted(ctx, data)
	case EventError:
		return n.publishError(ctx, data)
	case EventTest:
		return n.send(ctx, message{
			title:    "Imagemill - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"imagemill", "test"},
			priority: "low",
		})
	default:
		return nil
	}
}

func (n *ntfyService) publishBatchCompleted(ctx context.Context, data Payload) error {
	if !n.batch {
		return nil
	}

	converted := atoi(data["converted"])
	failed := atoi(data["failed"])
	elapsed := parseDuration(data["duration"])
	if converted+failed < n.minItems && elapsed < n.minDuration {
		return nil
	}

	durationText := strings.TrimSpace(data["duration"])
	if durationText == "" {
		durationText = "0s"
	}

	msg := message{tags: []string{"imagemill", "batch", "completed"}}
	if failed == 0 {
		msg.title = "Imagemill - Batch Complete"
		msg.body = fmt.Sprintf("✅ Converted %d images in %s", converted, durationText)
	} else {
		msg.title = "Imagemill - Batch Complete (with errors)"
		msg.body = fmt.Sprintf("Converted %d images, %d failed in %s", converted, failed, durationText)
		msg.priority = "high"
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) publishExportCompleted(ctx context.Context, data Payload) error {
	count := atoi(data["count"])
	msg := message{
		title: "Imagemill - Export Complete",
		tags:  []string{"imagemill", "export", "completed"},
	}
	if archive := strings.TrimSpace(data["archive"]); archive != "" {
		msg.body = fmt.Sprintf("📦 Archived %d images to %s", count, filepath.Base(archive))
	} else {
		msg.body = fmt.Sprintf("📦 Exported %d images to %s", count, strings.TrimSpace(data["dest"]))
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) publishError(ctx context.Context, data Payload) error {
	if !n.errors {
		return nil
	}

	var builder strings.Builder
	builder.WriteString("❌ Error")
	if label := strings.TrimSpace(data["context"]); label != "" {
		builder.WriteString(" with ")
		builder.WriteString(label)
	}
	builder.WriteString(": ")
	if text := strings.TrimSpace(data["error"]); text != "" {
		builder.WriteString(text)
	} else {
		builder.WriteString("unknown")
	}

	return n.send(ctx, message{
		title:    "Imagemill - Error",
		body:     builder.String(),
		tags:     []string{"imagemill", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func atoi(value string) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return parsed
}

func parseDuration(value string) time.Duration {
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return parsed
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
