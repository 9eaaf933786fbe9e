package workflow

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"imagemill/internal/batch"
	"imagemill/internal/convert"
	"imagemill/internal/logging"
	"imagemill/internal/naming"
	"imagemill/internal/notifications"
)

// PassSummary reports the outcome of one conversion pass.
type PassSummary struct {
	// Converted counts items newly completed by this pass.
	Converted int
	// Failed counts items whose conversion errored.
	Failed int
	// Skipped counts items already completed before the pass started.
	Skipped int
	// Interrupted counts items returned to pending by cancellation.
	Interrupted int
	Elapsed     time.Duration
	// CompletedIDs identifies the items Converted counts.
	CompletedIDs []string
}

// RunPass converts every pending item with the given settings. Items that
// failed in an earlier pass are re-queued first; completed items keep their
// results. Per-item failures are counted in the summary, not returned.
func (m *Manager) RunPass(ctx context.Context, settings convert.Settings) (PassSummary, error) {
	if err := settings.Validate(); err != nil {
		return PassSummary{}, err
	}

	start := time.Now()

	if _, err := m.store.RetryFailed(ctx); err != nil {
		m.setLastError(err)
		return PassSummary{}, fmt.Errorf("requeue failed items: %w", err)
	}

	items, err := m.store.List(ctx)
	if err != nil {
		m.setLastError(err)
		return PassSummary{}, fmt.Errorf("list batch: %w", err)
	}

	summary := PassSummary{}
	var (
		resultMu sync.Mutex
		group    sync.WaitGroup
	)
	var slots chan struct{}
	if m.cfg.Workflow.MaxConcurrent > 0 {
		slots = make(chan struct{}, m.cfg.Workflow.MaxConcurrent)
	}

	for i, item := range items {
		if item.Status != batch.StatusPending {
			summary.Skipped++
			continue
		}

		// Output names use the enumeration position at pass time, so a
		// sequence suffix stays aligned with what the batch listing shows.
		sequence := i + 1
		group.Add(1)
		go func(item *batch.Item, sequence int) {
			defer group.Done()
			if slots != nil {
				slots <- struct{}{}
				defer func() { <-slots }()
			}

			err := m.convertItem(ctx, item, sequence, settings)
			resultMu.Lock()
			defer resultMu.Unlock()
			switch {
			case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
				summary.Interrupted++
			case err != nil:
				summary.Failed++
			default:
				summary.Converted++
				summary.CompletedIDs = append(summary.CompletedIDs, item.ID)
			}
		}(item, sequence)
	}

	group.Wait()
	summary.Elapsed = time.Since(start)

	if summary.Converted+summary.Failed > 0 {
		m.notifyBatchCompleted(ctx, summary)
	}

	m.logger.Info("pass finished",
		logging.Int("converted", summary.Converted),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped),
		logging.Int("interrupted", summary.Interrupted),
		logging.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

func (m *Manager) convertItem(ctx context.Context, item *batch.Item, sequence int, settings convert.Settings) error {
	if err := m.store.MarkProcessing(ctx, item.ID); err != nil {
		return err
	}

	outputName := naming.OutputName(item.SourceName, sequence, settings)
	outputPath := filepath.Join(m.cfg.Paths.StagingDir, "outputs", item.ID+"."+settings.Format.Extension())

	result, err := m.engine.ConvertFile(ctx, item.SourcePath, outputPath, settings)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// Batch state outlives the cancelled pass context.
			if resetErr := m.store.ResetToPending(context.Background(), item.ID); resetErr != nil {
				m.logger.Warn("reset interrupted item failed",
					logging.Error(resetErr),
					logging.String(logging.FieldItemID, item.ID),
				)
			}
			return err
		}
		m.failItem(ctx, item, err)
		return err
	}

	if err := m.store.Complete(ctx, item.ID, outputPath, outputName, result.OutputBytes, result.Width, result.Height); err != nil {
		wrapped := fmt.Errorf("record completion: %w", err)
		m.failItem(ctx, item, wrapped)
		return wrapped
	}

	m.logger.Info("item converted",
		logging.String(logging.FieldItemID, item.ID),
		logging.String("source", item.SourceName),
		logging.String("output_name", outputName),
		logging.Int("width", result.Width),
		logging.Int("height", result.Height),
		logging.Int64("output_bytes", result.OutputBytes),
		logging.Duration("elapsed", result.Elapsed),
	)
	return nil
}

func (m *Manager) failItem(ctx context.Context, item *batch.Item, convErr error) {
	message := strings.TrimSpace(convErr.Error())
	if message == "" {
		message = "conversion failed"
	}
	if err := m.store.Fail(ctx, item.ID, message); err != nil {
		if errors.Is(err, context.Canceled) {
			m.logger.Debug("shutdown before failure was recorded",
				logging.String(logging.FieldItemID, item.ID))
		} else {
			m.logger.Error("record failure failed",
				logging.Error(err),
				logging.String(logging.FieldItemID, item.ID),
			)
		}
	}
	m.logger.Error("item failed",
		logging.String(logging.FieldItemID, item.ID),
		logging.String("source", item.SourceName),
		logging.Error(convErr),
	)
	m.notifyItemError(ctx, item, convErr)
}

func (m *Manager) notifyItemError(ctx context.Context, item *batch.Item, convErr error) {
	if m.notifier == nil || convErr == nil {
		return
	}
	payload := notifications.Payload{
		"context": fmt.Sprintf("convert %s", item.SourceName),
		"error":   convErr.Error(),
	}
	if err := m.notifier.Publish(ctx, notifications.EventError, payload); err != nil {
		if errors.Is(err, context.Canceled) {
			m.logger.Debug("shutdown before error notification was sent")
		} else {
			m.logger.Debug("error notification failed", logging.Error(err))
		}
	}
}

func (m *Manager) notifyBatchCompleted(ctx context.Context, summary PassSummary) {
	if m.notifier == nil {
		return
	}
	payload := notifications.Payload{
		"converted": strconv.Itoa(summary.Converted),
		"failed":    strconv.Itoa(summary.Failed),
		"duration":  summary.Elapsed.Round(time.Second).String(),
	}
	if err := m.notifier.Publish(ctx, notifications.EventBatchCompleted, payload); err != nil {
		if errors.Is(err, context.Canceled) {
			m.logger.Debug("shutdown before batch notification was sent")
		} else {
			m.logger.Debug("batch notification failed", logging.Error(err))
		}
	}
}
