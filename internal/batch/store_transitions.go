package batch

import (
	"context"
	"fmt"
	"time"
)

// MarkProcessing moves a pending item into processing.
func (s *Store) MarkProcessing(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE batch_items
         SET status = ?, error_message = NULL, updated_at = ?
         WHERE id = ? AND status = ?`,
		StatusProcessing,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		StatusPending,
	)
	if err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	return requireRow(res, id, "mark processing")
}

// Complete records a finished conversion. Output path and name are written
// together with the status change so a completed item always has both.
func (s *Store) Complete(ctx context.Context, id, outputPath, outputName string, outputSize int64, outputWidth, outputHeight int) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE batch_items
         SET status = ?, output_path = ?, output_name = ?, output_size = ?,
             output_width = ?, output_height = ?, error_message = NULL, updated_at = ?
         WHERE id = ? AND status = ?`,
		StatusCompleted,
		outputPath,
		outputName,
		outputSize,
		outputWidth,
		outputHeight,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		StatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("complete item: %w", err)
	}
	return requireRow(res, id, "complete")
}

// Fail records a conversion failure with its message and clears any output
// fields from an earlier run.
func (s *Store) Fail(ctx context.Context, id, message string) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE batch_items
         SET status = ?, error_message = ?, output_path = NULL, output_name = NULL,
             output_size = 0, output_width = 0, output_height = 0, exported_at = NULL,
             updated_at = ?
         WHERE id = ?`,
		StatusFailed,
		message,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("fail item: %w", err)
	}
	return requireRow(res, id, "fail")
}

// ResetToPending returns an item to pending and clears output and error
// fields. Used when a conversion is interrupted rather than failed.
func (s *Store) ResetToPending(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE batch_items
         SET status = ?, error_message = NULL, output_path = NULL, output_name = NULL,
             output_size = 0, output_width = 0, output_height = 0, exported_at = NULL,
             updated_at = ?
         WHERE id = ?`,
		StatusPending,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("reset item: %w", err)
	}
	return requireRow(res, id, "reset")
}

// RetryFailed moves failed items back to pending for reprocessing. With no
// ids every failed item is retried.
func (s *Store) RetryFailed(ctx context.Context, ids ...string) (int64, error) {
	if len(ids) == 0 {
		res, err := s.db.ExecContext(
			ctx,
			`UPDATE batch_items
            SET status = ?, error_message = NULL, updated_at = ?
            WHERE status = ?`,
			StatusPending,
			time.Now().UTC().Format(time.RFC3339Nano),
			StatusFailed,
		)
		if err != nil {
			return 0, fmt.Errorf("retry failed items: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+3)
	args = append(args, StatusPending, time.Now().UTC().Format(time.RFC3339Nano))
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, StatusFailed)
	query := `UPDATE batch_items
        SET status = ?, error_message = NULL, updated_at = ?
        WHERE id IN (` + placeholders + `) AND status = ?`
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry selected items: %w", err)
	}
	return res.RowsAffected()
}

// MarkExported stamps completed items with the export time. With no ids every
// completed item is stamped.
func (s *Store) MarkExported(ctx context.Context, ids ...string) (int64, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	if len(ids) == 0 {
		res, err := s.db.ExecContext(
			ctx,
			`UPDATE batch_items SET exported_at = ?, updated_at = ? WHERE status = ?`,
			timestamp,
			timestamp,
			StatusCompleted,
		)
		if err != nil {
			return 0, fmt.Errorf("mark exported: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+3)
	args = append(args, timestamp, timestamp)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, StatusCompleted)
	query := `UPDATE batch_items SET exported_at = ?, updated_at = ?
        WHERE id IN (` + placeholders + `) AND status = ?`
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("mark selected exported: %w", err)
	}
	return res.RowsAffected()
}
