package batch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store manages the session batch backed by an in-memory SQLite database.
type Store struct {
	db *sql.DB
}

// ErrNotFound indicates the requested item is not in the batch.
var ErrNotFound = errors.New("batch item not found")

// Open creates the in-memory database for a new session. The connection pool
// is pinned to a single connection; every additional pool connection would
// see its own empty memory database.
func Open() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragma: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection and discards the batch.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Add inserts a new pending item at the end of the batch.
func (s *Store) Add(ctx context.Context, params NewItem) (*Item, error) {
	if strings.TrimSpace(params.SourcePath) == "" {
		return nil, errors.New("source path is required")
	}
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	id := uuid.NewString()

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO batch_items (
            id, position, source_path, source_name, source_size, source_type,
            source_width, source_height, preview_path, status, created_at, updated_at
        ) VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM batch_items), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		params.SourcePath,
		params.SourceName,
		params.SourceSize,
		nullableString(params.SourceType),
		params.SourceWidth,
		params.SourceHeight,
		nullableString(params.PreviewPath),
		StatusPending,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a batch item by identifier. A missing item returns nil.
func (s *Store) GetByID(ctx context.Context, id string) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM batch_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// FindBySourcePath returns the first item with the given source path.
func (s *Store) FindBySourcePath(ctx context.Context, path string) (*Item, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+itemColumns+` FROM batch_items WHERE source_path = ? ORDER BY position LIMIT 1`,
		path,
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by source path: %w", err)
	}
	return item, nil
}

// List returns batch items filtered by status set (or all items when no
// status is provided), ordered by intake position.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + itemColumns + ` FROM batch_items`
	orderClause := ` ORDER BY position`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list batch items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// NextPending returns the earliest pending item by intake position.
func (s *Store) NextPending(ctx context.Context) (*Item, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+itemColumns+` FROM batch_items WHERE status = ? ORDER BY position LIMIT 1`,
		StatusPending,
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Update persists changes to an existing batch item.
func (s *Store) Update(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("item is nil")
	}
	item.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE batch_items
         SET source_path = ?, source_name = ?, source_size = ?, source_type = ?,
             source_width = ?, source_height = ?, preview_path = ?, status = ?,
             output_path = ?, output_name = ?, output_size = ?, output_width = ?,
             output_height = ?, error_message = ?, exported_at = ?, updated_at = ?
         WHERE id = ?`,
		item.SourcePath,
		item.SourceName,
		item.SourceSize,
		nullableString(item.SourceType),
		item.SourceWidth,
		item.SourceHeight,
		nullableString(item.PreviewPath),
		item.Status,
		nullableString(item.OutputPath),
		nullableString(item.OutputName),
		item.OutputSize,
		item.OutputWidth,
		item.OutputHeight,
		nullableString(item.ErrorMessage),
		nullableTime(item.ExportedAt),
		item.UpdatedAt.Format(time.RFC3339Nano),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, item.ID)
	}
	return nil
}
