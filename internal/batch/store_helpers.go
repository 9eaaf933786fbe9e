package batch

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const itemColumns = "id, position, source_path, source_name, source_size, source_type, source_width, source_height, preview_path, status, output_path, output_name, output_size, output_width, output_height, error_message, exported_at, created_at, updated_at"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id           string
		position     int
		sourcePath   string
		sourceName   string
		sourceSize   sql.NullInt64
		sourceType   sql.NullString
		sourceWidth  sql.NullInt64
		sourceHeight sql.NullInt64
		previewPath  sql.NullString
		statusStr    string
		outputPath   sql.NullString
		outputName   sql.NullString
		outputSize   sql.NullInt64
		outputWidth  sql.NullInt64
		outputHeight sql.NullInt64
		errorMessage sql.NullString
		exportedRaw  sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&position,
		&sourcePath,
		&sourceName,
		&sourceSize,
		&sourceType,
		&sourceWidth,
		&sourceHeight,
		&previewPath,
		&statusStr,
		&outputPath,
		&outputName,
		&outputSize,
		&outputWidth,
		&outputHeight,
		&errorMessage,
		&exportedRaw,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:           id,
		Position:     position,
		SourcePath:   sourcePath,
		SourceName:   sourceName,
		SourceSize:   sourceSize.Int64,
		SourceType:   sourceType.String,
		SourceWidth:  int(sourceWidth.Int64),
		SourceHeight: int(sourceHeight.Int64),
		PreviewPath:  previewPath.String,
		Status:       Status(statusStr),
		OutputPath:   outputPath.String,
		OutputName:   outputName.String,
		OutputSize:   outputSize.Int64,
		OutputWidth:  int(outputWidth.Int64),
		OutputHeight: int(outputHeight.Int64),
		ErrorMessage: errorMessage.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	if exportedRaw.Valid {
		if exported, err := parseTimeString(exportedRaw.String); err == nil {
			item.ExportedAt = &exported
		}
	}
	return item, nil
}

func requireRow(res sql.Result, id, operation string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w: %s", operation, ErrNotFound, id)
	}
	return nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
