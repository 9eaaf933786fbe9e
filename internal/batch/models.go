package batch

import "time"

// Status represents the lifecycle of a batch item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Item represents one source image tracked for the session.
type Item struct {
	ID           string
	Position     int
	SourcePath   string
	SourceName   string
	SourceSize   int64
	SourceType   string
	SourceWidth  int
	SourceHeight int
	PreviewPath  string
	Status       Status
	OutputPath   string
	OutputName   string
	OutputSize   int64
	OutputWidth  int
	OutputHeight int
	ErrorMessage string
	ExportedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Exported reports whether the item's output has been written to the
// destination directory or a zip archive.
func (i Item) Exported() bool {
	return i.ExportedAt != nil
}

// NewItem describes a source image entering the batch.
type NewItem struct {
	SourcePath   string
	SourceName   string
	SourceSize   int64
	SourceType   string
	SourceWidth  int
	SourceHeight int
	PreviewPath  string
}

// HealthSummary describes aggregated batch counts per lifecycle state.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Failed     int
}

// Idle reports whether no work is pending or running.
func (h HealthSummary) Idle() bool {
	return h.Pending == 0 && h.Processing == 0
}
