package history

import (
	"strings"
	"time"
)

// Status is the final outcome of a recorded run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
	// StatusRejected marks runs stopped by bad input or configuration
	// before any subtitles were produced.
	StatusRejected Status = "rejected"
)

var statusSet = map[Status]struct{}{
	StatusCompleted: {},
	StatusCancelled: {},
	StatusFailed:    {},
	StatusRejected:  {},
}

// ParseStatus converts a string into a Status.
func ParseStatus(value string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	_, ok := statusSet[status]
	return status, ok
}

// Run is one recorded conversion.
type Run struct {
	ID             string    `json:"id"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	Status         Status    `json:"status"`
	TranscriptPath string    `json:"transcript_path"`
	Format         string    `json:"format,omitempty"`
	Language       string    `json:"language,omitempty"`
	FragmentsPath  string    `json:"fragments_path,omitempty"`
	OutputPath     string    `json:"output_path,omitempty"`
	Fragments      int       `json:"fragments"`
	Entries        int       `json:"entries"`
	Unaligned      int       `json:"unaligned"`
	LowConfidence  int       `json:"low_confidence"`
	Oversized      int       `json:"oversized"`
	Merged         int       `json:"merged"`
	Coverage       float64   `json:"coverage"`
	ErrorMessage   string    `json:"error,omitempty"`
}

// Duration returns the wall time of the run.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// ShortID returns the first eight characters of the run ID.
func (r Run) ShortID() string {
	if len(r.ID) <= 8 {
		return r.ID
	}
	return r.ID[:8]
}
