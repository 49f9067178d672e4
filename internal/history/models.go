package history

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle of a capture record.
type Status string

const (
	StatusPending      Status = "pending"
	StatusDownloading  Status = "downloading"
	StatusExtracting   Status = "extracting"
	StatusTranscribing Status = "transcribing"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
	// StatusReview marks captures that stopped on bad input or configuration
	// and need an operator before they are retried.
	StatusReview Status = "review"
)

var allStatuses = []Status{
	StatusPending,
	StatusDownloading,
	StatusExtracting,
	StatusTranscribing,
	StatusCompleted,
	StatusFailed,
	StatusReview,
}

var processingStatuses = map[Status]struct{}{
	StatusDownloading:  {},
	StatusExtracting:   {},
	StatusTranscribing: {},
}

// AllStatuses returns every known status in lifecycle order.
func AllStatuses() []Status {
	return append([]Status(nil), allStatuses...)
}

// ParseStatus converts user input into a Status.
func ParseStatus(value string) (Status, error) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == normalized {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", value)
}

// IsProcessing reports whether the status is an in-flight pipeline stage.
func (s Status) IsProcessing() bool {
	_, ok := processingStatuses[s]
	return ok
}

// IsTerminal reports whether no further pipeline work happens for the status.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusReview
}

// Record is one capture attempt for a video.
type Record struct {
	ID             int64
	RunID          string
	URL            string
	Title          string
	Speaker        string
	Status         Status
	OutputDir      string
	VideoPath      string
	AudioPath      string
	TranscriptPath string
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Summary aggregates record counts for status output.
type Summary struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Failed     int
	Review     int
}
