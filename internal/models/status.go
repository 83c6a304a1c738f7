package models

import "fmt"

// Status is the processing state of a job as reported to its client.
type Status int

const (
	StatusQueued Status = iota
	StatusProcessing
	StatusCompleted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusProcessing:
		return "processing"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Terminal reports whether no further events follow this status.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed:
		return true
	case StatusQueued, StatusProcessing:
		return false
	}
	return false
}

func (s Status) MarshalText() ([]byte, error) {
	switch s {
	case StatusQueued, StatusProcessing, StatusCompleted, StatusFailed:
		return []byte(s.String()), nil
	}
	return nil, fmt.Errorf("invalid status %d", int(s))
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "queued":
		*s = StatusQueued
	case "processing":
		*s = StatusProcessing
	case "completed":
		*s = StatusCompleted
	case "failed":
		*s = StatusFailed
	default:
		return fmt.Errorf("unknown status %q", text)
	}
	return nil
}

// Fields is the extraction result handed to the client: field name to value.
type Fields map[string]string

// Well-known result keys.
const (
	FieldCategory           = "Category"
	FieldCategoryConfidence = "Category Confidence"
	FieldProcessingTime     = "Processing Time"
	FieldError              = "error"

	// NotFound is the value extractors use for a field they could not locate.
	NotFound = "Not found"
)

// ErrorResult is the result payload of a failed job.
func ErrorResult(err error) Fields {
	return Fields{FieldError: err.Error()}
}

// FileStatus is the "fileStatus" event pushed to a client for every state
// change of one of its jobs. Result is null while processing.
type FileStatus struct {
	FileName string  `json:"fileName"`
	Status   Status  `json:"status"`
	Result   Fields  `json:"result"`
	Parent   *string `json:"parent"`
	PDF      bool    `json:"pdf"`
	Page     int     `json:"page"`
}
