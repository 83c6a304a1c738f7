package models

import (
	"strings"
	"time"
)

// Job is one page of OCR and extraction work. It is not modified after
// ingestion creates it.
type Job struct {
	SourceFileName string    `json:"file_name"`
	StoragePath    string    `json:"storage_path"`
	GroupKey       string    `json:"group_key,omitempty"` // empty means no group
	IsFromPDF      bool      `json:"pdf"`
	PageNumber     int       `json:"page"` // 0 for single images, 1-based for PDF pages
	EnqueuedAt     time.Time `json:"enqueued_at"`
}

// NormalizeGroupKey collapses every run of whitespace to a single space
// and trims the ends. A key that is blank after this is treated as absent.
func NormalizeGroupKey(key string) string {
	return strings.Join(strings.Fields(key), " ")
}

// Status builds the status event for this job.
func (j *Job) Status(status Status, result Fields) FileStatus {
	ev := FileStatus{
		FileName: j.SourceFileName,
		Status:   status,
		Result:   result,
		PDF:      j.IsFromPDF,
		Page:     j.PageNumber,
	}
	if j.GroupKey != "" {
		parent := j.GroupKey
		ev.Parent = &parent
	}
	return ev
}

// QueueStatus is a point-in-time view of one connected client's queue.
type QueueStatus struct {
	ClientID   string `json:"client_id"`
	Queued     int    `json:"queued"`
	Processing bool   `json:"processing"`
}
