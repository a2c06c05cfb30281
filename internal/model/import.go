package model

import (
	"time"

	"github.com/google/uuid"
)

// ImportStatus enumerates the lifecycle of an import job.
type ImportStatus string

const (
	ImportStatusQueued   ImportStatus = "QUEUED"
	ImportStatusRunning  ImportStatus = "RUNNING"
	ImportStatusDone     ImportStatus = "DONE"
	ImportStatusRejected ImportStatus = "REJECTED"
	ImportStatusFailed   ImportStatus = "FAILED"
)

// SheetStatus is the outcome of one worksheet within an import.
type SheetStatus string

const (
	SheetStatusImported SheetStatus = "imported"
	SheetStatusUnknown  SheetStatus = "unknown"
	SheetStatusError    SheetStatus = "error"
)

// RowIssue records a row that was rendered but not persisted.
type RowIssue struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// SheetReport summarises the processing of one worksheet.
type SheetReport struct {
	Sheet       string      `json:"sheet"`
	Status      SheetStatus `json:"status"`
	Rendered    int         `json:"rendered"`
	Persisted   int         `json:"persisted"`
	SkippedRows int         `json:"skipped_rows"`
	Issues      []RowIssue  `json:"issues,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// ImportReport is the result of a whole-workbook import.
type ImportReport struct {
	ImportID    uuid.UUID     `json:"import_id"`
	Filename    string        `json:"filename"`
	Persist     bool          `json:"persist"`
	Sheets      []SheetReport `json:"sheets"`
	Rendered    int           `json:"rendered"`
	Persisted   int           `json:"persisted"`
	SkippedRows int           `json:"skipped_rows"`
	Duration    time.Duration `json:"duration"`
}

// ImportJob is the queued unit of work picked up by the import worker.
type ImportJob struct {
	ID        uuid.UUID     `json:"id"`
	Filename  string        `json:"filename"`
	Path      string        `json:"path"`
	Status    ImportStatus  `json:"status"`
	Error     string        `json:"error,omitempty"`
	Report    *ImportReport `json:"report,omitempty"`
	CreatedBy int           `json:"created_by"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ProgressEvent is published while an import job runs.
type ProgressEvent struct {
	Type      string      `json:"type"` // start/sheet_start/sheet_done/done/error
	ImportID  uuid.UUID   `json:"import_id"`
	Sheet     string      `json:"sheet,omitempty"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Finished reports whether the job reached a terminal status.
func (j *ImportJob) Finished() bool {
	switch j.Status {
	case ImportStatusDone, ImportStatusRejected, ImportStatusFailed:
		return true
	}
	return false
}
