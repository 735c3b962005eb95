package models

import "time"

// JobStatus is the lifecycle state of an ingestion job.
type JobStatus string

// Job states. PENDING → PROCESSING → {COMPLETED, FAILED}; a job never
// regresses from a terminal state.
const (
	JobPending    JobStatus = "PENDING"
	JobProcessing JobStatus = "PROCESSING"
	JobCompleted  JobStatus = "COMPLETED"
	JobFailed     JobStatus = "FAILED"
)

// Terminal reports whether s is a terminal state.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// IngestionJob is one unit of ingestion work referencing one input file.
//
// TotalLines is a processable-line estimate, not the raw physical line
// count. Errors accumulates line-scoped messages and never shrinks; a job
// that finishes with line errors is still COMPLETED (best-effort ingest).
type IngestionJob struct {
	JobID          string     `json:"job_id"`
	SourceLocation string     `json:"source_location"`
	Status         JobStatus  `json:"status"`
	TotalLines     int        `json:"total_lines"`
	ProcessedLines int        `json:"processed_lines"`
	ErrorLines     int        `json:"error_lines"`
	Errors         []string   `json:"errors,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	StartTime      *time.Time `json:"start_time,omitempty"`
	EndTime        *time.Time `json:"end_time,omitempty"`
}
