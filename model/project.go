package model

import (
	"time"
)

// DocumentRecord statuses.
const (
	RecordNormal  = "normal"
	RecordWarning = "warning"
)

// DocumentRecord is the externally-facing shape of one analyzed
// document. IDs are assigned by local ingestion order (doc_00,
// doc_01, ...) and stay stable for the snapshot's lifetime.
type DocumentRecord struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Date       string            `json:"date"`
	AllDates   []string          `json:"all_dates"`
	DocType    string            `json:"docType"`
	Phase      string            `json:"phase"`
	Summary    string            `json:"summary"`
	Amount     int               `json:"amount"`
	AllAmounts []ExtractedAmount `json:"all_amounts"`
	Parties    []string          `json:"parties"`
	Keywords   []string          `json:"keywords"`
	Status     string            `json:"status"`
	Message    string            `json:"message"`
	RawText    string            `json:"raw_text"`
	Children   []*DocumentRecord `json:"children"`
}

// ProjectSnapshot aggregates everything known about one analyzed
// folder. Summary stays nil until the remote merge populates it; it is
// populated at most once.
type ProjectSnapshot struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	FileCount  int               `json:"fileCount"`
	Warnings   int               `json:"warnings"`
	Files      []*DocumentRecord `json:"files"`
	Validation ValidationResult  `json:"validation"`
	Summary    map[string]any    `json:"summary"`
}

// AnalysisJob states. Transitions are monotonic: once a job reaches
// done or error it never moves again; a fresh analysis for the same
// project replaces the whole job record instead.
const (
	JobPending   = "pending"
	JobAnalyzing = "analyzing"
	JobDone      = "done"
	JobError     = "error"
)

// AnalysisJob tracks one analysis run for a project. The job record is
// owned by the project store; all mutation goes through store methods
// so a superseded background task can never touch the replacing entry.
type AnalysisJob struct {
	ProjectID    string           `json:"project_id"`
	State        string           `json:"state"`
	RemoteTaskID string           `json:"remote_task_id,omitempty"`
	Snapshot     *ProjectSnapshot `json:"snapshot,omitempty"`
	ErrorMsg     string           `json:"error_msg,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}
