package model

import "time"

// RunStatus represents the tracked state of a variant-analysis run.
type RunStatus string

const (
	RunStatusInProgress RunStatus = "in_progress"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
)

// HistoryEntry is one tracked run in the local history store. Status,
// Completed, and FailureReason transition exactly once, when the run's
// terminal outcome is classified; every other field is written at
// registration time and never changes.
type HistoryEntry struct {
	ID              int64
	Name            string
	Language        string
	ControllerRepo  string
	AnalysisID      int64
	StorageKey      string
	RepositoryCount int
	Status          RunStatus
	Completed       bool
	FailureReason   string
	StartedAt       time.Time
	FinishedAt      time.Time // zero until the run reaches a terminal status
}
