package driven

import (
	"errors"
	"time"

	"varafleet/internal/domain/model"
)

// ErrNoSummary indicates no result summary has been persisted for a run.
var ErrNoSummary = errors.New("no result summary stored for run")

// ResultStore defines the driven port for a run's durable on-disk state.
// Each run owns an exclusive directory keyed by its storage key; within one
// run the summary is written at most once.
type ResultStore interface {
	// CreateRunDir creates the run's directory and stamps it with a creation
	// timestamp marker consumed by an external retention policy.
	CreateRunDir(storageKey string, createdAt time.Time) error

	// WriteJob persists the job descriptor. Called before polling begins so
	// a crash mid-poll still leaves a recoverable record.
	WriteJob(storageKey string, job model.VariantJob) error
	ReadJob(storageKey string) (*model.VariantJob, error)

	WriteSummary(storageKey string, summary model.QueryResultSummary) error
	// ReadSummary returns ErrNoSummary if the run has no persisted summary.
	ReadSummary(storageKey string) (*model.QueryResultSummary, error)

	// RunDir returns the run's directory path. The directory may not exist yet.
	RunDir(storageKey string) string

	// RemoveRun deletes the run's directory and everything beneath it.
	RemoveRun(storageKey string) error
}
