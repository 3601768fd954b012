// Package storage implements the ResultStore port on the local filesystem.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"varafleet/internal/domain/model"
	"varafleet/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ResultStore = (*Store)(nil)

// File names inside a run directory. The timestamp marker is consumed by an
// external retention policy when deciding which old runs to purge.
const (
	timestampFile = "timestamp"
	jobFile       = "query.json"
	summaryFile   = "results.json"
)

// Store keeps each run's durable state in its own directory under root,
// keyed by the run's storage key. Keys are unique per run, so no two runs
// ever write the same path and no cross-run locking is needed.
type Store struct {
	root string
}

// NewStore creates a Store rooted at the given directory, creating it if
// needed.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root %s: %w", root, err)
	}
	return &Store{root: root}, nil
}

// CreateRunDir creates the run's directory and writes its creation timestamp
// marker.
func (s *Store) CreateRunDir(storageKey string, createdAt time.Time) error {
	dir := s.RunDir(storageKey)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create run dir %s: %w", dir, err)
	}

	marker := createdAt.UTC().Format(time.RFC3339)
	if err := os.WriteFile(filepath.Join(dir, timestampFile), []byte(marker), 0o644); err != nil {
		return fmt.Errorf("write timestamp marker: %w", err)
	}

	return nil
}

// WriteJob persists the run's job descriptor.
func (s *Store) WriteJob(storageKey string, job model.VariantJob) error {
	return s.writeJSON(storageKey, jobFile, job)
}

// ReadJob loads the run's job descriptor. Returns ErrRunNotFound if the run
// directory or descriptor does not exist.
func (s *Store) ReadJob(storageKey string) (*model.VariantJob, error) {
	var job model.VariantJob
	if err := s.readJSON(storageKey, jobFile, &job); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("job descriptor for %s: %w", storageKey, driven.ErrRunNotFound)
		}
		return nil, err
	}
	return &job, nil
}

// WriteSummary persists the run's result summary. Written at most once per
// run, when the terminal outcome is classified.
func (s *Store) WriteSummary(storageKey string, summary model.QueryResultSummary) error {
	return s.writeJSON(storageKey, summaryFile, summary)
}

// ReadSummary loads the run's result summary. Returns ErrNoSummary if none
// has been persisted.
func (s *Store) ReadSummary(storageKey string) (*model.QueryResultSummary, error) {
	var summary model.QueryResultSummary
	if err := s.readJSON(storageKey, summaryFile, &summary); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("summary for %s: %w", storageKey, driven.ErrNoSummary)
		}
		return nil, err
	}
	return &summary, nil
}

// RunDir returns the run's directory path.
func (s *Store) RunDir(storageKey string) string {
	return filepath.Join(s.root, storageKey)
}

// RemoveRun deletes the run's directory and everything beneath it.
func (s *Store) RemoveRun(storageKey string) error {
	if err := os.RemoveAll(s.RunDir(storageKey)); err != nil {
		return fmt.Errorf("remove run dir for %s: %w", storageKey, err)
	}
	return nil
}

func (s *Store) writeJSON(storageKey, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	path := filepath.Join(s.RunDir(storageKey), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

func (s *Store) readJSON(storageKey, name string, v any) error {
	path := filepath.Join(s.RunDir(storageKey), name)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", path, err)
	}

	return nil
}
