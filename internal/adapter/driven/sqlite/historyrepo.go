package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"varafleet/internal/domain/model"
	"varafleet/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.HistoryStore = (*HistoryRepo)(nil)

// HistoryRepo is the SQLite implementation of the HistoryStore port interface.
type HistoryRepo struct {
	db *DB
}

// NewHistoryRepo creates a new HistoryRepo backed by the given DB.
func NewHistoryRepo(db *DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

// Add inserts a new tracked run and returns its row id.
func (r *HistoryRepo) Add(ctx context.Context, entry model.HistoryEntry) (int64, error) {
	const query = `
		INSERT INTO runs (name, language, controller_repo, analysis_id, storage_key,
			repository_count, status, completed, failure_reason, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	startedAt := entry.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}

	result, err := r.db.Writer.ExecContext(ctx, query,
		entry.Name,
		entry.Language,
		entry.ControllerRepo,
		entry.AnalysisID,
		entry.StorageKey,
		entry.RepositoryCount,
		string(entry.Status),
		entry.Completed,
		entry.FailureReason,
		startedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("add run %s: %w", entry.StorageKey, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	return id, nil
}

// GetByStorageKey retrieves a tracked run by its storage key. Returns nil,
// nil if no such run exists.
func (r *HistoryRepo) GetByStorageKey(ctx context.Context, storageKey string) (*model.HistoryEntry, error) {
	const query = selectRuns + ` WHERE storage_key = ?`

	entry, err := scanRun(r.db.Reader.QueryRowContext(ctx, query, storageKey))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", storageKey, err)
	}

	return entry, nil
}

// ListAll returns all tracked runs, most recently started first.
func (r *HistoryRepo) ListAll(ctx context.Context) ([]model.HistoryEntry, error) {
	const query = selectRuns + ` ORDER BY started_at DESC, id DESC`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var entries []model.HistoryEntry
	for rows.Next() {
		entry, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return entries, nil
}

// MarkCompleted records a run's successful terminal outcome.
func (r *HistoryRepo) MarkCompleted(ctx context.Context, storageKey string, finishedAt time.Time) error {
	const query = `
		UPDATE runs SET status = ?, completed = 1, finished_at = ?
		WHERE storage_key = ?`

	return r.updateRun(ctx, storageKey, query,
		string(model.RunStatusCompleted),
		finishedAt.UTC().Format(time.RFC3339),
		storageKey,
	)
}

// MarkFailed records a run's failed or cancelled terminal outcome, keeping
// the supplied reason verbatim.
func (r *HistoryRepo) MarkFailed(ctx context.Context, storageKey, reason string, finishedAt time.Time) error {
	const query = `
		UPDATE runs SET status = ?, failure_reason = ?, finished_at = ?
		WHERE storage_key = ?`

	return r.updateRun(ctx, storageKey, query,
		string(model.RunStatusFailed),
		reason,
		finishedAt.UTC().Format(time.RFC3339),
		storageKey,
	)
}

// Remove deletes a tracked run. Returns ErrRunNotFound if no such run exists.
func (r *HistoryRepo) Remove(ctx context.Context, storageKey string) error {
	const query = `DELETE FROM runs WHERE storage_key = ?`
	return r.updateRun(ctx, storageKey, query, storageKey)
}

func (r *HistoryRepo) updateRun(ctx context.Context, storageKey, query string, args ...any) error {
	result, err := r.db.Writer.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update run %s: %w", storageKey, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update run %s: %w", storageKey, driven.ErrRunNotFound)
	}

	return nil
}

const selectRuns = `
	SELECT id, name, language, controller_repo, analysis_id, storage_key,
		repository_count, status, completed, failure_reason, started_at, finished_at
	FROM runs`

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*model.HistoryEntry, error) {
	var entry model.HistoryEntry
	var status string
	var startedAt string
	var finishedAt sql.NullString

	err := s.Scan(
		&entry.ID,
		&entry.Name,
		&entry.Language,
		&entry.ControllerRepo,
		&entry.AnalysisID,
		&entry.StorageKey,
		&entry.RepositoryCount,
		&status,
		&entry.Completed,
		&entry.FailureReason,
		&startedAt,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Status = model.RunStatus(status)

	entry.StartedAt, err = parseTime(startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}

	if finishedAt.Valid {
		entry.FinishedAt, err = parseTime(finishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
	}

	return &entry, nil
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
