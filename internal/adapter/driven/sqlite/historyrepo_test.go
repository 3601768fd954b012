package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"varafleet/internal/domain/model"
	"varafleet/internal/domain/port/driven"
)

func makeEntry(storageKey string) model.HistoryEntry {
	return model.HistoryEntry{
		Name:            "find-sqli",
		Language:        "javascript",
		ControllerRepo:  "octo/controller",
		AnalysisID:      42,
		StorageKey:      storageKey,
		RepositoryCount: 17,
		Status:          model.RunStatusInProgress,
		StartedAt:       time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC),
	}
}

func TestHistoryRepo_AddAndGet(t *testing.T) {
	repo := NewHistoryRepo(setupTestDB(t))
	ctx := context.Background()

	id, err := repo.Add(ctx, makeEntry("find-sqli-abc"))
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := repo.GetByStorageKey(ctx, "find-sqli-abc")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "find-sqli", got.Name)
	assert.Equal(t, "javascript", got.Language)
	assert.Equal(t, "octo/controller", got.ControllerRepo)
	assert.Equal(t, int64(42), got.AnalysisID)
	assert.Equal(t, 17, got.RepositoryCount)
	assert.Equal(t, model.RunStatusInProgress, got.Status)
	assert.False(t, got.Completed)
	assert.Empty(t, got.FailureReason)
	assert.Equal(t, makeEntry("").StartedAt, got.StartedAt)
	assert.True(t, got.FinishedAt.IsZero())
}

func TestHistoryRepo_Add_DuplicateStorageKey(t *testing.T) {
	repo := NewHistoryRepo(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.Add(ctx, makeEntry("find-sqli-abc"))
	require.NoError(t, err)

	_, err = repo.Add(ctx, makeEntry("find-sqli-abc"))
	assert.Error(t, err, "storage keys are unique per run")
}

func TestHistoryRepo_GetByStorageKey_NotFound(t *testing.T) {
	repo := NewHistoryRepo(setupTestDB(t))

	got, err := repo.GetByStorageKey(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got, "missing run should return nil without error")
}

func TestHistoryRepo_MarkCompleted(t *testing.T) {
	repo := NewHistoryRepo(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.Add(ctx, makeEntry("find-sqli-abc"))
	require.NoError(t, err)

	finishedAt := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.MarkCompleted(ctx, "find-sqli-abc", finishedAt))

	got, err := repo.GetByStorageKey(ctx, "find-sqli-abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.RunStatusCompleted, got.Status)
	assert.True(t, got.Completed)
	assert.Equal(t, finishedAt, got.FinishedAt)
	assert.Empty(t, got.FailureReason)
}

func TestHistoryRepo_MarkFailed(t *testing.T) {
	repo := NewHistoryRepo(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.Add(ctx, makeEntry("find-sqli-abc"))
	require.NoError(t, err)

	finishedAt := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.MarkFailed(ctx, "find-sqli-abc", "Cancelled", finishedAt))

	got, err := repo.GetByStorageKey(ctx, "find-sqli-abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "Cancelled", got.FailureReason)
	assert.False(t, got.Completed)
}

func TestHistoryRepo_Mark_NotFound(t *testing.T) {
	repo := NewHistoryRepo(setupTestDB(t))
	ctx := context.Background()

	err := repo.MarkCompleted(ctx, "nope", time.Now().UTC())
	assert.True(t, errors.Is(err, driven.ErrRunNotFound))

	err = repo.MarkFailed(ctx, "nope", "reason", time.Now().UTC())
	assert.True(t, errors.Is(err, driven.ErrRunNotFound))
}

func TestHistoryRepo_ListAll_MostRecentFirst(t *testing.T) {
	repo := NewHistoryRepo(setupTestDB(t))
	ctx := context.Background()

	older := makeEntry("older")
	older.StartedAt = time.Date(2026, 8, 18, 9, 0, 0, 0, time.UTC)
	newer := makeEntry("newer")
	newer.StartedAt = time.Date(2026, 8, 21, 9, 0, 0, 0, time.UTC)

	_, err := repo.Add(ctx, older)
	require.NoError(t, err)
	_, err = repo.Add(ctx, newer)
	require.NoError(t, err)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "newer", all[0].StorageKey)
	assert.Equal(t, "older", all[1].StorageKey)
}

func TestHistoryRepo_Remove(t *testing.T) {
	repo := NewHistoryRepo(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.Add(ctx, makeEntry("find-sqli-abc"))
	require.NoError(t, err)

	require.NoError(t, repo.Remove(ctx, "find-sqli-abc"))

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	err = repo.Remove(ctx, "find-sqli-abc")
	assert.True(t, errors.Is(err, driven.ErrRunNotFound))
}
