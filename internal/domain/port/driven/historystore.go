package driven

import (
	"context"
	"errors"
	"time"

	"varafleet/internal/domain/model"
)

// ErrRunNotFound indicates the requested run does not exist in the history store.
var ErrRunNotFound = errors.New("run not found")

// HistoryStore defines the driven port for tracked-run persistence.
// MarkCompleted and MarkFailed return ErrRunNotFound if no entry exists for
// the given storage key.
type HistoryStore interface {
	Add(ctx context.Context, entry model.HistoryEntry) (int64, error)
	GetByStorageKey(ctx context.Context, storageKey string) (*model.HistoryEntry, error)
	ListAll(ctx context.Context) ([]model.HistoryEntry, error)
	MarkCompleted(ctx context.Context, storageKey string, finishedAt time.Time) error
	MarkFailed(ctx context.Context, storageKey, reason string, finishedAt time.Time) error
	Remove(ctx context.Context, storageKey string) error
}
