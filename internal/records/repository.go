package records

import (
	"context"
	"time"
)

// Repository is the full record-store contract. The pending queue is a
// filtered query over record state, not a separate structure, so queue and
// store share one consistency domain by construction. Pipeline code depends
// on this interface rather than on *Store, keeping the storage engine
// swappable.
type Repository interface {
	Create(ctx context.Context, rec *Record) (*Record, error)
	GetByID(ctx context.Context, id string) (*Record, error)
	Update(ctx context.Context, rec *Record) error
	SetStatus(ctx context.Context, id string, status Status, errorMessage string) error
	List(ctx context.Context, filter Filter) ([]*Record, error)
	NextPending(ctx context.Context, limit int) ([]*Record, error)
	MarkBatch(ctx context.Context, status Status, errorMessage string, ids ...string) (int, error)
	RetryFailed(ctx context.Context, ids ...string) (int, error)
	CleanupOlderThan(ctx context.Context, status Status, cutoff time.Time) (int, error)
	AppendHistory(ctx context.Context, entry HistoryEntry) error
	History(ctx context.Context, recordID string) ([]HistoryEntry, error)
	StartBatch(ctx context.Context, batchID string, total int) error
	FinishBatch(ctx context.Context, batchID string, succeeded, failed int) error
	Batch(ctx context.Context, batchID string) (*BatchSummary, error)
	Batches(ctx context.Context, limit int) ([]*BatchSummary, error)
	Stats(ctx context.Context) (*Stats, error)
}

var _ Repository = (*Store)(nil)
