package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"reqforge/internal/config"
	"reqforge/internal/logging"
	"reqforge/internal/records"
	"reqforge/internal/services"
)

// ErrBatchRunning is returned when another process holds the batch lock.
var ErrBatchRunning = errors.New("another batch run holds the data directory lock")

// lockFileName lives under the data directory next to the database.
const lockFileName = "reqforge.lock"

// Runner claims pending records in batches and fans them out over a worker
// pool. A file lock serializes batch runs across processes sharing one data
// directory.
type Runner struct {
	store     records.Repository
	processor *Processor
	cfg       *config.Config
	logger    *slog.Logger
}

// NewRunner builds a batch runner around an already-wired processor.
func NewRunner(store records.Repository, processor *Processor, cfg *config.Config, logger *slog.Logger) *Runner {
	return &Runner{
		store:     store,
		processor: processor,
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "batch"),
	}
}

// Run claims up to batch_size pending records, processes them concurrently,
// and records a batch summary. Individual record failures are isolated: they
// mark that record failed and count against the summary without aborting the
// run. Returns ErrBatchRunning when another run holds the lock.
func (r *Runner) Run(ctx context.Context) (*records.BatchSummary, error) {
	lock := flock.New(filepath.Join(r.cfg.Paths.DataDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "batch", "lock", "acquire batch lock", err)
	}
	if !locked {
		return nil, ErrBatchRunning
	}
	defer lock.Unlock()

	batchID := uuid.NewString()
	ctx = services.WithBatchID(ctx, batchID)
	logger := logging.WithContext(ctx, r.logger)

	claimed, err := r.store.NextPending(ctx, r.cfg.Processing.BatchSize)
	if err != nil {
		return nil, err
	}
	if err := r.store.StartBatch(ctx, batchID, len(claimed)); err != nil {
		return nil, err
	}
	logger.Info("batch started", logging.Int(logging.FieldCount, len(claimed)))

	succeeded, failed := r.processAll(ctx, claimed)

	if err := r.store.FinishBatch(context.WithoutCancel(ctx), batchID, succeeded, failed); err != nil {
		return nil, err
	}
	summary, err := r.store.Batch(context.WithoutCancel(ctx), batchID)
	if err != nil {
		return nil, err
	}

	logger.Info("batch finished",
		logging.Int("succeeded", succeeded),
		logging.Int("failed", failed))
	return summary, nil
}

// processAll fans the claimed records out over max_workers goroutines. Each
// record gets its own timeout; cancellation of the batch context stops the
// feed but lets in-flight records finish their bookkeeping.
func (r *Runner) processAll(ctx context.Context, claimed []*records.Record) (succeeded, failed int) {
	if len(claimed) == 0 {
		return 0, 0
	}

	workers := r.cfg.Processing.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	if workers > len(claimed) {
		workers = len(claimed)
	}

	feed := make(chan *records.Record)
	results := make(chan error, len(claimed))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range feed {
				results <- r.processOne(ctx, rec)
			}
		}()
	}

feeding:
	for _, rec := range claimed {
		select {
		case feed <- rec:
		case <-ctx.Done():
			break feeding
		}
	}
	close(feed)
	wg.Wait()
	close(results)

	for err := range results {
		if err != nil {
			failed++
		} else {
			succeeded++
		}
	}
	// Records claimed but never fed count as failures so the summary adds up.
	for _, rec := range claimed[succeeded+failed:] {
		r.releaseUnprocessed(rec)
		failed++
	}
	return succeeded, failed
}

func (r *Runner) processOne(ctx context.Context, rec *records.Record) error {
	timeout := time.Duration(r.cfg.Processing.RecordTimeoutSeconds) * time.Second
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	_, err := r.processor.Process(ctx, rec)
	return err
}

// releaseUnprocessed marks a claimed-but-unstarted record failed so it does
// not sit in processing forever; retry moves it back to pending.
func (r *Runner) releaseUnprocessed(rec *records.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.store.SetStatus(ctx, rec.ID, records.StatusFailed, "batch cancelled before processing"); err != nil {
		r.logger.Error("release unprocessed record",
			logging.String(logging.FieldRecordID, rec.ID), logging.Error(err))
	}
}
