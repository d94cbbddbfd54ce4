package records

import (
	"context"
	"fmt"
	"time"

	"reqforge/internal/services"
)

// RetryFailed moves failed records back to pending so the next batch run
// picks them up again. This is the only sanctioned reverse lifecycle path.
// When ids is empty every failed record is reset. Returns the reset count.
func (s *Store) RetryFailed(ctx context.Context, ids ...string) (int, error) {
	ctx = ensureContext(ctx)
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	if len(ids) == 0 {
		res, err := s.execWithRetry(
			ctx,
			`UPDATE records SET status = ?, error_message = NULL, updated_at = ? WHERE status = ?`,
			string(StatusPending),
			timestamp,
			string(StatusFailed),
		)
		if err != nil {
			return 0, fmt.Errorf("retry failed records: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		return int(affected), nil
	}

	reset := 0
	for _, id := range ids {
		rec, err := s.GetByID(ctx, id)
		if err != nil {
			return reset, err
		}
		if rec.Status != StatusFailed {
			return reset, services.Wrap(services.ErrValidation, "store", "retry",
				fmt.Sprintf("record %s is %s, only failed records can be retried", id, rec.Status), nil)
		}
		if _, err := s.execWithRetry(
			ctx,
			`UPDATE records SET status = ?, error_message = NULL, updated_at = ? WHERE id = ?`,
			string(StatusPending),
			timestamp,
			id,
		); err != nil {
			return reset, fmt.Errorf("retry record %s: %w", id, err)
		}
		reset++
	}
	return reset, nil
}

// MarkBatch transitions every listed record to status, validating each
// transition individually. errorMessage is stored only when status is failed.
// Records are updated one statement at a time; on the first invalid
// transition or database error the records already updated stay updated, and
// the returned count says how many. Callers must not assume cross-record
// atomicity.
func (s *Store) MarkBatch(ctx context.Context, status Status, errorMessage string, ids ...string) (int, error) {
	ctx = ensureContext(ctx)

	marked := 0
	for _, id := range ids {
		current, err := s.GetByID(ctx, id)
		if err != nil {
			return marked, err
		}
		if !ValidTransition(current.Status, status) {
			return marked, services.Wrap(services.ErrValidation, "store", "mark-batch",
				fmt.Sprintf("record %s: invalid transition %s -> %s", id, current.Status, status), nil)
		}

		message := ""
		if status == StatusFailed {
			message = errorMessage
		}
		if _, err := s.execWithRetry(
			ctx,
			`UPDATE records SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
			string(status),
			nullableString(message),
			time.Now().UTC().Format(time.RFC3339Nano),
			id,
		); err != nil {
			return marked, fmt.Errorf("mark record %s: %w", id, err)
		}
		marked++
	}
	return marked, nil
}

// CleanupOlderThan deletes terminal records with an updated_at before cutoff.
// History rows go with them via the foreign key cascade.
func (s *Store) CleanupOlderThan(ctx context.Context, status Status, cutoff time.Time) (int, error) {
	if status != StatusCompleted && status != StatusFailed {
		return 0, services.Wrap(services.ErrValidation, "store", "cleanup",
			fmt.Sprintf("cleanup only supports terminal statuses, got %s", status), nil)
	}

	res, err := s.execWithRetry(
		ensureContext(ctx),
		`DELETE FROM records WHERE status = ? AND updated_at < ?`,
		string(status),
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("cleanup records: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(affected), nil
}

// Stats aggregates record counts by status and kind.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	ctx = ensureContext(ctx)
	stats := &Stats{
		ByStatus: make(map[Status]int),
		ByKind:   make(map[Kind]int),
	}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM records GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		stats.ByStatus[Status(status)] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	kindRows, err := s.db.QueryContext(ctx, `SELECT kind, COUNT(1) FROM records GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("count by kind: %w", err)
	}
	defer kindRows.Close()
	for kindRows.Next() {
		var (
			kind  string
			count int
		)
		if err := kindRows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("scan kind count: %w", err)
		}
		stats.ByKind[Kind(kind)] = count
	}
	return stats, kindRows.Err()
}
