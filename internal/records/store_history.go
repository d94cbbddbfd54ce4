package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"reqforge/internal/services"
)

// AppendHistory records a processing step outcome for a record.
func (s *Store) AppendHistory(ctx context.Context, entry HistoryEntry) error {
	if entry.RecordID == "" || entry.Step == "" {
		return services.Wrap(services.ErrValidation, "store", "append-history",
			"history entry needs record id and step", nil)
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	if _, err := s.execWithRetry(
		ensureContext(ctx),
		`INSERT INTO processing_history (record_id, step, status, message, duration_ms, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		entry.RecordID,
		entry.Step,
		string(entry.Status),
		nullableString(entry.Message),
		entry.Duration.Milliseconds(),
		createdAt.Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// History returns processing history for a record, oldest first.
func (s *Store) History(ctx context.Context, recordID string) ([]HistoryEntry, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT id, record_id, step, status, message, duration_ms, created_at
         FROM processing_history WHERE record_id = ? ORDER BY id`,
		recordID,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var (
			entry      HistoryEntry
			status     string
			message    sql.NullString
			durationMS int64
			createdAt  string
		)
		if err := rows.Scan(&entry.ID, &entry.RecordID, &entry.Step, &status, &message, &durationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entry.Status = Status(status)
		entry.Message = message.String
		entry.Duration = time.Duration(durationMS) * time.Millisecond
		entry.CreatedAt = parseTimestamp(createdAt)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// StartBatch records the beginning of a batch run.
func (s *Store) StartBatch(ctx context.Context, batchID string, total int) error {
	if batchID == "" {
		return services.Wrap(services.ErrValidation, "store", "start-batch", "batch id is empty", nil)
	}
	if _, err := s.execWithRetry(
		ensureContext(ctx),
		`INSERT INTO batch_runs (batch_id, total, started_at) VALUES (?, ?, ?)`,
		batchID,
		total,
		time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("start batch: %w", err)
	}
	return nil
}

// FinishBatch records the outcome of a batch run.
func (s *Store) FinishBatch(ctx context.Context, batchID string, succeeded, failed int) error {
	if _, err := s.execWithRetry(
		ensureContext(ctx),
		`UPDATE batch_runs SET succeeded = ?, failed = ?, finished_at = ? WHERE batch_id = ?`,
		succeeded,
		failed,
		time.Now().UTC().Format(time.RFC3339Nano),
		batchID,
	); err != nil {
		return fmt.Errorf("finish batch: %w", err)
	}
	return nil
}

// Batch returns one batch run summary.
func (s *Store) Batch(ctx context.Context, batchID string) (*BatchSummary, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT batch_id, total, succeeded, failed, started_at, finished_at
         FROM batch_runs WHERE batch_id = ?`,
		batchID,
	)
	summary, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "store", "batch", fmt.Sprintf("batch %s", batchID), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return summary, nil
}

// Batches lists batch run summaries, newest first.
func (s *Store) Batches(ctx context.Context, limit int) ([]*BatchSummary, error) {
	query := `SELECT batch_id, total, succeeded, failed, started_at, finished_at
        FROM batch_runs ORDER BY started_at DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var summaries []*BatchSummary
	for rows.Next() {
		summary, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

func scanBatch(row rowScanner) (*BatchSummary, error) {
	var (
		summary    BatchSummary
		startedAt  string
		finishedAt sql.NullString
	)
	if err := row.Scan(&summary.BatchID, &summary.Total, &summary.Succeeded, &summary.Failed, &startedAt, &finishedAt); err != nil {
		return nil, err
	}
	summary.StartedAt = parseTimestamp(startedAt)
	if finishedAt.Valid {
		summary.FinishedAt = parseTimestamp(finishedAt.String)
	}
	return &summary, nil
}
