package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"reqforge/internal/services"
)

const recordColumns = `id, content, kind, file_path, metadata_json, processed_json,
    status, error_message, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec           Record
		kind          string
		status        string
		filePath      sql.NullString
		metadataJSON  sql.NullString
		processedJSON sql.NullString
		errorMessage  sql.NullString
		createdAt     string
		updatedAt     string
	)
	if err := row.Scan(
		&rec.ID, &rec.Content, &kind, &filePath, &metadataJSON, &processedJSON,
		&status, &errorMessage, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	rec.Kind = Kind(kind)
	rec.Status = Status(status)
	rec.FilePath = filePath.String
	rec.ErrorMessage = errorMessage.String
	rec.CreatedAt = parseTimestamp(createdAt)
	rec.UpdatedAt = parseTimestamp(updatedAt)

	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &rec.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata for %s: %w", rec.ID, err)
		}
	}
	if processedJSON.Valid && processedJSON.String != "" {
		if err := json.Unmarshal([]byte(processedJSON.String), &rec.ProcessedData); err != nil {
			return nil, fmt.Errorf("decode processed data for %s: %w", rec.ID, err)
		}
	}
	return &rec, nil
}

func encodeMap[T any](value map[string]T) (any, error) {
	if len(value) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Create inserts a new pending record. The id is derived from content when
// empty, so importing the same statement twice is rejected by the primary key.
func (s *Store) Create(ctx context.Context, rec *Record) (*Record, error) {
	if rec == nil {
		return nil, errors.New("record is nil")
	}
	content := strings.TrimSpace(rec.Content)
	if content == "" {
		return nil, services.Wrap(services.ErrValidation, "store", "create", "record content is empty", nil)
	}

	id := rec.ID
	if id == "" {
		id = NewRecordID(content)
	}
	kind := rec.Kind
	if kind == "" {
		kind = KindText
	}

	metadataJSON, err := encodeMap(rec.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.execWithRetry(
		ctx,
		`INSERT INTO records (
            id, content, kind, file_path, metadata_json, status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		content,
		string(kind),
		nullableString(rec.FilePath),
		metadataJSON,
		string(StatusPending),
		timestamp,
		timestamp,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") || strings.Contains(err.Error(), "PRIMARY KEY") {
			return nil, services.Wrap(services.ErrValidation, "store", "create",
				fmt.Sprintf("record %s already exists", id), err)
		}
		return nil, fmt.Errorf("insert record: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a record by identifier. Returns services.ErrNotFound when
// no record matches.
func (s *Store) GetByID(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "store", "get", fmt.Sprintf("record %s", id), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// Update persists changes to an existing record and bumps updated_at.
// Status changes are validated against the lifecycle; concurrent writers are
// last-write-wins for the non-status columns.
func (s *Store) Update(ctx context.Context, rec *Record) error {
	if rec == nil {
		return errors.New("record is nil")
	}

	current, err := s.GetByID(ctx, rec.ID)
	if err != nil {
		return err
	}
	if !ValidTransition(current.Status, rec.Status) {
		return services.Wrap(services.ErrValidation, "store", "update",
			fmt.Sprintf("invalid status transition %s -> %s for record %s", current.Status, rec.Status, rec.ID), nil)
	}

	metadataJSON, err := encodeMap(rec.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	processedJSON, err := encodeMap(rec.ProcessedData)
	if err != nil {
		return fmt.Errorf("encode processed data: %w", err)
	}

	rec.UpdatedAt = time.Now().UTC()
	if _, err := s.execWithRetry(
		ctx,
		`UPDATE records
         SET content = ?, kind = ?, file_path = ?, metadata_json = ?, processed_json = ?,
             status = ?, error_message = ?, updated_at = ?
         WHERE id = ?`,
		rec.Content,
		string(rec.Kind),
		nullableString(rec.FilePath),
		metadataJSON,
		processedJSON,
		string(rec.Status),
		nullableString(rec.ErrorMessage),
		rec.UpdatedAt.Format(time.RFC3339Nano),
		rec.ID,
	); err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	return nil
}

// SetStatus transitions a record and optionally sets the error message.
func (s *Store) SetStatus(ctx context.Context, id string, status Status, errorMessage string) error {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !ValidTransition(current.Status, status) {
		return services.Wrap(services.ErrValidation, "store", "set-status",
			fmt.Sprintf("invalid status transition %s -> %s for record %s", current.Status, status, id), nil)
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.execWithRetry(
		ctx,
		`UPDATE records SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		string(status),
		nullableString(errorMessage),
		timestamp,
		id,
	); err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	return nil
}

// List returns records matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records`
	var (
		conditions []string
		args       []any
	)
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Kind != "" {
		conditions = append(conditions, "kind = ?")
		args = append(args, string(filter.Kind))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var result []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// NextPending claims up to limit pending records by moving them to
// processing inside one transaction, so concurrent batch runners never pick
// the same record twice.
func (s *Store) NextPending(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		return nil, nil
	}
	ctx = ensureContext(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin claim tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(
		ctx,
		`SELECT `+recordColumns+` FROM records WHERE status = ? ORDER BY created_at, id LIMIT ?`,
		string(StatusPending),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select pending: %w", err)
	}

	var claimed []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan pending: %w", err)
		}
		claimed = append(claimed, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(claimed) == 0 {
		return nil, tx.Commit()
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	for _, rec := range claimed {
		if _, err := tx.ExecContext(
			ctx,
			`UPDATE records SET status = ?, updated_at = ? WHERE id = ?`,
			string(StatusProcessing),
			timestamp,
			rec.ID,
		); err != nil {
			return nil, fmt.Errorf("claim record %s: %w", rec.ID, err)
		}
		rec.Status = StatusProcessing
		rec.UpdatedAt = parseTimestamp(timestamp)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit claim: %w", err)
	}
	return claimed, nil
}
