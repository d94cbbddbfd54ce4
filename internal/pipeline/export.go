package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"reqforge/internal/logging"
	"reqforge/internal/records"
	"reqforge/internal/synthesis"
)

// Exporter writes records and synthesized documents as JSON under the
// configured export directory.
type Exporter struct {
	dir    string
	logger *slog.Logger
}

func NewExporter(dir string, logger *slog.Logger) *Exporter {
	return &Exporter{
		dir:    dir,
		logger: logging.NewComponentLogger(logger, "export"),
	}
}

// ExportRecords writes the records matching filter to a timestamped JSON
// file and returns its path.
func (e *Exporter) ExportRecords(ctx context.Context, store records.Repository, filter records.Filter) (string, error) {
	matched, err := store.List(ctx, filter)
	if err != nil {
		return "", err
	}
	path := e.fileName("records")
	if err := writeJSON(path, matched); err != nil {
		return "", err
	}
	e.logger.Info("records exported",
		logging.String(logging.FieldPath, path),
		logging.Int(logging.FieldCount, len(matched)))
	return path, nil
}

// ExportSection writes a synthesized document to path, or to a timestamped
// file under the export directory when path is empty. Returns the path
// written.
func (e *Exporter) ExportSection(section *synthesis.Section, path string) (string, error) {
	if path == "" {
		path = e.fileName("srs")
	}
	if err := writeJSON(path, section); err != nil {
		return "", err
	}
	e.logger.Info("document exported", logging.String(logging.FieldPath, path))
	return path, nil
}

func (e *Exporter) fileName(prefix string) string {
	stamp := time.Now().UTC().Format("20060102-150405")
	return filepath.Join(e.dir, fmt.Sprintf("%s-%s.json", prefix, stamp))
}

func writeJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
