package pipeline_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"reqforge/internal/pipeline"
	"reqforge/internal/records"
	"reqforge/internal/synthesis"
	"reqforge/internal/testsupport"
)

func writeImportFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestImportDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	dir := cfg.Paths.ImportDir
	writeImportFile(t, dir, "login.txt", "Users must authenticate with MFA.")
	writeImportFile(t, dir, "reports.txt", "The system must email monthly reports.")
	writeImportFile(t, dir, "interview.wav", "not real audio")
	writeImportFile(t, dir, "notes.md", "ignored")
	writeImportFile(t, dir, ".hidden.txt", "ignored")

	importer := pipeline.NewImporter(store, nil)
	result, err := importer.ImportDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("ImportDirectory: %v", err)
	}
	if result.Imported != 3 {
		t.Fatalf("imported = %d, want 3", result.Imported)
	}
	if result.Skipped != 1 {
		t.Fatalf("skipped = %d, want 1", result.Skipped)
	}

	texts, err := store.List(context.Background(), records.Filter{Kind: records.KindText})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(texts) != 2 {
		t.Fatalf("text records = %d", len(texts))
	}
	for _, rec := range texts {
		if rec.Status != records.StatusPending {
			t.Fatalf("imported record not pending: %s", rec.Status)
		}
		if rec.Metadata["source_file"] == "" {
			t.Fatalf("missing source metadata: %#v", rec.Metadata)
		}
	}

	audio, err := store.List(context.Background(), records.Filter{Kind: records.KindAudio})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(audio) != 1 || audio[0].FilePath == "" {
		t.Fatalf("audio records = %#v", audio)
	}
}

func TestImportDirectorySkipsDuplicates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	dir := cfg.Paths.ImportDir
	writeImportFile(t, dir, "a.txt", "The system must archive trades.")
	writeImportFile(t, dir, "b.txt", "The system must archive trades.")

	importer := pipeline.NewImporter(store, nil)
	result, err := importer.ImportDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("ImportDirectory: %v", err)
	}
	if result.Imported != 1 || result.Duplicates != 1 {
		t.Fatalf("result = %#v", result)
	}

	// A second pass over the same directory imports nothing new.
	again, err := importer.ImportDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("ImportDirectory: %v", err)
	}
	if again.Imported != 0 || again.Duplicates != 2 {
		t.Fatalf("second pass = %#v", again)
	}
}

func TestImportDirectoryMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	importer := pipeline.NewImporter(store, nil)
	if _, err := importer.ImportDirectory(context.Background(), filepath.Join(cfg.Paths.ImportDir, "absent")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestExportSection(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	section, err := synthesis.NewAggregator(nil).Synthesize(context.Background(), nil)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	exporter := pipeline.NewExporter(cfg.Paths.ExportDir, nil)
	path, err := exporter.ExportSection(section, "")
	if err != nil {
		t.Fatalf("ExportSection: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var decoded synthesis.Section
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if decoded.Introduction.Purpose != section.Introduction.Purpose {
		t.Fatalf("round trip mismatch: %q", decoded.Introduction.Purpose)
	}
}

func TestExportRecords(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	testsupport.MustCreateRecord(t, store, "The system must track shipments.")
	testsupport.MustCreateRecord(t, store, "The system must price orders.")

	exporter := pipeline.NewExporter(cfg.Paths.ExportDir, nil)
	path, err := exporter.ExportRecords(context.Background(), store, records.Filter{})
	if err != nil {
		t.Fatalf("ExportRecords: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var decoded []records.Record
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("exported %d records, want 2", len(decoded))
	}
}
