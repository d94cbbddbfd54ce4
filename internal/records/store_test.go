package records_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"reqforge/internal/records"
	"reqforge/internal/services"
)

func newStore(t *testing.T) *records.Store {
	t.Helper()
	store, err := records.OpenPath(filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustCreate(t *testing.T, store *records.Store, content string) *records.Record {
	t.Helper()
	rec, err := store.Create(context.Background(), &records.Record{Content: content})
	if err != nil {
		t.Fatalf("create record: %v", err)
	}
	return rec
}

func TestCreateAndGet(t *testing.T) {
	store := newStore(t)
	rec := mustCreate(t, store, "The system shall authenticate users before granting access.")

	if rec.ID == "" {
		t.Fatal("expected derived record id")
	}
	if rec.Status != records.StatusPending {
		t.Fatalf("expected pending status, got %s", rec.Status)
	}
	if rec.Kind != records.KindText {
		t.Fatalf("expected text kind, got %s", rec.Kind)
	}
	if rec.CreatedAt.IsZero() || rec.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}

	fetched, err := store.GetByID(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if fetched.Content != rec.Content {
		t.Fatalf("content mismatch: %q vs %q", fetched.Content, rec.Content)
	}
}

func TestCreateDuplicateContentRejected(t *testing.T) {
	store := newStore(t)
	content := "The system shall log every failed login attempt."
	mustCreate(t, store, content)

	_, err := store.Create(context.Background(), &records.Record{Content: content})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for duplicate content, got %v", err)
	}
}

func TestCreateEmptyContentRejected(t *testing.T) {
	store := newStore(t)
	_, err := store.Create(context.Background(), &records.Record{Content: "   "})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetMissingRecord(t *testing.T) {
	store := newStore(t)
	_, err := store.GetByID(context.Background(), "nope")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStatusTransitions(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	rec := mustCreate(t, store, "Users should be able to export reports.")

	if err := store.SetStatus(ctx, rec.ID, records.StatusProcessing, ""); err != nil {
		t.Fatalf("pending -> processing: %v", err)
	}
	if err := store.SetStatus(ctx, rec.ID, records.StatusCompleted, ""); err != nil {
		t.Fatalf("processing -> completed: %v", err)
	}

	err := store.SetStatus(ctx, rec.ID, records.StatusPending, "")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected invalid transition completed -> pending, got %v", err)
	}
}

func TestSkippingProcessingRejected(t *testing.T) {
	store := newStore(t)
	rec := mustCreate(t, store, "The platform must support audit trails.")

	err := store.SetStatus(context.Background(), rec.ID, records.StatusCompleted, "")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected invalid transition pending -> completed, got %v", err)
	}
}

func TestUpdatePersistsProcessedData(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	rec := mustCreate(t, store, "The API shall respond within a defined time limit.")

	if err := store.SetStatus(ctx, rec.ID, records.StatusProcessing, ""); err != nil {
		t.Fatalf("claim record: %v", err)
	}
	rec, err := store.GetByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("reload record: %v", err)
	}

	rec.Status = records.StatusCompleted
	rec.ProcessedData = map[string]any{
		"extraction": map[string]any{"Purpose": "respond quickly"},
	}
	rec.Metadata = map[string]string{"source": "unit-test"}
	if err := store.Update(ctx, rec); err != nil {
		t.Fatalf("update record: %v", err)
	}

	reloaded, err := store.GetByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("reload record: %v", err)
	}
	if reloaded.Status != records.StatusCompleted {
		t.Fatalf("expected completed, got %s", reloaded.Status)
	}
	if reloaded.Metadata["source"] != "unit-test" {
		t.Fatalf("metadata not persisted: %#v", reloaded.Metadata)
	}
	extraction, ok := reloaded.ProcessedData["extraction"].(map[string]any)
	if !ok || extraction["Purpose"] != "respond quickly" {
		t.Fatalf("processed data not persisted: %#v", reloaded.ProcessedData)
	}
}

func TestNextPendingClaimsAtomically(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	for _, content := range []string{
		"Requirement one about sessions.",
		"Requirement two about storage.",
		"Requirement three about exports.",
	} {
		mustCreate(t, store, content)
	}

	first, err := store.NextPending(ctx, 2)
	if err != nil {
		t.Fatalf("claim first batch: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 claimed records, got %d", len(first))
	}
	for _, rec := range first {
		if rec.Status != records.StatusProcessing {
			t.Fatalf("claimed record %s not processing: %s", rec.ID, rec.Status)
		}
	}

	second, err := store.NextPending(ctx, 5)
	if err != nil {
		t.Fatalf("claim second batch: %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("expected 1 remaining pending record, got %d", len(second))
	}

	third, err := store.NextPending(ctx, 5)
	if err != nil {
		t.Fatalf("claim empty batch: %v", err)
	}
	if len(third) != 0 {
		t.Fatalf("expected no pending records, got %d", len(third))
	}
}

func TestListFilters(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	a := mustCreate(t, store, "Alpha requirement content.")
	mustCreate(t, store, "Beta requirement content.")

	if err := store.SetStatus(ctx, a.ID, records.StatusProcessing, ""); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if err := store.SetStatus(ctx, a.ID, records.StatusFailed, "boom"); err != nil {
		t.Fatalf("set status: %v", err)
	}

	failed, err := store.List(ctx, records.Filter{Status: records.StatusFailed})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(failed) != 1 || failed[0].ID != a.ID {
		t.Fatalf("unexpected failed list: %#v", failed)
	}
	if failed[0].ErrorMessage != "boom" {
		t.Fatalf("expected error message, got %q", failed[0].ErrorMessage)
	}

	all, err := store.List(ctx, records.Filter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 records, got %d", len(all))
	}
}

func TestRetryFailed(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	rec := mustCreate(t, store, "Gamma requirement content.")
	other := mustCreate(t, store, "Delta requirement content.")

	if err := store.SetStatus(ctx, rec.ID, records.StatusProcessing, ""); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if err := store.SetStatus(ctx, rec.ID, records.StatusFailed, "model error"); err != nil {
		t.Fatalf("set status: %v", err)
	}

	count, err := store.RetryFailed(ctx)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 reset record, got %d", count)
	}

	reloaded, err := store.GetByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != records.StatusPending || reloaded.ErrorMessage != "" {
		t.Fatalf("expected pending with cleared error, got %s %q", reloaded.Status, reloaded.ErrorMessage)
	}

	_, err = store.RetryFailed(ctx, other.ID)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error retrying pending record, got %v", err)
	}
}

func TestMarkBatch(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	a := mustCreate(t, store, "Zeta requirement content.")
	b := mustCreate(t, store, "Eta requirement content.")
	c := mustCreate(t, store, "Theta requirement content.")

	marked, err := store.MarkBatch(ctx, records.StatusProcessing, "", a.ID, b.ID)
	if err != nil {
		t.Fatalf("mark batch: %v", err)
	}
	if marked != 2 {
		t.Fatalf("expected 2 marked records, got %d", marked)
	}
	for _, id := range []string{a.ID, b.ID} {
		reloaded, err := store.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("reload: %v", err)
		}
		if reloaded.Status != records.StatusProcessing {
			t.Fatalf("record %s status = %s", id, reloaded.Status)
		}
	}

	marked, err = store.MarkBatch(ctx, records.StatusFailed, "model error", a.ID, b.ID)
	if err != nil {
		t.Fatalf("mark batch failed: %v", err)
	}
	if marked != 2 {
		t.Fatalf("expected 2 failed records, got %d", marked)
	}
	reloaded, err := store.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.ErrorMessage != "model error" {
		t.Fatalf("expected stored error message, got %q", reloaded.ErrorMessage)
	}

	// Partial application: the first record transitions, the invalid second
	// one stops the loop and reports the count so far.
	marked, err = store.MarkBatch(ctx, records.StatusProcessing, "", c.ID, a.ID)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if marked != 1 {
		t.Fatalf("expected 1 marked before failure, got %d", marked)
	}
	reloaded, err = store.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != records.StatusProcessing {
		t.Fatalf("record %s status = %s", c.ID, reloaded.Status)
	}
}

func TestCleanupOlderThan(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	rec := mustCreate(t, store, "Epsilon requirement content.")

	if err := store.SetStatus(ctx, rec.ID, records.StatusProcessing, ""); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if err := store.SetStatus(ctx, rec.ID, records.StatusCompleted, ""); err != nil {
		t.Fatalf("set status: %v", err)
	}

	deleted, err := store.CleanupOlderThan(ctx, records.StatusCompleted, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("expected recent record to survive, deleted %d", deleted)
	}

	deleted, err = store.CleanupOlderThan(ctx, records.StatusCompleted, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted record, got %d", deleted)
	}

	if _, err := store.CleanupOlderThan(ctx, records.StatusPending, time.Now()); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for non-terminal cleanup, got %v", err)
	}
}

func TestHistoryAndStats(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	rec := mustCreate(t, store, "Zeta requirement content.")

	entries := []records.HistoryEntry{
		{RecordID: rec.ID, Step: "ambiguity", Status: records.StatusProcessing, Duration: 120 * time.Millisecond},
		{RecordID: rec.ID, Step: "extraction", Status: records.StatusCompleted, Message: "3 fields", Duration: 800 * time.Millisecond},
	}
	for _, entry := range entries {
		if err := store.AppendHistory(ctx, entry); err != nil {
			t.Fatalf("append history: %v", err)
		}
	}

	history, err := store.History(ctx, rec.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history rows, got %d", len(history))
	}
	if history[0].Step != "ambiguity" || history[1].Step != "extraction" {
		t.Fatalf("history out of order: %#v", history)
	}
	if history[1].Duration != 800*time.Millisecond {
		t.Fatalf("duration not preserved: %v", history[1].Duration)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 1 || stats.ByStatus[records.StatusPending] != 1 {
		t.Fatalf("unexpected stats: %#v", stats)
	}
	if stats.ByKind[records.KindText] != 1 {
		t.Fatalf("unexpected kind stats: %#v", stats)
	}
}

func TestBatchRuns(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if err := store.StartBatch(ctx, "batch-1", 4); err != nil {
		t.Fatalf("start batch: %v", err)
	}
	if err := store.FinishBatch(ctx, "batch-1", 3, 1); err != nil {
		t.Fatalf("finish batch: %v", err)
	}

	summary, err := store.Batch(ctx, "batch-1")
	if err != nil {
		t.Fatalf("get batch: %v", err)
	}
	if summary.Total != 4 || summary.Succeeded != 3 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %#v", summary)
	}
	if summary.FinishedAt.IsZero() {
		t.Fatal("expected finished timestamp")
	}

	list, err := store.Batches(ctx, 10)
	if err != nil {
		t.Fatalf("list batches: %v", err)
	}
	if len(list) != 1 || list[0].BatchID != "batch-1" {
		t.Fatalf("unexpected batch list: %#v", list)
	}
}
