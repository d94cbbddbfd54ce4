package testsupport

import (
	"context"
	"testing"

	"reqforge/internal/config"
	"reqforge/internal/records"
)

// MustOpenStore opens a record store against the test config's data
// directory and closes it when the test ends.
func MustOpenStore(t testing.TB, cfg *config.Config) *records.Store {
	t.Helper()

	store, err := records.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

// MustCreateRecord inserts a pending text record and returns it.
func MustCreateRecord(t testing.TB, store *records.Store, content string) *records.Record {
	t.Helper()

	rec, err := store.Create(context.Background(), &records.Record{
		Content: content,
		Kind:    records.KindText,
	})
	if err != nil {
		t.Fatalf("create record: %v", err)
	}
	return rec
}
