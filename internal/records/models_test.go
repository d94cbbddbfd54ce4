package records_test

import (
	"testing"

	"reqforge/internal/records"
)

func TestValidTransition(t *testing.T) {
	cases := []struct {
		from records.Status
		to   records.Status
		want bool
	}{
		{records.StatusPending, records.StatusProcessing, true},
		{records.StatusProcessing, records.StatusCompleted, true},
		{records.StatusProcessing, records.StatusFailed, true},
		{records.StatusPending, records.StatusCompleted, false},
		{records.StatusCompleted, records.StatusProcessing, false},
		{records.StatusFailed, records.StatusPending, false},
		{records.StatusFailed, records.StatusFailed, true},
	}
	for _, tc := range cases {
		if got := records.ValidTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("ValidTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := records.ParseStatus("  Completed "); !ok || status != records.StatusCompleted {
		t.Fatalf("ParseStatus normalized = %s, %v", status, ok)
	}
	if _, ok := records.ParseStatus("archived"); ok {
		t.Fatal("expected unknown status to be rejected")
	}
	if _, ok := records.ParseStatus(""); ok {
		t.Fatal("expected empty status to be rejected")
	}
}

func TestParseKind(t *testing.T) {
	if kind, ok := records.ParseKind("AUDIO"); !ok || kind != records.KindAudio {
		t.Fatalf("ParseKind = %s, %v", kind, ok)
	}
	if _, ok := records.ParseKind("video"); ok {
		t.Fatal("expected unknown kind to be rejected")
	}
}

func TestNewRecordIDStable(t *testing.T) {
	a := records.NewRecordID("The system shall respond.")
	b := records.NewRecordID("  The system shall respond.  ")
	if a != b {
		t.Fatalf("expected trimmed content to share an id: %s vs %s", a, b)
	}
	if len(a) != 12 {
		t.Fatalf("expected 12-character id, got %q", a)
	}
	if a == records.NewRecordID("A different statement.") {
		t.Fatal("expected distinct content to produce distinct ids")
	}
}
