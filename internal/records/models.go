package records

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Status represents the lifecycle of a requirements record.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Kind identifies the input modality of a record.
type Kind string

const (
	KindText  Kind = "text"
	KindAudio Kind = "audio"
)

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// Forward-only lifecycle; the sole reverse path (failed -> pending) is
// reserved for Store.RetryFailed.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing},
	StatusProcessing: {StatusCompleted, StatusFailed},
	StatusCompleted:  {},
	StatusFailed:     {},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// ParseKind converts a string into a known Kind.
func ParseKind(value string) (Kind, bool) {
	normalized := Kind(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case KindText, KindAudio:
		return normalized, true
	default:
		return "", false
	}
}

// ValidTransition reports whether a status change is allowed.
// Setting the same status again is always permitted.
func ValidTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Record is a requirements statement persisted in SQLite together with its
// processing artifacts.
type Record struct {
	ID            string
	Content       string
	Kind          Kind
	FilePath      string
	Metadata      map[string]string
	ProcessedData map[string]any
	Status        Status
	ErrorMessage  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsTerminal reports whether the record has finished processing.
func (r *Record) IsTerminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

// HistoryEntry is one row of per-record processing provenance.
type HistoryEntry struct {
	ID        int64
	RecordID  string
	Step      string
	Status    Status
	Message   string
	Duration  time.Duration
	CreatedAt time.Time
}

// BatchSummary aggregates the outcome of one batch run.
type BatchSummary struct {
	BatchID    string
	Total      int
	Succeeded  int
	Failed     int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Stats reports record counts grouped by status and kind.
type Stats struct {
	Total    int
	ByStatus map[Status]int
	ByKind   map[Kind]int
}

// Filter narrows List queries. Zero values match everything.
type Filter struct {
	Status Status
	Kind   Kind
	Limit  int
	Offset int
}

// NewRecordID derives a stable identifier from record content. Identical
// content always maps to the same id, which makes imports idempotent.
func NewRecordID(content string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(content)))
	return hex.EncodeToString(sum[:])[:12]
}
