// Package services provides cross-cutting error classification and context
// plumbing shared by the processing pipeline and its external integrations.
//
// Marker errors (ErrValidation, ErrExternalTool, ErrTimeout, ErrTransient,
// ErrNotFound) let callers branch on failure class with errors.Is without
// string matching. Wrap attaches step and operation provenance so log lines
// and history rows can say where a record failed.
//
// The context helpers carry record, step, batch, and request identifiers
// through the pipeline so every log line can be correlated.
package services
