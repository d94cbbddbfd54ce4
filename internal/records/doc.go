// Package records persists requirements statements and their processing
// artifacts in SQLite.
//
// A record moves pending -> processing -> completed or failed; the only
// reverse path is Store.RetryFailed, which resets failed records to pending.
// Record identifiers are derived from content, so re-importing the same
// statement is rejected instead of duplicated. The processing_history table
// keeps per-step provenance and batch_runs aggregates each batch invocation.
package records
