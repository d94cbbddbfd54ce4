// Package pipeline orchestrates record processing: per-record step
// sequencing, batch claiming with a worker pool, directory import, and JSON
// export. Records move pending -> processing -> completed or failed; the
// store enforces the transitions, this package drives them.
package pipeline
