// Package logging configures slog for console and JSON output and defines the
// shared attribute keys used across the pipeline.
//
// New builds a logger from explicit options; NewFromConfig derives them from
// application config, teeing output to stdout and a log file under the
// configured log directory. The console format renders compact
// "TS LEVEL component: msg key=value" lines; the JSON format is line-delimited
// with ts/level/msg keys for ingestion.
//
// WithContext and ContextFields lift record, step, batch, and correlation
// identifiers out of a context so handlers never need to know how they were
// attached.
package logging
