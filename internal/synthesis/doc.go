// Package synthesis builds the Introduction and Overall Description sections
// of a software requirements specification.
//
// Aggregate mode merges the extracted fields of many completed records:
// clean, dedupe, merge, then fall back to indicator-vocabulary text mining
// over the raw texts, then to static defaults. Generative mode drafts each
// leaf directly from raw text with one prompt per leaf. Both modes guarantee
// a fully-populated section and are deterministic given identical inputs and
// identical model outputs.
package synthesis
