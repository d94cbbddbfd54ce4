// Package nlp defines the Tagger interface used by ambiguity detection and
// section synthesis, plus a deterministic heuristic implementation that
// requires no external model.
package nlp
