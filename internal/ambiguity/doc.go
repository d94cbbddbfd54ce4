// Package ambiguity flags imprecise requirement language by matching tokens
// against seven closed trigger vocabularies. Detection is stateless and
// deterministic; findings carry a context window and a clarification
// suggestion per category.
package ambiguity
