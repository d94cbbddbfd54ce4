// Package extraction turns one requirements statement into a seven-field map
// (Purpose, Scope, Product Functions, Constraints, Stakeholders, Assumptions,
// Dependencies) by prompting the generation model and parsing its reply with
// an ordered strategy chain: key/value lines, then numbered-list positions,
// then static defaults. The map is never empty; only a failed model call
// surfaces as an error.
package extraction
