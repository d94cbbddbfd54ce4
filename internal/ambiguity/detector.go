package ambiguity

import (
	"fmt"
	"strings"

	"reqforge/internal/nlp"
)

// Category tags one class of imprecise requirement language.
type Category string

const (
	CategoryModalVerbs       Category = "modal_verbs"
	CategoryQuantifiers      Category = "quantifiers"
	CategoryAdjectives       Category = "adjectives"
	CategoryQualityTerms     Category = "quality_terms"
	CategoryPerformanceTerms Category = "performance_terms"
	CategoryTimeTerms        Category = "time_terms"
	CategorySizeTerms        Category = "size_terms"
)

// contextRadius is the number of tokens kept on each side of a match.
const contextRadius = 3

// Closed trigger vocabularies. Only exact lowercased surface forms count;
// "must" and "real-time" are deliberately absent.
var vocabularies = map[Category][]string{
	CategoryModalVerbs:       {"should", "could", "might", "may", "can", "will", "shall"},
	CategoryQuantifiers:      {"often", "sometimes", "usually", "typically", "generally", "frequently"},
	CategoryAdjectives:       {"fast", "slow", "large", "small", "many", "few", "several", "multiple"},
	CategoryQualityTerms:     {"easy", "difficult", "simple", "complex", "user-friendly", "intuitive"},
	CategoryPerformanceTerms: {"efficient", "effective", "reliable", "secure", "stable", "robust"},
	CategoryTimeTerms:        {"immediately", "quickly", "soon", "eventually", "periodically"},
	CategorySizeTerms:        {"big", "huge", "tiny", "massive", "enormous", "minimal"},
}

// orderedCategories fixes finding order for tokens matching several
// categories.
var orderedCategories = []Category{
	CategoryModalVerbs,
	CategoryQuantifiers,
	CategoryAdjectives,
	CategoryQualityTerms,
	CategoryPerformanceTerms,
	CategoryTimeTerms,
	CategorySizeTerms,
}

var membership = func() map[Category]map[string]struct{} {
	sets := make(map[Category]map[string]struct{}, len(vocabularies))
	for category, words := range vocabularies {
		set := make(map[string]struct{}, len(words))
		for _, word := range words {
			set[word] = struct{}{}
		}
		sets[category] = set
	}
	return sets
}()

// Finding is one flagged token with its category, surrounding context, and a
// clarification suggestion. Findings are recomputed on every detection pass.
type Finding struct {
	Word       string   `json:"word"`
	Category   Category `json:"category"`
	Context    string   `json:"context"`
	Position   int      `json:"position"`
	Suggestion string   `json:"suggestion"`
}

// Categories returns the taxonomy in fixed order.
func Categories() []Category {
	cp := make([]Category, len(orderedCategories))
	copy(cp, orderedCategories)
	return cp
}

// Detect scans tokens for trigger words. A token matching several categories
// yields one finding per category. Empty input yields an empty list.
func Detect(tokens []nlp.Token) []Finding {
	var findings []Finding
	for i, tok := range tokens {
		lower := strings.ToLower(tok.Text)
		for _, category := range orderedCategories {
			if _, ok := membership[category][lower]; !ok {
				continue
			}
			findings = append(findings, Finding{
				Word:       tok.Text,
				Category:   category,
				Context:    contextWindow(tokens, i),
				Position:   i,
				Suggestion: suggestion(lower, category),
			})
		}
	}
	return findings
}

func contextWindow(tokens []nlp.Token, center int) string {
	start := center - contextRadius
	if start < 0 {
		start = 0
	}
	end := center + contextRadius + 1
	if end > len(tokens) {
		end = len(tokens)
	}
	words := make([]string, 0, end-start)
	for _, tok := range tokens[start:end] {
		words = append(words, tok.Text)
	}
	return strings.Join(words, " ")
}

func suggestion(word string, category Category) string {
	switch category {
	case CategoryModalVerbs:
		return fmt.Sprintf("Consider replacing '%s' with specific conditions or constraints", word)
	case CategoryQuantifiers:
		return fmt.Sprintf("Specify frequency or occurrence rate instead of '%s'", word)
	case CategoryAdjectives:
		return fmt.Sprintf("Define measurable criteria for '%s' (e.g., 'fast' = <2 seconds)", word)
	case CategoryQualityTerms:
		return fmt.Sprintf("Provide specific usability metrics for '%s'", word)
	case CategoryPerformanceTerms:
		return fmt.Sprintf("Define performance benchmarks for '%s'", word)
	case CategoryTimeTerms:
		return fmt.Sprintf("Specify exact timeframes instead of '%s'", word)
	case CategorySizeTerms:
		return fmt.Sprintf("Define specific measurements for '%s'", word)
	default:
		return fmt.Sprintf("Please clarify what you mean by '%s'", word)
	}
}
