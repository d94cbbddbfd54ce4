package synthesis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"reqforge/internal/extraction"
	"reqforge/internal/nlp"
)

// maxDefinitions caps the glossary pulled from noun phrases.
const maxDefinitions = 10

// Aggregator builds one document from many already-extracted records.
type Aggregator struct {
	tagger nlp.Tagger
}

// NewAggregator builds an aggregate-mode synthesizer. A nil tagger falls back
// to the heuristic implementation.
func NewAggregator(tagger nlp.Tagger) *Aggregator {
	if tagger == nil {
		tagger = nlp.NewHeuristicTagger()
	}
	return &Aggregator{tagger: tagger}
}

// Synthesize merges the inputs into a fully-populated Section. Every leaf
// resolves through the same chain: cleaned extracted fields, then text mining
// over the raw texts, then the static default. Deterministic for a fixed
// input ordering; list leaves are additionally order-independent.
func (a *Aggregator) Synthesize(ctx context.Context, inputs []Input) (*Section, error) {
	texts := make([]string, 0, len(inputs))
	for _, input := range inputs {
		if trimmed := strings.TrimSpace(input.Text); trimmed != "" {
			texts = append(texts, trimmed)
		}
	}

	section := &Section{}

	purpose := mergeText(cleanedField(inputs, extraction.FieldPurpose))
	if purpose == "" {
		purpose = minePurpose(texts)
	}
	section.Introduction.Purpose = textOrDefault(purpose, defaultPurpose)

	scope := mergeText(cleanedField(inputs, extraction.FieldScope))
	if scope == "" {
		scope = mineScope(texts)
	}
	section.Introduction.Scope = textOrDefault(scope, defaultScope)

	definitions, err := a.definitions(ctx, texts)
	if err != nil {
		return nil, err
	}
	section.Introduction.Definitions = listOrDefault(definitions, defaultDefinitions)
	section.Introduction.References = copyList(defaultReferences)
	section.Introduction.Overview = fmt.Sprintf(
		"This document specifies the requirements for the system based on %d processed requirements. "+
			"The system is designed to meet the functional and non-functional requirements outlined "+
			"in the following sections.", len(inputs))

	perspective := mergeText(cleanedField(inputs, extraction.FieldDependencies))
	section.OverallDescription.ProductPerspective = textOrDefault(perspective, defaultPerspective)

	functions := splitListField(inputs, extraction.FieldProductFunctions)
	if len(functions) == 0 {
		functions = mineFunctions(texts)
	}
	section.OverallDescription.ProductFunctions = listOrDefault(dedupeSorted(functions), defaultFunctions)

	stakeholders := splitListField(inputs, extraction.FieldStakeholders)
	if len(stakeholders) == 0 {
		stakeholders = mineStakeholders(texts)
	}
	section.OverallDescription.UserCharacteristics = listOrDefault(dedupeSorted(stakeholders), defaultStakeholders)

	constraints := splitListField(inputs, extraction.FieldConstraints)
	if len(constraints) == 0 {
		constraints = mineConstraints(texts)
	}
	section.OverallDescription.Constraints = listOrDefault(dedupeSorted(constraints), defaultConstraints)

	assumptions := splitListField(inputs, extraction.FieldAssumptions)
	section.OverallDescription.Assumptions = listOrDefault(dedupeSorted(assumptions), defaultAssumptions)

	dependencies := splitListField(inputs, extraction.FieldDependencies)
	if len(dependencies) == 0 {
		dependencies = mineDependencies(texts)
	}
	section.OverallDescription.Dependencies = listOrDefault(dedupeSorted(dependencies), defaultDependencies)

	return section, nil
}

// cleanedField collects one field across all inputs, cleaned, skipping both
// empty results and untouched extraction defaults (mined text beats
// boilerplate).
func cleanedField(inputs []Input, field string) []string {
	var values []string
	for _, input := range inputs {
		raw, present := input.Fields[field]
		if !present || extraction.IsDefault(field, raw) {
			continue
		}
		if cleaned := Clean(raw); cleaned != "" {
			values = append(values, cleaned)
		}
	}
	return values
}

// mergeText joins distinct values in first-seen order into one passage.
func mergeText(values []string) string {
	seen := map[string]struct{}{}
	var unique []string
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		unique = append(unique, value)
	}
	switch len(unique) {
	case 0:
		return ""
	case 1:
		return unique[0]
	default:
		for i, value := range unique {
			unique[i] = strings.TrimRight(value, ". ")
		}
		return strings.Join(unique, ". ") + "."
	}
}

// splitListField cleans one field across inputs and splits each surviving
// value on the first separator found among period, semicolon, newline, comma.
func splitListField(inputs []Input, field string) []string {
	var items []string
	for _, value := range cleanedField(inputs, field) {
		items = append(items, splitItems(value)...)
	}
	return items
}

func splitItems(text string) []string {
	for _, separator := range []string{".", ";", "\n", ","} {
		if !strings.Contains(text, separator) {
			continue
		}
		var items []string
		for _, part := range strings.Split(text, separator) {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				items = append(items, trimmed)
			}
		}
		return items
	}
	return []string{text}
}

// dedupeSorted set-merges list items. Sorting makes the merge both
// order-independent and reproducible.
func dedupeSorted(items []string) []string {
	seen := map[string]struct{}{}
	var unique []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		unique = append(unique, item)
	}
	sort.Strings(unique)
	return unique
}

// definitions pulls noun phrases from all texts, deduplicated, capped.
func (a *Aggregator) definitions(ctx context.Context, texts []string) ([]string, error) {
	seen := map[string]struct{}{}
	var definitions []string
	for _, text := range texts {
		analysis, err := a.tagger.Analyze(ctx, text)
		if err != nil {
			return nil, err
		}
		for _, phrase := range analysis.NounPhrases {
			if _, dup := seen[phrase]; dup {
				continue
			}
			seen[phrase] = struct{}{}
			definitions = append(definitions, phrase)
			if len(definitions) == maxDefinitions {
				return definitions, nil
			}
		}
	}
	return definitions, nil
}
