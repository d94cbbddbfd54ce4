package synthesis_test

import (
	"context"
	"reflect"
	"sort"
	"testing"

	"reqforge/internal/extraction"
	"reqforge/internal/synthesis"
)

func synthesize(t *testing.T, inputs []synthesis.Input) *synthesis.Section {
	t.Helper()
	section, err := synthesis.NewAggregator(nil).Synthesize(context.Background(), inputs)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	return section
}

func assertFullyPopulated(t *testing.T, section *synthesis.Section) {
	t.Helper()
	intro := section.Introduction
	if intro.Purpose == "" || intro.Scope == "" || intro.Overview == "" {
		t.Fatalf("introduction has empty scalar leaves: %#v", intro)
	}
	for name, list := range map[string][]string{
		"definitions": intro.Definitions,
		"references":  intro.References,
	} {
		if len(list) == 0 {
			t.Fatalf("introduction.%s is empty", name)
		}
	}

	overall := section.OverallDescription
	if overall.ProductPerspective == "" {
		t.Fatal("overall_description.product_perspective is empty")
	}
	for name, list := range map[string][]string{
		"product_functions":    overall.ProductFunctions,
		"user_characteristics": overall.UserCharacteristics,
		"constraints":          overall.Constraints,
		"assumptions":          overall.Assumptions,
		"dependencies":         overall.Dependencies,
	} {
		if len(list) == 0 {
			t.Fatalf("overall_description.%s is empty", name)
		}
		for _, item := range list {
			if item == "" {
				t.Fatalf("overall_description.%s contains empty item", name)
			}
		}
	}
}

func TestSynthesizeEmptyInputUsesDefaults(t *testing.T) {
	section := synthesize(t, nil)
	assertFullyPopulated(t, section)

	if section.Introduction.Purpose != "System requirements specification and implementation" {
		t.Fatalf("unexpected default purpose %q", section.Introduction.Purpose)
	}
	if !reflect.DeepEqual(section.OverallDescription.UserCharacteristics, []string{"System users"}) {
		t.Fatalf("unexpected default stakeholders %#v", section.OverallDescription.UserCharacteristics)
	}
}

func TestSynthesizeMergesCleanedFields(t *testing.T) {
	inputs := []synthesis.Input{
		{
			Text: "The trading system must process orders.",
			Fields: extraction.Fields{
				extraction.FieldPurpose: "Process equity orders reliably end to end.",
			},
		},
		{
			Text: "The system shall store trade history.",
			Fields: extraction.Fields{
				extraction.FieldPurpose: "Keep an auditable history of all trades.",
			},
		},
	}
	section := synthesize(t, inputs)
	assertFullyPopulated(t, section)

	want := "Process equity orders reliably end to end. Keep an auditable history of all trades."
	if section.Introduction.Purpose != want {
		t.Fatalf("merged purpose = %q, want %q", section.Introduction.Purpose, want)
	}
}

func TestSynthesizeSkipsExtractionDefaults(t *testing.T) {
	// Untouched extraction defaults must lose to text mining.
	inputs := []synthesis.Input{
		{
			Text:   "Each trader must review positions before the market opens.",
			Fields: extraction.DefaultFields(),
		},
	}
	section := synthesize(t, inputs)

	if section.Introduction.Purpose != "Each trader must review positions before the market opens" {
		t.Fatalf("expected mined purpose, got %q", section.Introduction.Purpose)
	}
	if !reflect.DeepEqual(section.OverallDescription.UserCharacteristics, []string{"Trader"}) {
		t.Fatalf("expected mined role, got %#v", section.OverallDescription.UserCharacteristics)
	}
}

func TestSynthesizeListMergeOrderIndependent(t *testing.T) {
	a := synthesis.Input{
		Text: "alpha",
		Fields: extraction.Fields{
			extraction.FieldProductFunctions: "Generate settlement reports; reconcile cash balances",
		},
	}
	b := synthesis.Input{
		Text: "beta",
		Fields: extraction.Fields{
			extraction.FieldProductFunctions: "Reconcile custody positions; generate settlement reports... ",
		},
	}

	forward := synthesize(t, []synthesis.Input{a, b})
	reverse := synthesize(t, []synthesis.Input{b, a})

	if !reflect.DeepEqual(forward.OverallDescription.ProductFunctions, reverse.OverallDescription.ProductFunctions) {
		t.Fatalf("list merge depends on input order: %#v vs %#v",
			forward.OverallDescription.ProductFunctions, reverse.OverallDescription.ProductFunctions)
	}
	if !sort.StringsAreSorted(forward.OverallDescription.ProductFunctions) {
		t.Fatalf("merged list not sorted: %#v", forward.OverallDescription.ProductFunctions)
	}
}

func TestSynthesizeStakeholderScenario(t *testing.T) {
	// Five completed text records; user_characteristics must be the
	// deduplicated capitalized roles found anywhere in the raw texts.
	texts := []string{
		"The trader submits orders through the desk blotter.",
		"Each analyst reviews exposure reports every morning.",
		"The trader cancels stale orders after the close.",
		"An investor can download monthly statements.",
		"Settlement runs require no manual steps.",
	}
	inputs := make([]synthesis.Input, 0, len(texts))
	for _, text := range texts {
		inputs = append(inputs, synthesis.Input{Text: text, Fields: extraction.Fields{}})
	}

	section := synthesize(t, inputs)
	want := []string{"Analyst", "Investor", "Trader"}
	if !reflect.DeepEqual(section.OverallDescription.UserCharacteristics, want) {
		t.Fatalf("user_characteristics = %#v, want %#v", section.OverallDescription.UserCharacteristics, want)
	}
}

func TestSynthesizeOverviewCountsRecords(t *testing.T) {
	inputs := []synthesis.Input{
		{Text: "The system must send alerts.", Fields: extraction.Fields{}},
		{Text: "The system must retry failures.", Fields: extraction.Fields{}},
		{Text: "The system must log activity.", Fields: extraction.Fields{}},
	}
	section := synthesize(t, inputs)
	want := "This document specifies the requirements for the system based on 3 processed requirements. " +
		"The system is designed to meet the functional and non-functional requirements outlined " +
		"in the following sections."
	if section.Introduction.Overview != want {
		t.Fatalf("overview = %q", section.Introduction.Overview)
	}
}

func TestSynthesizeMinedConstraintsCapped(t *testing.T) {
	inputs := []synthesis.Input{
		{Text: "Requests must finish under one second. Storage should stay under quota. " +
			"Uploads require approval. Access must use MFA. Retention is limited to one year.",
			Fields: extraction.Fields{}},
	}
	section := synthesize(t, inputs)
	if len(section.OverallDescription.Constraints) > 3 {
		t.Fatalf("expected at most 3 mined constraints, got %#v", section.OverallDescription.Constraints)
	}
}

func TestSynthesizeDefinitionsFromNounPhrases(t *testing.T) {
	inputs := []synthesis.Input{
		{Text: "The clearing house validates margin calls before settlement.", Fields: extraction.Fields{}},
	}
	section := synthesize(t, inputs)
	if len(section.Introduction.Definitions) == 0 {
		t.Fatal("expected mined definitions")
	}
	if len(section.Introduction.Definitions) > 10 {
		t.Fatalf("definitions exceed cap: %d", len(section.Introduction.Definitions))
	}
}

func TestSynthesizeDeterministic(t *testing.T) {
	inputs := []synthesis.Input{
		{
			Text: "The platform should integrate with the payments api.",
			Fields: extraction.Fields{
				extraction.FieldDependencies: "Payment gateway integration layer",
				extraction.FieldConstraints:  "Must satisfy regional data residency rules",
			},
		},
	}
	first := synthesize(t, inputs)
	second := synthesize(t, inputs)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("synthesis not deterministic for identical inputs")
	}
}
