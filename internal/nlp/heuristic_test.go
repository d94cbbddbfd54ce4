package nlp_test

import (
	"context"
	"testing"

	"reqforge/internal/nlp"
)

func analyze(t *testing.T, text string) *nlp.Analysis {
	t.Helper()
	tagger := nlp.NewHeuristicTagger()
	analysis, err := tagger.Analyze(context.Background(), text)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	return analysis
}

func TestAnalyzeEmptyInput(t *testing.T) {
	analysis := analyze(t, "   ")
	if len(analysis.Sentences) != 0 || len(analysis.Tokens) != 0 {
		t.Fatalf("expected empty analysis, got %#v", analysis)
	}
}

func TestSentenceSplitting(t *testing.T) {
	analysis := analyze(t, "The system shall log events. Users can export data! Is it fast?")
	if len(analysis.Sentences) != 3 {
		t.Fatalf("expected 3 sentences, got %d: %#v", len(analysis.Sentences), analysis.Sentences)
	}
	if analysis.Sentences[0] != "The system shall log events." {
		t.Fatalf("unexpected first sentence: %q", analysis.Sentences[0])
	}
}

func TestDecimalDoesNotSplitSentence(t *testing.T) {
	analysis := analyze(t, "Version 2.5 must be supported.")
	if len(analysis.Sentences) != 1 {
		t.Fatalf("expected 1 sentence, got %#v", analysis.Sentences)
	}
}

func TestTokenPositions(t *testing.T) {
	text := "The system shall respond quickly."
	analysis := analyze(t, text)
	if len(analysis.Tokens) != 5 {
		t.Fatalf("expected 5 tokens, got %d", len(analysis.Tokens))
	}
	for _, tok := range analysis.Tokens {
		if text[tok.Start:tok.End] != tok.Text {
			t.Fatalf("token %q offsets [%d,%d) do not match source", tok.Text, tok.Start, tok.End)
		}
	}
	if analysis.Tokens[4].Text != "quickly" {
		t.Fatalf("unexpected final token %q", analysis.Tokens[4].Text)
	}
}

func TestLemmas(t *testing.T) {
	analysis := analyze(t, "Users manage policies and classes")
	want := map[string]string{
		"Users":    "user",
		"manage":   "manage",
		"policies": "policy",
		"classes":  "class",
		"and":      "and",
	}
	for _, tok := range analysis.Tokens {
		expected, ok := want[tok.Text]
		if !ok {
			continue
		}
		if tok.Lemma != expected {
			t.Errorf("lemma(%q) = %q, want %q", tok.Text, tok.Lemma, expected)
		}
	}
}

func TestEntities(t *testing.T) {
	analysis := analyze(t, "The platform integrates with Payment Gateway for settlements.")
	if len(analysis.Entities) == 0 {
		t.Fatal("expected at least one entity")
	}
	if analysis.Entities[0].Text != "Payment Gateway" {
		t.Fatalf("unexpected entity %q", analysis.Entities[0].Text)
	}
}

func TestSentenceInitialCapitalNotEntity(t *testing.T) {
	analysis := analyze(t, "Data is stored. Backups run nightly.")
	for _, entity := range analysis.Entities {
		if entity.Text == "Data" || entity.Text == "Backups" {
			t.Fatalf("sentence-initial word flagged as entity: %q", entity.Text)
		}
	}
}

func TestNounPhrases(t *testing.T) {
	analysis := analyze(t, "The trading system must store order history in the audit database.")
	phrases := map[string]bool{}
	for _, phrase := range analysis.NounPhrases {
		phrases[phrase] = true
	}
	if !phrases["trading system"] {
		t.Fatalf("expected phrase 'trading system' in %#v", analysis.NounPhrases)
	}
	if !phrases["audit database"] {
		t.Fatalf("expected phrase 'audit database' in %#v", analysis.NounPhrases)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	text := "The system should quickly process many large files."
	first := analyze(t, text)
	second := analyze(t, text)
	if len(first.Tokens) != len(second.Tokens) || len(first.NounPhrases) != len(second.NounPhrases) {
		t.Fatal("expected identical analyses for identical input")
	}
	for i := range first.Tokens {
		if first.Tokens[i] != second.Tokens[i] {
			t.Fatalf("token %d differs between runs", i)
		}
	}
}
