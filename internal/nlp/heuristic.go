package nlp

import (
	"context"
	"strings"
	"unicode"
)

// HeuristicTagger is a deterministic rule-based tagger. It keeps the pipeline
// self-contained: no model downloads, no external process, identical output
// for identical input.
type HeuristicTagger struct{}

// NewHeuristicTagger returns the default tagger implementation.
func NewHeuristicTagger() *HeuristicTagger {
	return &HeuristicTagger{}
}

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {},
	"of": {}, "to": {}, "in": {}, "on": {}, "for": {}, "with": {},
	"by": {}, "at": {}, "from": {}, "as": {}, "is": {}, "are": {},
	"was": {}, "were": {}, "be": {}, "been": {}, "it": {}, "its": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "if": {},
	"then": {}, "than": {}, "will": {}, "shall": {}, "must": {},
	"should": {}, "can": {}, "may": {}, "not": {}, "no": {},
}

// Analyze splits text into sentences and positioned tokens, lemmatizes with
// plain suffix stripping, and pulls out crude entities and noun phrases.
func (t *HeuristicTagger) Analyze(ctx context.Context, text string) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	analysis := &Analysis{}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return analysis, nil
	}

	analysis.Sentences = splitSentences(trimmed)
	analysis.Tokens = tokenize(text)
	analysis.Entities = findEntities(analysis.Tokens, text)
	analysis.NounPhrases = findNounPhrases(analysis.Tokens)
	return analysis, nil
}

func splitSentences(text string) []string {
	var (
		sentences []string
		start     int
	)
	runes := []rune(text)
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// Split only at terminators followed by whitespace or end of text.
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		sentence := strings.TrimSpace(string(runes[start : i+1]))
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = i + 1
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '\''
}

func tokenize(text string) []Token {
	var tokens []Token
	start := -1
	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			word := text[start:i]
			tokens = append(tokens, Token{Text: word, Lemma: lemma(word), Start: start, End: i})
			start = -1
		}
	}
	if start >= 0 {
		word := text[start:]
		tokens = append(tokens, Token{Text: word, Lemma: lemma(word), Start: start, End: len(text)})
	}
	return tokens
}

// lemma strips common inflection suffixes. Deliberately conservative: a wrong
// lemma is worse than a missed one for vocabulary matching.
func lemma(word string) string {
	lower := strings.ToLower(word)
	switch {
	case len(lower) > 4 && strings.HasSuffix(lower, "ies"):
		return lower[:len(lower)-3] + "y"
	case len(lower) > 4 && strings.HasSuffix(lower, "sses"):
		return lower[:len(lower)-2]
	case len(lower) > 3 && strings.HasSuffix(lower, "s") && !strings.HasSuffix(lower, "ss") && !strings.HasSuffix(lower, "us"):
		return lower[:len(lower)-1]
	default:
		return lower
	}
}

func isCapitalized(word string) bool {
	for _, r := range word {
		return unicode.IsUpper(r)
	}
	return false
}

// findEntities groups consecutive capitalized tokens that do not start a
// sentence. Single sentence-initial capitals are ordinary prose.
func findEntities(tokens []Token, text string) []Entity {
	var (
		entities []Entity
		current  []string
	)
	flush := func() {
		if len(current) > 0 {
			entities = append(entities, Entity{Text: strings.Join(current, " "), Label: "NOUN"})
			current = nil
		}
	}
	for i, tok := range tokens {
		sentenceInitial := i == 0 || endsSentence(text, tokens[i-1].End, tok.Start)
		if isCapitalized(tok.Text) && !sentenceInitial {
			current = append(current, tok.Text)
			continue
		}
		flush()
	}
	flush()
	return entities
}

func endsSentence(text string, from, to int) bool {
	if from < 0 || to > len(text) || from > to {
		return false
	}
	return strings.ContainsAny(text[from:to], ".!?")
}

// findNounPhrases collects short runs of content words, preferring runs that
// follow a determiner. Used downstream for glossary definitions.
func findNounPhrases(tokens []Token) []string {
	var (
		phrases []string
		seen    = map[string]struct{}{}
		current []string
	)
	flush := func() {
		if len(current) == 0 {
			return
		}
		phrase := strings.ToLower(strings.Join(current, " "))
		current = nil
		if len(phrase) < 3 {
			return
		}
		if _, dup := seen[phrase]; dup {
			return
		}
		seen[phrase] = struct{}{}
		phrases = append(phrases, phrase)
	}
	for _, tok := range tokens {
		lower := strings.ToLower(tok.Text)
		if _, stop := stopwords[lower]; stop {
			flush()
			continue
		}
		if isNumeric(lower) {
			flush()
			continue
		}
		current = append(current, tok.Text)
		if len(current) == 3 {
			flush()
		}
	}
	flush()
	return phrases
}

func isNumeric(word string) bool {
	for _, r := range word {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(word) > 0
}
