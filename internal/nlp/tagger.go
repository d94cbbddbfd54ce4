package nlp

import "context"

// Token is a single word with its byte offsets in the source text.
type Token struct {
	Text  string
	Lemma string
	Start int
	End   int
}

// Entity is a named thing recognized in the text.
type Entity struct {
	Text  string
	Label string
}

// Analysis is the linguistic breakdown of one requirements statement.
type Analysis struct {
	Sentences   []string
	Tokens      []Token
	Entities    []Entity
	NounPhrases []string
}

// Words returns just the token surface forms in order.
func (a *Analysis) Words() []string {
	words := make([]string, len(a.Tokens))
	for i, tok := range a.Tokens {
		words[i] = tok.Text
	}
	return words
}

// Tagger produces linguistic analyses of requirement text. Implementations
// must be safe for concurrent use.
type Tagger interface {
	Analyze(ctx context.Context, text string) (*Analysis, error)
}
