package testsupport

import (
	"context"
	"strings"

	"reqforge/internal/textgen"
	"reqforge/internal/transcribe"
)

// EchoGenerator answers every extraction prompt with a key/value block built
// from the canned fields, so pipeline tests run without a model endpoint.
func EchoGenerator(fields map[string]string) textgen.Generator {
	return textgen.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		var b strings.Builder
		for key, value := range fields {
			b.WriteString(key)
			b.WriteString(": ")
			b.WriteString(value)
			b.WriteString("\n")
		}
		return b.String(), nil
	})
}

// FailingGenerator always returns err.
func FailingGenerator(err error) textgen.Generator {
	return textgen.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", err
	})
}

// StaticTranscriber returns the same transcript for every file.
type StaticTranscriber struct {
	Text string
	Err  error
}

func (s StaticTranscriber) Transcribe(ctx context.Context, path string) (*transcribe.Result, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return &transcribe.Result{Text: s.Text}, nil
}
