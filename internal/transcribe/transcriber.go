package transcribe

import "context"

// Result is a finished transcription.
type Result struct {
	Text            string
	DurationSeconds float64
}

// Transcriber converts an audio file into text. Implementations must be safe
// for concurrent use.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
}
