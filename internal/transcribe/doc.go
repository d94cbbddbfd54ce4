// Package transcribe turns audio records into text via an external
// whisper-compatible CLI binary. The Transcriber interface keeps the engine
// swappable; the duration ceiling warns but never rejects.
package transcribe
