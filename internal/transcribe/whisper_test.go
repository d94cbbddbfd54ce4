package transcribe

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"reqforge/internal/config"
	"reqforge/internal/services"
)

func testTranscriptionConfig() config.Transcription {
	return config.Transcription{
		Enabled:            true,
		Binary:             "whisper-cli",
		Model:              "small",
		MaxDurationSeconds: 300,
		TimeoutSeconds:     10,
	}
}

func writeWAV(t *testing.T, dir string, seconds int) string {
	t.Helper()
	const byteRate = 16000 * 2 // mono 16-bit at 16kHz
	dataSize := uint32(byteRate * seconds)

	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+dataSize)
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1)
	binary.LittleEndian.PutUint16(header[22:24], 1)
	binary.LittleEndian.PutUint32(header[24:28], 16000)
	binary.LittleEndian.PutUint32(header[28:32], byteRate)
	binary.LittleEndian.PutUint16(header[32:34], 2)
	binary.LittleEndian.PutUint16(header[34:36], 16)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)

	path := filepath.Join(dir, "sample.wav")
	if err := os.WriteFile(path, header, 0o644); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	return path
}

func TestTranscribeUsesCommandOutput(t *testing.T) {
	path := writeWAV(t, t.TempDir(), 10)

	tr := NewWhisperCLI(testTranscriptionConfig(), nil)
	var gotBinary string
	var gotArgs []string
	tr.runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotBinary = name
		gotArgs = args
		return []byte("The system shall archive trades nightly.\n"), nil
	}

	result, err := tr.Transcribe(context.Background(), path)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.Text != "The system shall archive trades nightly." {
		t.Fatalf("unexpected transcript %q", result.Text)
	}
	if gotBinary != "whisper-cli" {
		t.Fatalf("unexpected binary %q", gotBinary)
	}
	foundModel := false
	for i, arg := range gotArgs {
		if arg == "--model" && i+1 < len(gotArgs) && gotArgs[i+1] == "small" {
			foundModel = true
		}
	}
	if !foundModel {
		t.Fatalf("model flag missing from args %v", gotArgs)
	}
}

func TestTranscribePrefersSidecarFile(t *testing.T) {
	dir := t.TempDir()
	path := writeWAV(t, dir, 5)
	sidecar := filepath.Join(dir, "sample.txt")
	if err := os.WriteFile(sidecar, []byte("Sidecar transcript wins.\n"), 0o644); err != nil {
		t.Fatalf("write sidecar: %v", err)
	}

	tr := NewWhisperCLI(testTranscriptionConfig(), nil)
	tr.runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("progress: 100%"), nil
	}

	result, err := tr.Transcribe(context.Background(), path)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.Text != "Sidecar transcript wins." {
		t.Fatalf("unexpected transcript %q", result.Text)
	}
}

func TestTranscribeOverDurationCeilingStillRuns(t *testing.T) {
	dir := t.TempDir()
	path := writeWAV(t, dir, 500)

	cfg := testTranscriptionConfig()
	cfg.MaxDurationSeconds = 300
	tr := NewWhisperCLI(cfg, nil)
	tr.runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("long recording transcript"), nil
	}

	result, err := tr.Transcribe(context.Background(), path)
	if err != nil {
		t.Fatalf("expected long audio to transcribe anyway, got %v", err)
	}
	if result.DurationSeconds < 499 || result.DurationSeconds > 501 {
		t.Fatalf("unexpected probed duration %v", result.DurationSeconds)
	}
}

func TestTranscribeMissingFile(t *testing.T) {
	tr := NewWhisperCLI(testTranscriptionConfig(), nil)
	_, err := tr.Transcribe(context.Background(), filepath.Join(t.TempDir(), "absent.wav"))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTranscribeCommandFailure(t *testing.T) {
	path := writeWAV(t, t.TempDir(), 2)

	tr := NewWhisperCLI(testTranscriptionConfig(), nil)
	tr.runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("model file not found"), errors.New("exit status 1")
	}

	_, err := tr.Transcribe(context.Background(), path)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestTranscribeEmptyOutput(t *testing.T) {
	path := writeWAV(t, t.TempDir(), 2)

	tr := NewWhisperCLI(testTranscriptionConfig(), nil)
	tr.runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, nil
	}

	_, err := tr.Transcribe(context.Background(), path)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error for empty output, got %v", err)
	}
}
