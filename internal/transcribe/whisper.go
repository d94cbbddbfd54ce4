package transcribe

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"reqforge/internal/config"
	"reqforge/internal/logging"
	"reqforge/internal/services"
)

// WhisperCLI shells out to a whisper-compatible command-line binary.
type WhisperCLI struct {
	cfg    config.Transcription
	logger *slog.Logger

	// runCommand is swapped in tests to avoid invoking a real binary.
	runCommand func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewWhisperCLI builds a transcriber from the transcription config section.
func NewWhisperCLI(cfg config.Transcription, logger *slog.Logger) *WhisperCLI {
	return &WhisperCLI{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "transcribe"),
		runCommand: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
			return cmd.CombinedOutput()
		},
	}
}

// Transcribe runs the external binary against audioPath and returns the
// transcript. Files over the configured duration ceiling are transcribed
// anyway with a warning; length alone never rejects input.
func (w *WhisperCLI) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	if strings.TrimSpace(audioPath) == "" {
		return nil, services.Wrap(services.ErrValidation, "transcription", "transcribe", "audio path is empty", nil)
	}
	if _, err := os.Stat(audioPath); err != nil {
		return nil, services.Wrap(services.ErrValidation, "transcription", "transcribe",
			fmt.Sprintf("audio file %s not accessible", audioPath), err)
	}

	duration := probeWAVDuration(audioPath)
	if w.cfg.MaxDurationSeconds > 0 && duration > float64(w.cfg.MaxDurationSeconds) {
		w.logger.Warn("audio exceeds configured duration ceiling",
			logging.String(logging.FieldPath, audioPath),
			logging.Float64("duration_seconds", duration),
			logging.Int("max_duration_seconds", w.cfg.MaxDurationSeconds),
		)
	}

	if w.cfg.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(w.cfg.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	args := []string{
		"--model", w.cfg.Model,
		"--output-txt",
		"--no-timestamps",
		"--file", audioPath,
	}
	output, err := w.runCommand(ctx, w.cfg.Binary, args...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, services.Wrap(services.ErrTimeout, "transcription", "transcribe",
				fmt.Sprintf("%s timed out", w.cfg.Binary), ctx.Err())
		}
		return nil, services.Wrap(services.ErrExternalTool, "transcription", "transcribe",
			fmt.Sprintf("%s failed: %s", w.cfg.Binary, strings.TrimSpace(string(output))), err)
	}

	text := strings.TrimSpace(string(output))
	// Prefer the sidecar .txt the binary writes next to the input when present.
	sidecar := strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".txt"
	if data, readErr := os.ReadFile(sidecar); readErr == nil {
		if fromFile := strings.TrimSpace(string(data)); fromFile != "" {
			text = fromFile
		}
	}
	if text == "" {
		return nil, services.Wrap(services.ErrExternalTool, "transcription", "transcribe",
			"transcription produced no text", nil)
	}

	return &Result{Text: text, DurationSeconds: duration}, nil
}

// probeWAVDuration reads the RIFF header of a PCM WAV file. Non-WAV or
// malformed files report zero, which skips the ceiling warning.
func probeWAVDuration(path string) float64 {
	file, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer file.Close()

	header := make([]byte, 44)
	if _, err := file.Read(header); err != nil {
		return 0
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return 0
	}
	byteRate := binary.LittleEndian.Uint32(header[28:32])
	dataSize := binary.LittleEndian.Uint32(header[40:44])
	if byteRate == 0 {
		return 0
	}
	return float64(dataSize) / float64(byteRate)
}
