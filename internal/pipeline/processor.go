package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"reqforge/internal/ambiguity"
	"reqforge/internal/extraction"
	"reqforge/internal/logging"
	"reqforge/internal/nlp"
	"reqforge/internal/records"
	"reqforge/internal/services"
	"reqforge/internal/synthesis"
	"reqforge/internal/transcribe"
)

// Version tags processing history rows so reprocessing after upgrades is
// traceable.
const Version = "1.0"

// Processing step names used in history rows and logs.
const (
	StepTranscription = "transcription"
	StepAnalysis      = "analysis"
	StepExtraction    = "extraction"
	StepSynthesis     = "synthesis"
)

// Outcome is everything one record's processing run produced.
type Outcome struct {
	Text       string              `json:"text"`
	Findings   []ambiguity.Finding `json:"ambiguities"`
	Fields     extraction.Fields   `json:"extracted_fields"`
	Section    *synthesis.Section  `json:"srs_sections"`
	Version    string              `json:"processor_version"`
	DurationMS int64               `json:"duration_ms"`
}

// Processor runs the per-record sequence: transcription for audio input,
// linguistic analysis, ambiguity detection, field extraction, and a
// single-record synthesis pass.
type Processor struct {
	store       records.Repository
	tagger      nlp.Tagger
	extractor   *extraction.Extractor
	aggregator  *synthesis.Aggregator
	transcriber transcribe.Transcriber
	logger      *slog.Logger
}

// NewProcessor wires the per-record pipeline. transcriber may be nil when
// audio input is disabled.
func NewProcessor(
	store records.Repository,
	tagger nlp.Tagger,
	extractor *extraction.Extractor,
	transcriber transcribe.Transcriber,
	logger *slog.Logger,
) *Processor {
	if tagger == nil {
		tagger = nlp.NewHeuristicTagger()
	}
	return &Processor{
		store:       store,
		tagger:      tagger,
		extractor:   extractor,
		aggregator:  synthesis.NewAggregator(tagger),
		transcriber: transcriber,
		logger:      logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Process runs one claimed record through every step and persists the
// outcome. The record must already be in processing status. On failure the
// record is marked failed with the error captured; the returned error is the
// same failure for the caller's accounting.
func (p *Processor) Process(ctx context.Context, rec *records.Record) (*Outcome, error) {
	started := time.Now()
	ctx = services.WithRecordID(ctx, rec.ID)
	logger := logging.WithContext(ctx, p.logger)

	outcome, err := p.run(ctx, rec)
	duration := time.Since(started)

	if err != nil {
		logger.Error("record processing failed", logging.Error(err), logging.Duration(logging.FieldDuration, duration))
		p.recordFailure(rec.ID, err, duration)
		return nil, err
	}

	outcome.Version = Version
	outcome.DurationMS = duration.Milliseconds()

	rec.Status = records.StatusCompleted
	rec.ErrorMessage = ""
	rec.ProcessedData = outcomeMap(outcome)
	if updateErr := p.store.Update(ctx, rec); updateErr != nil {
		logger.Error("persist outcome failed", logging.Error(updateErr))
		p.recordFailure(rec.ID, updateErr, duration)
		return nil, updateErr
	}

	p.appendHistory(rec.ID, StepSynthesis, records.StatusCompleted,
		fmt.Sprintf("%d ambiguities, %d fields", len(outcome.Findings), len(outcome.Fields)), duration)
	logger.Info("record processed",
		logging.Int("ambiguities", len(outcome.Findings)),
		logging.Duration(logging.FieldDuration, duration))
	return outcome, nil
}

func (p *Processor) run(ctx context.Context, rec *records.Record) (*Outcome, error) {
	text := strings.TrimSpace(rec.Content)

	if rec.Kind == records.KindAudio {
		transcript, err := p.transcribeStep(ctx, rec)
		if err != nil {
			return nil, err
		}
		text = transcript
	}
	if text == "" {
		return nil, services.Wrap(services.ErrValidation, StepAnalysis, "process", "record has no text content", nil)
	}

	ctx = services.WithStep(ctx, StepAnalysis)
	analysis, err := p.tagger.Analyze(ctx, text)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, StepAnalysis, "analyze", "linguistic analysis failed", err)
	}
	findings := ambiguity.Detect(analysis.Tokens)

	ctx = services.WithStep(ctx, StepExtraction)
	fields, err := p.extractor.Extract(ctx, text)
	if err != nil {
		return nil, err
	}

	ctx = services.WithStep(ctx, StepSynthesis)
	section, err := p.aggregator.Synthesize(ctx, []synthesis.Input{{Text: text, Fields: fields}})
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, StepSynthesis, "synthesize", "section synthesis failed", err)
	}

	return &Outcome{
		Text:     text,
		Findings: findings,
		Fields:   fields,
		Section:  section,
	}, nil
}

func (p *Processor) transcribeStep(ctx context.Context, rec *records.Record) (string, error) {
	if p.transcriber == nil {
		return "", services.Wrap(services.ErrValidation, StepTranscription, "transcribe",
			"audio record but transcription is disabled", nil)
	}
	if rec.FilePath == "" {
		return "", services.Wrap(services.ErrValidation, StepTranscription, "transcribe",
			"audio record has no file path", nil)
	}

	ctx = services.WithStep(ctx, StepTranscription)
	result, err := p.transcriber.Transcribe(ctx, rec.FilePath)
	if err != nil {
		return "", err
	}

	rec.Content = result.Text
	return result.Text, nil
}

func (p *Processor) recordFailure(recordID string, failure error, duration time.Duration) {
	// Best-effort bookkeeping on a fresh context: the step context may
	// already be cancelled.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	step := stepOf(failure)
	if err := p.persistFailure(ctx, recordID, step, failure); err != nil {
		p.logger.Error("mark record failed", logging.String(logging.FieldRecordID, recordID), logging.Error(err))
	}
	p.appendHistory(recordID, step, records.StatusFailed, failure.Error(), duration)
}

// persistFailure marks the record failed with the raw error captured in both
// the error column and the processed data, so exports carry it too.
func (p *Processor) persistFailure(ctx context.Context, recordID, step string, failure error) error {
	rec, err := p.store.GetByID(ctx, recordID)
	if err != nil {
		return err
	}
	rec.Status = records.StatusFailed
	rec.ErrorMessage = failure.Error()
	if rec.ProcessedData == nil {
		rec.ProcessedData = map[string]any{}
	}
	rec.ProcessedData["error"] = failure.Error()
	rec.ProcessedData["failed_step"] = step
	rec.ProcessedData["processor_version"] = Version
	return p.store.Update(ctx, rec)
}

func (p *Processor) appendHistory(recordID, step string, status records.Status, message string, duration time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entry := records.HistoryEntry{
		RecordID: recordID,
		Step:     step,
		Status:   status,
		Message:  fmt.Sprintf("v%s: %s", Version, message),
		Duration: duration,
	}
	if err := p.store.AppendHistory(ctx, entry); err != nil {
		p.logger.Error("append history", logging.String(logging.FieldRecordID, recordID), logging.Error(err))
	}
}

func stepOf(err error) string {
	var classified *services.Error
	if errors.As(err, &classified) && classified.Step != "" {
		return classified.Step
	}
	return StepAnalysis
}

// outcomeMap flattens an outcome into the processed-data map persisted with
// the record.
func outcomeMap(outcome *Outcome) map[string]any {
	return map[string]any{
		"text":              outcome.Text,
		"ambiguities":       outcome.Findings,
		"extracted_fields":  outcome.Fields,
		"srs_sections":      outcome.Section,
		"processor_version": outcome.Version,
		"duration_ms":       outcome.DurationMS,
	}
}
