package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"reqforge/internal/config"
	"reqforge/internal/extraction"
	"reqforge/internal/pipeline"
	"reqforge/internal/records"
	"reqforge/internal/synthesis"
	"reqforge/internal/textgen"
)

func newSRSCommand(ctx *commandContext) *cobra.Command {
	var modeFlag string
	var outFlag string
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "srs",
		Short: "Synthesize a specification document from completed records",
		Long: "SRS merges every completed record into one specification document. " +
			"Aggregate mode combines extracted fields deterministically; generative " +
			"mode asks the configured model to draft each section from the combined text.",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := strings.ToLower(strings.TrimSpace(modeFlag))
			if mode != "aggregate" && mode != "generative" {
				return fmt.Errorf("unknown mode %q (expected aggregate or generative)", modeFlag)
			}

			return ctx.withStore(func(cfg *config.Config, store *records.Store, logger *slog.Logger) error {
				completed, err := store.List(cmd.Context(), records.Filter{Status: records.StatusCompleted})
				if err != nil {
					return err
				}

				section, err := synthesizeDocument(cmd, cfg, logger, mode, completed)
				if err != nil {
					return err
				}

				if jsonFlag && outFlag == "" {
					return writeJSON(cmd, section)
				}

				exporter := pipeline.NewExporter(cfg.Paths.ExportDir, logger)
				path, err := exporter.ExportSection(section, strings.TrimSpace(outFlag))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Synthesized document from %d record(s): %s\n", len(completed), path)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&modeFlag, "mode", "aggregate", "Synthesis mode: aggregate or generative")
	cmd.Flags().StringVar(&outFlag, "out", "", "Destination file (defaults to the export directory)")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the document as JSON instead of writing a file")
	return cmd
}

func synthesizeDocument(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, mode string, completed []*records.Record) (*synthesis.Section, error) {
	if mode == "generative" {
		texts := make([]string, 0, len(completed))
		for _, rec := range completed {
			texts = append(texts, recordText(rec))
		}
		generator := textgen.NewClient(cfg.Generation)
		return synthesis.NewGenerative(generator, logger).Synthesize(cmd.Context(), texts)
	}

	inputs := make([]synthesis.Input, 0, len(completed))
	for _, rec := range completed {
		inputs = append(inputs, synthesis.Input{
			Text:   recordText(rec),
			Fields: recordFields(rec),
		})
	}
	return synthesis.NewAggregator(nil).Synthesize(cmd.Context(), inputs)
}

// recordText prefers the processed text (the transcript for audio records)
// over the raw content.
func recordText(rec *records.Record) string {
	if text, ok := rec.ProcessedData["text"].(string); ok && strings.TrimSpace(text) != "" {
		return text
	}
	return rec.Content
}

// recordFields rebuilds the extraction map from a record's processed data.
// Processed data round-trips through JSON, so the map comes back as
// map[string]any.
func recordFields(rec *records.Record) extraction.Fields {
	raw, ok := rec.ProcessedData["extracted_fields"].(map[string]any)
	if !ok {
		return extraction.Fields{}
	}
	fields := make(extraction.Fields, len(raw))
	for key, value := range raw {
		if text, ok := value.(string); ok {
			fields[key] = text
		}
	}
	return fields
}
