package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"reqforge/internal/config"
	"reqforge/internal/records"
	"reqforge/internal/services"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var textFlag string
	var fileFlag string
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Create and process a single requirement statement",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, kind, filePath, err := resolveProcessInput(textFlag, fileFlag)
			if err != nil {
				return err
			}

			return ctx.withStore(func(cfg *config.Config, store *records.Store, logger *slog.Logger) error {
				rec, err := store.Create(cmd.Context(), &records.Record{
					Content:  content,
					Kind:     kind,
					FilePath: filePath,
				})
				if err != nil && !errors.Is(err, services.ErrValidation) {
					return err
				}
				if rec == nil {
					// Duplicate content: reprocess the existing record.
					rec, err = store.GetByID(cmd.Context(), records.NewRecordID(content))
					if err != nil {
						return err
					}
					switch rec.Status {
					case records.StatusFailed:
						if _, err := store.RetryFailed(cmd.Context(), rec.ID); err != nil {
							return err
						}
					case records.StatusCompleted:
						return fmt.Errorf("record %s already completed; see 'reqforge records show %s'", rec.ID, rec.ID)
					}
				}

				if err := store.SetStatus(cmd.Context(), rec.ID, records.StatusProcessing, ""); err != nil {
					return fmt.Errorf("claim record %s: %w", rec.ID, err)
				}
				rec, err = store.GetByID(cmd.Context(), rec.ID)
				if err != nil {
					return err
				}

				processor := newProcessor(cfg, store, logger)
				outcome, err := processor.Process(cmd.Context(), rec)
				if err != nil {
					return err
				}

				if jsonFlag {
					return writeJSON(cmd, outcome)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Record %s processed\n", rec.ID)
				fmt.Fprintf(out, "Ambiguities: %d\n", len(outcome.Findings))
				for _, finding := range outcome.Findings {
					fmt.Fprintf(out, "  %-12s %-18s %s\n", finding.Category, finding.Word, finding.Suggestion)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&textFlag, "text", "", "Requirement statement to process")
	cmd.Flags().StringVar(&fileFlag, "file", "", "File holding the requirement (text or audio)")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit the full outcome as JSON")
	return cmd
}

func resolveProcessInput(textFlag, fileFlag string) (content string, kind records.Kind, filePath string, err error) {
	text := strings.TrimSpace(textFlag)
	file := strings.TrimSpace(fileFlag)

	switch {
	case text != "" && file != "":
		return "", "", "", errors.New("--text and --file are mutually exclusive")
	case text != "":
		return text, records.KindText, "", nil
	case file != "":
		expanded, err := config.ExpandPath(file)
		if err != nil {
			return "", "", "", err
		}
		if isAudioFile(expanded) {
			return expanded, records.KindAudio, expanded, nil
		}
		data, err := os.ReadFile(expanded)
		if err != nil {
			return "", "", "", fmt.Errorf("read %q: %w", expanded, err)
		}
		return string(data), records.KindText, expanded, nil
	default:
		return "", "", "", errors.New("either --text or --file is required")
	}
}

func isAudioFile(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range []string{".wav", ".mp3", ".m4a", ".flac"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
