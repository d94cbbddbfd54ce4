package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"reqforge/internal/config"
	"reqforge/internal/pipeline"
	"reqforge/internal/records"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import [directory]",
		Short: "Import requirement files as pending records",
		Long: "Import walks a directory and creates one pending record per recognized file. " +
			"Text files (.txt) are read in place; audio files (.wav, .mp3, .m4a, .flac) are " +
			"transcribed when processed. Without an argument the configured import directory is used.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *records.Store, logger *slog.Logger) error {
				dir := cfg.Paths.ImportDir
				if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
					expanded, err := config.ExpandPath(args[0])
					if err != nil {
						return err
					}
					dir = expanded
				}

				importer := pipeline.NewImporter(store, logger)
				result, err := importer.ImportDirectory(cmd.Context(), dir)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Imported %d record(s) from %s\n", result.Imported, dir)
				if result.Duplicates > 0 {
					fmt.Fprintf(out, "Skipped %d duplicate(s)\n", result.Duplicates)
				}
				if result.Skipped > 0 {
					fmt.Fprintf(out, "Skipped %d unrecognized file(s)\n", result.Skipped)
				}
				return nil
			})
		},
	}
}
