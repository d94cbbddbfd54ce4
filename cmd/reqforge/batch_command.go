package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"reqforge/internal/config"
	"reqforge/internal/pipeline"
	"reqforge/internal/records"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Process a batch of pending records",
		Long: "Batch claims up to batch_size pending records and processes them over " +
			"max_workers workers. Only one batch runs per data directory at a time.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *records.Store, logger *slog.Logger) error {
				processor := newProcessor(cfg, store, logger)
				runner := pipeline.NewRunner(store, processor, cfg, logger)

				summary, err := runner.Run(cmd.Context())
				if errors.Is(err, pipeline.ErrBatchRunning) {
					return errors.New("a batch run is already in progress for this data directory")
				}
				if err != nil {
					return err
				}

				if jsonFlag {
					return writeJSON(cmd, summary)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Batch %s finished: %d total, %d succeeded, %d failed\n",
					summary.BatchID, summary.Total, summary.Succeeded, summary.Failed)
				if summary.Failed > 0 {
					fmt.Fprintln(out, "Failed records can be requeued with 'reqforge records retry'.")
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit the batch summary as JSON")
	return cmd
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show record counts by status and kind",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *records.Store, logger *slog.Logger) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if jsonFlag {
					return writeJSON(cmd, stats)
				}

				rows := make([][]string, 0, len(records.AllStatuses()))
				for _, status := range records.AllStatuses() {
					rows = append(rows, []string{string(status), fmt.Sprintf("%d", stats.ByStatus[status])})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderRows(out, []string{"STATUS", "COUNT"}, rows, []columnAlignment{alignLeft, alignRight}))
				fmt.Fprintf(out, "Total: %d (%d text, %d audio)\n", stats.Total,
					stats.ByKind[records.KindText], stats.ByKind[records.KindAudio])
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit stats as JSON")
	return cmd
}
