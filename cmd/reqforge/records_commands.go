package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reqforge/internal/config"
	"reqforge/internal/pipeline"
	"reqforge/internal/records"
)

func newRecordsCommand(ctx *commandContext) *cobra.Command {
	recordsCmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect and manage stored records",
	}

	recordsCmd.AddCommand(newRecordsListCommand(ctx))
	recordsCmd.AddCommand(newRecordsShowCommand(ctx))
	recordsCmd.AddCommand(newRecordsExportCommand(ctx))
	recordsCmd.AddCommand(newRecordsRetryCommand(ctx))
	recordsCmd.AddCommand(newRecordsCleanupCommand(ctx))

	return recordsCmd
}

func newRecordsListCommand(ctx *commandContext) *cobra.Command {
	var statusFlag string
	var kindFlag string
	var limitFlag int
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := records.Filter{Limit: limitFlag}
			if trimmed := strings.TrimSpace(statusFlag); trimmed != "" {
				status, ok := records.ParseStatus(trimmed)
				if !ok {
					return fmt.Errorf("unknown status %q", trimmed)
				}
				filter.Status = status
			}
			if trimmed := strings.TrimSpace(kindFlag); trimmed != "" {
				kind, ok := records.ParseKind(trimmed)
				if !ok {
					return fmt.Errorf("unknown kind %q", trimmed)
				}
				filter.Kind = kind
			}

			return ctx.withStore(func(cfg *config.Config, store *records.Store, logger *slog.Logger) error {
				matched, err := store.List(cmd.Context(), filter)
				if err != nil {
					return err
				}
				if jsonFlag {
					return writeJSON(cmd, matched)
				}

				rows := make([][]string, 0, len(matched))
				for _, rec := range matched {
					rows = append(rows, []string{
						rec.ID,
						string(rec.Status),
						string(rec.Kind),
						rec.CreatedAt.Local().Format("2006-01-02 15:04"),
						truncate(rec.Content, 60),
					})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderRows(out,
					[]string{"ID", "STATUS", "KIND", "CREATED", "CONTENT"}, rows, nil))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "Filter by status (pending, processing, completed, failed)")
	cmd.Flags().StringVar(&kindFlag, "kind", "", "Filter by kind (text, audio)")
	cmd.Flags().IntVar(&limitFlag, "limit", 50, "Maximum number of records to list (0 for all)")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit records as JSON")
	return cmd
}

func newRecordsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "show <record-id>",
		Short: "Show one record with its processing history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *records.Store, logger *slog.Logger) error {
				rec, err := store.GetByID(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				history, err := store.History(cmd.Context(), rec.ID)
				if err != nil {
					return err
				}

				if jsonFlag {
					return writeJSON(cmd, struct {
						Record  *records.Record        `json:"record"`
						History []records.HistoryEntry `json:"history"`
					}{rec, history})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:      %s\n", rec.ID)
				fmt.Fprintf(out, "Status:  %s\n", rec.Status)
				fmt.Fprintf(out, "Kind:    %s\n", rec.Kind)
				fmt.Fprintf(out, "Created: %s\n", rec.CreatedAt.Local().Format(time.RFC3339))
				if rec.FilePath != "" {
					fmt.Fprintf(out, "File:    %s\n", rec.FilePath)
				}
				if rec.ErrorMessage != "" {
					fmt.Fprintf(out, "Error:   %s\n", rec.ErrorMessage)
				}
				fmt.Fprintf(out, "Content: %s\n", truncate(rec.Content, 200))

				if len(history) > 0 {
					fmt.Fprintln(out, "History:")
					for _, entry := range history {
						fmt.Fprintf(out, "  %s  %-13s %-9s %s\n",
							entry.CreatedAt.Local().Format("2006-01-02 15:04:05"),
							entry.Step, entry.Status, entry.Message)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit the record and history as JSON")
	return cmd
}

func newRecordsExportCommand(ctx *commandContext) *cobra.Command {
	var statusFlag string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export records to a JSON file in the export directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := records.Filter{}
			if trimmed := strings.TrimSpace(statusFlag); trimmed != "" {
				status, ok := records.ParseStatus(trimmed)
				if !ok {
					return fmt.Errorf("unknown status %q", trimmed)
				}
				filter.Status = status
			}

			return ctx.withStore(func(cfg *config.Config, store *records.Store, logger *slog.Logger) error {
				exporter := pipeline.NewExporter(cfg.Paths.ExportDir, logger)
				path, err := exporter.ExportRecords(cmd.Context(), store, filter)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported records to %s\n", path)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "Only export records with this status")
	return cmd
}

func newRecordsRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [record-id...]",
		Short: "Requeue failed records as pending",
		Long: "Retry moves failed records back to pending so the next batch picks them up. " +
			"Without arguments every failed record is requeued.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *records.Store, logger *slog.Logger) error {
				requeued, err := store.RetryFailed(cmd.Context(), args...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Requeued %d record(s)\n", requeued)
				return nil
			})
		},
	}
}

func newRecordsCleanupCommand(ctx *commandContext) *cobra.Command {
	var olderThanFlag time.Duration
	var statusFlag string

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete old terminal records",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, ok := records.ParseStatus(strings.TrimSpace(statusFlag))
			if !ok {
				return fmt.Errorf("unknown status %q", statusFlag)
			}

			return ctx.withStore(func(cfg *config.Config, store *records.Store, logger *slog.Logger) error {
				cutoff := time.Now().UTC().Add(-olderThanFlag)
				deleted, err := store.CleanupOlderThan(cmd.Context(), status, cutoff)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d %s record(s) older than %s\n",
					deleted, status, olderThanFlag)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&olderThanFlag, "older-than", 30*24*time.Hour, "Age threshold for deletion")
	cmd.Flags().StringVar(&statusFlag, "status", "completed", "Terminal status to delete (completed or failed)")
	return cmd
}

func truncate(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= limit {
		return text
	}
	return text[:limit-3] + "..."
}
