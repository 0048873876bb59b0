package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/idempotency"
)

func newRecordsCommand(ctx *commandContext) *cobra.Command {
	recordsCmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect and maintain the reservation store",
	}

	recordsCmd.AddCommand(newRecordsListCommand(ctx))
	recordsCmd.AddCommand(newRecordsShowCommand(ctx))
	recordsCmd.AddCommand(newRecordsMarkCommand(ctx))
	recordsCmd.AddCommand(newRecordsPurgeCommand(ctx))
	recordsCmd.AddCommand(newRecordsStatsCommand(ctx))

	return recordsCmd
}

func newRecordsListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reservation records, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *idempotency.Store) error {
				records, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, recordsJSON(records))
				}
				printRecords(cmd, records)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum records to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit records as JSON")
	return cmd
}

func newRecordsShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <manifest-id>",
		Short: "Show all records for a manifest, including expired ones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *idempotency.Store) error {
				records, err := store.GetByManifestID(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(records) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No records for manifest %s\n", args[0])
					return nil
				}
				if asJSON {
					return writeJSON(cmd, recordsJSON(records))
				}
				printRecords(cmd, records)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit records as JSON")
	return cmd
}

func newRecordsMarkCommand(ctx *commandContext) *cobra.Command {
	var jobID string
	var message string

	cmd := &cobra.Command{
		Use:   "mark <token> <status>",
		Short: "Advance a record through the job lifecycle",
		Long: "Transitions the record identified by token to SUBMITTED, PROGRESSING,\n" +
			"COMPLETE, or ERROR. Transitions that skip lifecycle steps are rejected.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := idempotency.Status(strings.ToUpper(strings.TrimSpace(args[1])))
			switch status {
			case idempotency.StatusSubmitted, idempotency.StatusProgressing,
				idempotency.StatusComplete, idempotency.StatusError:
			default:
				return fmt.Errorf("unknown status %q", args[1])
			}

			return ctx.withStore(func(store *idempotency.Store) error {
				updated, err := store.UpdateStatus(cmd.Context(), args[0], status, jobID, message)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !updated {
					fmt.Fprintf(out, "No transition: record missing or not in a valid prior state for %s\n", status)
					return nil
				}
				fmt.Fprintf(out, "Record marked %s\n", status)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&jobID, "job-id", "", "Transcoder job identifier to attach")
	cmd.Flags().StringVar(&message, "message", "", "Error message to record (ERROR status)")
	return cmd
}

func newRecordsPurgeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete expired reservation records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *idempotency.Store) error {
				removed, err := store.PurgeExpired(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Purged %d expired record(s)\n", removed)
				return nil
			})
		},
	}
}

func newRecordsStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show record counts by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *idempotency.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(stats))
				for _, status := range []idempotency.Status{
					idempotency.StatusPending, idempotency.StatusSubmitted,
					idempotency.StatusProgressing, idempotency.StatusComplete,
					idempotency.StatusError,
				} {
					if count, ok := stats[status]; ok {
						rows = append(rows, []string{string(status), fmt.Sprintf("%d", count)})
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Status", "Count"}, rows, 1))
				return nil
			})
		},
	}
}

func printRecords(cmd *cobra.Command, records []*idempotency.Record) {
	now := time.Now().UTC()
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			abbreviateToken(r.Token),
			r.ManifestID,
			string(r.Status),
			r.JobID,
			r.ProfileVersion,
			r.UpdatedAt.UTC().Format(time.RFC3339),
			yesNo(r.Expired(now)),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(),
		renderTable([]string{"Token", "Manifest", "Status", "Job", "Profile", "Updated", "Expired"}, rows))
}

func recordsJSON(records []*idempotency.Record) []map[string]any {
	items := make([]map[string]any, 0, len(records))
	for _, r := range records {
		items = append(items, map[string]any{
			"token":           r.Token,
			"manifest_id":     r.ManifestID,
			"profile_version": r.ProfileVersion,
			"output_prefix":   r.OutputPrefix,
			"status":          string(r.Status),
			"job_id":          r.JobID,
			"error_message":   r.ErrorMessage,
			"created_at":      r.CreatedAt.UTC().Format(time.RFC3339),
			"updated_at":      r.UpdatedAt.UTC().Format(time.RFC3339),
			"expires_at":      r.ExpiresAt.UTC().Format(time.RFC3339),
		})
	}
	return items
}

func abbreviateToken(token string) string {
	if len(token) <= 16 {
		return token
	}
	return token[:16] + "..."
}
