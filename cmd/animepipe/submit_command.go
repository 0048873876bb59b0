package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/idempotency"
	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/manifest"
	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/notifications"
	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/submit"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var inputURI string
	var outputPrefix string
	var force bool
	var jobPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "submit <manifest.xml>",
		Short: "Resolve a manifest into a transcoding job",
		Long: "Parses an episode manifest, builds the ABR ladder and job settings, and\n" +
			"reserves the content's idempotency token. When another submission already\n" +
			"covers the same content the command reports the skip instead of emitting\n" +
			"duplicate job settings.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read manifest: %w", err)
			}
			m, err := manifest.ParseXML(data)
			if err != nil {
				return err
			}

			if strings.TrimSpace(inputURI) == "" {
				inputURI = submit.InputURI(cfg.Pipeline.InputBucket, m)
			}
			if strings.TrimSpace(outputPrefix) == "" {
				outputPrefix = submit.OutputPrefix(cfg.Pipeline.OutputBucket, m)
			}

			notifier := notifications.NewService(cfg)

			return ctx.withStore(func(store *idempotency.Store) error {
				orch := submit.New(store, orchestratorOptions(cfg), logger)
				result, err := orch.Submit(cmd.Context(), submit.Request{
					Manifest:       m,
					InputURI:       inputURI,
					OutputPrefix:   outputPrefix,
					ForceReprocess: force,
				})
				if err != nil {
					_ = notifier.Publish(cmd.Context(), notifications.EventJobFailed, m,
						notifications.Details{"error": err.Error()})
					return err
				}

				publishSubmitResult(cmd, notifier, m, result)

				if jobPath != "" && result.Job != nil {
					payload, err := json.MarshalIndent(result.Job, "", "  ")
					if err != nil {
						return fmt.Errorf("encode job settings: %w", err)
					}
					if err := os.WriteFile(jobPath, payload, 0o644); err != nil {
						return fmt.Errorf("write job settings: %w", err)
					}
				}

				if asJSON {
					return writeJSON(cmd, submitResultJSON(result))
				}
				printSubmitResult(cmd, result, jobPath)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&inputURI, "input-uri", "", "Mezzanine location (defaults to the configured input bucket)")
	cmd.Flags().StringVar(&outputPrefix, "output-prefix", "", "Destination prefix (defaults to the configured output bucket)")
	cmd.Flags().BoolVar(&force, "force", false, "Rebuild even when a completed record exists for this content")
	cmd.Flags().StringVarP(&jobPath, "out", "o", "", "Write the job settings JSON to this file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the result as JSON")
	return cmd
}

func publishSubmitResult(cmd *cobra.Command, notifier notifications.Service, m *manifest.Manifest, result *submit.Result) {
	var err error
	if result.Skipped() {
		details := notifications.Details{"outcome": string(result.Outcome)}
		if result.Existing != nil {
			details["existing_status"] = string(result.Existing.Status)
		}
		err = notifier.Publish(cmd.Context(), notifications.EventJobSkipped, m, details)
	} else {
		err = notifier.Publish(cmd.Context(), notifications.EventJobConfigured, m, notifications.Details{
			"request_id":        result.RequestID,
			"variant_count":     len(result.Variants),
			"estimated_size_gb": result.EstimatedSizeGB,
		})
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warn: notification delivery failed: %v\n", err)
	}
}

func submitResultJSON(result *submit.Result) map[string]any {
	out := map[string]any{
		"outcome":    string(result.Outcome),
		"request_id": result.RequestID,
		"token":      result.Token,
	}
	if result.Job != nil {
		out["job"] = result.Job
		out["estimated_size_gb"] = result.EstimatedSizeGB
	}
	if result.Existing != nil {
		out["existing_status"] = string(result.Existing.Status)
		out["existing_job_id"] = result.Existing.JobID
	}
	return out
}

func printSubmitResult(cmd *cobra.Command, result *submit.Result, jobPath string) {
	out := cmd.OutOrStdout()

	if result.Skipped() {
		fmt.Fprintf(out, "Skipped (%s): content is already covered by token %s\n",
			result.Outcome, result.Token)
		if result.Existing != nil {
			fmt.Fprintf(out, "Existing record: status=%s", result.Existing.Status)
			if result.Existing.JobID != "" {
				fmt.Fprintf(out, " job=%s", result.Existing.JobID)
			}
			fmt.Fprintln(out)
		}
		return
	}

	fmt.Fprintf(out, "Job configured (request %s)\n", result.RequestID)
	fmt.Fprintf(out, "Token: %s\n", result.Token)

	rows := make([][]string, 0, len(result.Variants))
	for _, v := range result.Variants {
		rows = append(rows, []string{
			v.Name,
			string(v.Codec),
			fmt.Sprintf("%dx%d", v.Width, v.Height),
			strconv.Itoa(v.BitrateKbps),
			v.Profile + "@" + v.Level,
		})
	}
	fmt.Fprintln(out, renderTable([]string{"Variant", "Codec", "Resolution", "Kbps", "Profile"}, rows, 3))
	fmt.Fprintf(out, "Estimated output: %.2f GB\n", result.EstimatedSizeGB)
	if jobPath != "" {
		fmt.Fprintf(out, "Job settings written to %s\n", jobPath)
	}
}
