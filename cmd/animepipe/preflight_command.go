package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Check directories, the reservation store, and the webhook endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			printPreflightResults(cmd, results)
			if !preflight.Passed(results) {
				return fmt.Errorf("preflight checks failed")
			}
			return nil
		},
	}
}

func printPreflightResults(cmd *cobra.Command, results []preflight.Result) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	for _, result := range results {
		fmt.Fprintln(out, renderCheckLine(result.Name, result.Passed, result.Detail, colorize))
	}
}
