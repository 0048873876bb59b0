package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/idempotency"
	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/notifications"
	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/preflight"
	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/submit"
	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the spool directory and submit dropped manifests",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if !skipPreflight {
				results := preflight.RunAll(signalCtx, cfg)
				if !preflight.Passed(results) {
					printPreflightResults(cmd, results)
					return fmt.Errorf("preflight checks failed")
				}
			}

			return ctx.withStore(func(store *idempotency.Store) error {
				orch := submit.New(store, orchestratorOptions(cfg), logger)
				watcher, err := watch.New(cfg, orch, notifications.NewService(cfg), logger)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl-C to stop)\n", cfg.Paths.SpoolDir)
				return watcher.Run(signalCtx)
			})
		},
	}

	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip environment checks before watching")
	return cmd
}
