package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gruberb/game-compatibility-tracker/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Scrape all sources, resolve titles, and write the merged rankings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return fmt.Errorf("setup logging: %w", err)
			}

			runner, err := pipeline.New(cfg, logger)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			summary, err := runner.Run(runCtx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s complete\n", summary.RunID)
			fmt.Fprintf(out, "  Sources:       %d (%d failed)\n", summary.Sources, summary.FailedSources)
			fmt.Fprintf(out, "  Entries:       %d\n", summary.TotalEntries)
			fmt.Fprintf(out, "  Unique games:  %d\n", summary.UniqueGames)
			fmt.Fprintf(out, "  Unmatched:     %d\n", summary.Unmatched)
			fmt.Fprintf(out, "Output written to %s\n", cfg.Paths.DataDir)
			return nil
		},
	}
}
