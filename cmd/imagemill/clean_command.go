package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"imagemill/internal/staging"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration
	var all bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove leftover staging files",
		Long: `Clean removes staged previews and outputs left behind by interrupted
sessions. By default only files older than 24 hours are removed; --all
sweeps everything regardless of age.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			maxAge := olderThan
			if all {
				maxAge = 0
			}
			result := staging.CleanStale(cmd.Context(), cfg.Paths.StagingDir, maxAge, logger)

			out := cmd.OutOrStdout()
			if len(result.Removed) == 0 && len(result.Errors) == 0 {
				fmt.Fprintln(out, "No staging files to clean")
				return nil
			}
			if len(result.Errors) > 0 {
				fmt.Fprintf(out, "Removed %d staging files, %d errors\n", len(result.Removed), len(result.Errors))
				for _, sweepErr := range result.Errors {
					fmt.Fprintf(out, "  Error: %s: %v\n", sweepErr.Path, sweepErr.Error)
				}
				return nil
			}
			fmt.Fprintf(out, "Removed %d staging files\n", len(result.Removed))
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "Only remove files older than this age")
	cmd.Flags().BoolVar(&all, "all", false, "Remove all staged files regardless of age")

	return cmd
}
