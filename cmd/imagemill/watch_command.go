package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"imagemill/internal/batch"
	"imagemill/internal/config"
	"imagemill/internal/intake"
	"imagemill/internal/workflow"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	flags := &settingsFlags{}
	var noExport bool

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Convert images as they arrive in a dropzone directory",
		Long: `Watch monitors a directory and converts every supported image dropped
into it, exporting finished files to the output directory as arrivals
settle. Stop with Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(cfg *config.Config, logger *slog.Logger, store *batch.Store) error {
				settings, err := flags.apply(cmd, cfg)
				if err != nil {
					return err
				}

				signalCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				manager := workflow.NewManager(cfg, store, logger)
				if err := manager.Start(signalCtx, workflow.WatchOptions{
					Dir:      args[0],
					Settings: settings,
					Export:   !noExport,
				}); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Watching %s (press Ctrl-C to stop)\n", args[0])
				<-signalCtx.Done()
				manager.Stop()
				// Exported copies live in the destination; the staged
				// artifacts end with the session.
				if items, listErr := store.List(cmd.Context()); listErr == nil {
					intake.Release(logger, items...)
				}
				fmt.Fprintln(out, "Watch stopped")
				return nil
			})
		},
	}

	registerSettingsFlags(cmd, flags)
	cmd.Flags().BoolVar(&noExport, "no-export", false, "Keep converted files in the staging area instead of exporting")

	return cmd
}
