package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"imagemill/internal/batch"
	"imagemill/internal/config"
	"imagemill/internal/export"
	"imagemill/internal/intake"
	"imagemill/internal/logging"
	"imagemill/internal/notifications"
	"imagemill/internal/workflow"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	flags := &settingsFlags{}
	var (
		recursive bool
		outputDir string
		zipExport bool
		retries   int
	)

	cmd := &cobra.Command{
		Use:   "convert [paths...]",
		Short: "Convert images and deliver the results",
		Long: `Convert admits the given files and directories into a batch, converts
them with the configured settings, and exports the finished images as loose
files or a single zip archive. The exit status is non-zero when any
conversion failed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(cfg *config.Config, logger *slog.Logger, store *batch.Store) error {
				settings, err := flags.apply(cmd, cfg)
				if err != nil {
					return err
				}

				signalCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				out := cmd.OutOrStdout()
				scan, err := intake.New(cfg, store, logger).Scan(signalCtx, args, recursive)
				if err != nil {
					return err
				}
				// The batch ends with this invocation, so staged previews and
				// outputs are released on the way out. Exported copies are
				// already in the destination by then.
				sessionItems := scan.Added
				defer func() { intake.Release(logger, sessionItems...) }()

				for _, skipped := range scan.Skipped {
					fmt.Fprintf(out, "Skipped %s: %s\n", skipped.Path, skipped.Reason)
				}
				if len(scan.Added) == 0 {
					return errors.New("no supported images found")
				}

				manager := workflow.NewManager(cfg, store, logger)
				start := time.Now()
				summary, err := manager.RunPass(signalCtx, settings)
				if err != nil {
					return err
				}
				for attempt := 1; attempt <= retries && summary.Failed > 0 && signalCtx.Err() == nil; attempt++ {
					fmt.Fprintf(out, "Retrying %d failed conversions (attempt %d of %d)\n", summary.Failed, attempt, retries)
					if summary, err = manager.RunPass(signalCtx, settings); err != nil {
						return err
					}
				}
				if signalCtx.Err() != nil {
					fmt.Fprintf(out, "Interrupted; %d conversions left pending\n", summary.Interrupted)
					return context.Canceled
				}
				elapsed := time.Since(start).Round(time.Millisecond)

				items, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				sessionItems = items
				completed, failed := printResults(out, items)

				if completed > 0 {
					notifier := notifications.NewService(cfg)
					exporter := export.New(cfg, store, logger)
					if zipExport {
						archivePath := ""
						if outputDir != "" {
							archivePath = filepath.Join(outputDir, cfg.Export.ZipName)
						}
						exported, err := exporter.Zip(cmd.Context(), archivePath)
						if err != nil {
							return err
						}
						fmt.Fprintf(out, "Archived %d images to %s\n", exported.Exported, exported.Archive)
						publishExport(cmd.Context(), logger, notifier, exported, "")
					} else {
						dest := outputDir
						if dest == "" {
							dest = cfg.Paths.OutputDir
						}
						exported, err := exporter.Files(cmd.Context(), outputDir)
						if err != nil {
							return err
						}
						fmt.Fprintf(out, "Exported %d images to %s\n", exported.Exported, dest)
						publishExport(cmd.Context(), logger, notifier, exported, dest)
					}
				}

				fmt.Fprintf(out, "Converted %d of %d images in %s\n", completed, len(items), elapsed)
				if failed > 0 {
					return fmt.Errorf("%d of %d conversions failed", failed, len(items))
				}
				return nil
			})
		},
	}

	registerSettingsFlags(cmd, flags)
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Descend into subdirectories")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Destination directory for exported files")
	cmd.Flags().BoolVar(&zipExport, "zip", false, "Bundle the results into a single zip archive")
	cmd.Flags().IntVar(&retries, "retries", 0, "Extra conversion passes over failed items")

	return cmd
}

// printResults renders the per-item outcome table followed by one line per
// failure, and returns the completed and failed counts.
func printResults(out io.Writer, items []*batch.Item) (completed, failed int) {
	colorize := shouldColorize(out)
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		output, dims, size := "-", "-", "-"
		switch item.Status {
		case batch.StatusCompleted:
			completed++
			output = item.OutputName
			dims = formatDimensions(item.OutputWidth, item.OutputHeight)
			size = formatBytes(item.OutputSize)
		case batch.StatusFailed:
			failed++
		}
		rows = append(rows, []string{
			strconv.Itoa(item.Position),
			item.SourceName,
			statusCell(item.Status, colorize),
			output,
			dims,
			size,
		})
	}
	fmt.Fprintln(out, renderTable([]tableColumn{
		{header: "#", rightAlign: true},
		{header: "Source"},
		{header: "Status"},
		{header: "Output"},
		{header: "Dimensions"},
		{header: "Size", rightAlign: true},
	}, rows))
	for _, item := range items {
		if item.Status == batch.StatusFailed && item.ErrorMessage != "" {
			fmt.Fprintf(out, "%s: %s\n", item.SourceName, item.ErrorMessage)
		}
	}
	return completed, failed
}

func publishExport(ctx context.Context, logger *slog.Logger, notifier notifications.Service, summary export.Summary, dest string) {
	payload := notifications.Payload{
		"count": strconv.Itoa(summary.Exported),
	}
	if summary.Archive != "" {
		payload["archive"] = summary.Archive
	} else {
		payload["dest"] = dest
	}
	if err := notifier.Publish(ctx, notifications.EventExportCompleted, payload); err != nil {
		logger.Warn("publish export notification", logging.Error(err))
	}
}
