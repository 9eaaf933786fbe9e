package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"imagemill/internal/intake"
	"imagemill/internal/metadata"
)

func newInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [paths...]",
		Short: "Show the metadata a conversion would discard",
		Long: `Inspect sniffs each file's real type and summarizes its embedded EXIF
metadata. Conversion re-encodes pixel data only, so every field listed
here is absent from converted output.`,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(args))
			notes := make([]string, 0, len(args))
			for _, path := range args {
				mime, ok := intake.Sniff(path)
				if !ok {
					fmt.Fprintf(out, "Skipped %s: not a supported image\n", path)
					continue
				}
				summary, err := metadata.SummarizeFile(path)
				if err != nil {
					return fmt.Errorf("inspect %s: %w", path, err)
				}

				name := filepath.Base(path)
				camera := strings.TrimSpace(summary.CameraMake + " " + summary.CameraModel)
				if camera == "" {
					camera = "-"
				}
				taken := summary.Taken
				if taken == "" {
					taken = "-"
				}
				gps := yesNo(summary.HasGPS)
				if summary.HasGPS {
					gps = fmt.Sprintf("yes (%d)", summary.GPSCount)
				}
				rows = append(rows, []string{
					name,
					mime,
					strconv.Itoa(summary.TagCount),
					camera,
					taken,
					gps,
				})

				if summary.TagCount > 0 {
					detail := fmt.Sprintf("all %d tags", summary.TagCount)
					if list := summary.Discards(); len(list) > 0 {
						detail = strings.Join(list, ", ")
					}
					notes = append(notes, fmt.Sprintf("%s: conversion discards %s", name, detail))
				}
			}
			if len(rows) == 0 {
				return errors.New("no supported images found")
			}

			fmt.Fprintln(out, renderTable([]tableColumn{
				{header: "File"},
				{header: "Type"},
				{header: "Tags", rightAlign: true},
				{header: "Camera"},
				{header: "Taken"},
				{header: "GPS"},
			}, rows))
			for _, note := range notes {
				fmt.Fprintln(out, note)
			}
			return nil
		},
	}
	return cmd
}
