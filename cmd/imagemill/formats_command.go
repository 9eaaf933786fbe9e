package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"imagemill/internal/convert"
)

func newFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "formats",
		Short:       "List the supported output formats",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(convert.Formats()))
			for _, format := range convert.Formats() {
				rows = append(rows, []string{
					format.String(),
					"." + format.Extension(),
					format.MIME(),
					yesNo(format.UsesQuality()),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]tableColumn{
				{header: "Format"},
				{header: "Extension"},
				{header: "MIME"},
				{header: "Quality"},
			}, rows))
			fmt.Fprintln(out, "Accepted inputs (detected by content, not extension): JPEG, PNG, WEBP, GIF, TIFF, BMP")
			return nil
		},
	}
}
