package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"imagemill/internal/batch"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

// statusCell renders an item status for table output, tinted when the
// destination is a terminal.
func statusCell(status batch.Status, colorize bool) string {
	if !colorize {
		return string(status)
	}
	switch status {
	case batch.StatusCompleted:
		return ansiGreen + string(status) + ansiReset
	case batch.StatusFailed:
		return ansiRed + string(status) + ansiReset
	case batch.StatusProcessing:
		return ansiYellow + string(status) + ansiReset
	default:
		return string(status)
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
