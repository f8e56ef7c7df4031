package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

const statusLabelWidth = 22

// renderCheckLine formats one doctor result as "  Label: [OK] detail".
func renderCheckLine(label string, passed bool, detail string, colorize bool) string {
	status, color := "FAIL", ansiRed
	if passed {
		status, color = "OK", ansiGreen
	}
	statusText := fmt.Sprintf("[%s]", status)
	if detail != "" {
		statusText += " " + detail
	}
	line := fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", statusText)
	if colorize {
		return color + line + ansiReset
	}
	return line
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
