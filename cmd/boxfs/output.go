package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

//nolint:gochecknoglobals
var (
	// titleStyle defines the style for a report's title.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	// labelStyle defines the style for a report's labels.
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	// directoryStyle defines the style for directories in listings.
	directoryStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))
)

type field struct {
	label string
	value string
}

func printReport(out io.Writer, title string, fields []field) {
	var sb strings.Builder

	width := 0
	for _, f := range fields {
		width = max(width, len(f.label))
	}

	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")

	for _, f := range fields {
		label := f.label + ":" + strings.Repeat(" ", width-len(f.label))
		sb.WriteString(labelStyle.Render(label))
		sb.WriteString(" ")
		sb.WriteString(f.value)
		sb.WriteString("\n")
	}

	fmt.Fprint(out, sb.String())
}

func bytesField(label string, size uint64) field {
	return field{label, fmt.Sprintf("%s (%d bytes)", humanize.Bytes(size), size)}
}

func countField(label string, count int) field {
	return field{label, humanize.Comma(int64(count))}
}
