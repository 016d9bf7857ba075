package tui

import (
	"fmt"
	"strings"
	"time"

	"nefconv/internal/processor"
)

type SummaryRow struct {
	Label string
	Value string
}

// SummaryRows lays out the closing table of a run.
func SummaryRows(s processor.Summary) []SummaryRow {
	result := "complete"
	if s.Aborted {
		result = "aborted"
	}
	return []SummaryRow{
		{Label: "Files found", Value: fmt.Sprintf("%d", s.Total)},
		{Label: "Converted", Value: fmt.Sprintf("%d", s.Converted)},
		{Label: "Failed", Value: fmt.Sprintf("%d", s.Failed)},
		{Label: "Skipped", Value: fmt.Sprintf("%d", s.Skipped)},
		{Label: "Result", Value: result},
		{Label: "Elapsed", Value: s.Elapsed.Round(time.Millisecond).String()},
	}
}

func RenderSummary(rows []SummaryRow) string {
	labelWidth := 0
	valueWidth := 0
	for _, row := range rows {
		if len(row.Label) > labelWidth {
			labelWidth = len(row.Label)
		}
		if len(row.Value) > valueWidth {
			valueWidth = len(row.Value)
		}
	}

	hline := dimStyle.Render(strings.Repeat("-", labelWidth+valueWidth+3))
	lines := []string{hline}

	for _, row := range rows {
		label := padRight(row.Label, labelWidth)
		value := padRight(row.Value, valueWidth)
		line := fmt.Sprintf("%s | %s", labelStyle.Render(label), valueStyle.Render(value))
		lines = append(lines, line)
	}

	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
