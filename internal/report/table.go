package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"pronounce/internal/evaluation"
)

// WriteTable renders rows as a rounded table. A report without discrepancies
// prints a single line instead of an empty table.
func WriteTable(w io.Writer, rep evaluation.Report, opts Options) error {
	var b strings.Builder
	if title := strings.TrimSpace(opts.Title); title != "" {
		fmt.Fprintf(&b, "== %s ==\n", title)
	}
	if len(rep.Rows) == 0 {
		b.WriteString("No discrepancies found.\n")
	} else {
		b.WriteString(renderTable(rep.Rows, opts.Color))
		b.WriteString("\n")
	}
	if opts.Summary {
		b.WriteString(summaryLine(rep.Summary))
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func renderTable(rows []evaluation.Row, colorize bool) string {
	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = row.Cells()
		if colorize {
			cells[i][0] = labelColors(row.Type).Sprint(cells[i][0])
		}
	}
	return Grid(evaluation.Columns, cells, 3, 4, 5)
}

// Grid renders a rounded table. Headers are left aligned; the zero-based
// columns listed in rightAligned align their cells right. Short rows are
// padded with empty cells.
func Grid(headers []string, rows [][]string, rightAligned ...int) string {
	if len(headers) == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(toRow(headers, len(headers)))
	for _, row := range rows {
		tw.AppendRow(toRow(row, len(headers)))
	}

	right := make(map[int]bool, len(rightAligned))
	for _, col := range rightAligned {
		right[col] = true
	}
	configs := make([]table.ColumnConfig, len(headers))
	for i := range headers {
		configs[i] = table.ColumnConfig{Number: i + 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft}
		if right[i] {
			configs[i].Align = text.AlignRight
		}
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func toRow(cells []string, width int) table.Row {
	row := make(table.Row, width)
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = ""
		}
	}
	return row
}

func labelColors(label evaluation.Label) text.Colors {
	switch label {
	case evaluation.LabelMissed, evaluation.LabelMispronouncedSevere:
		return text.Colors{text.FgRed}
	case evaluation.LabelMispronounced, evaluation.LabelMatchedButUnclear:
		return text.Colors{text.FgYellow}
	case evaluation.LabelExtra, evaluation.LabelExtraFiller:
		return text.Colors{text.FgBlue}
	default:
		return text.Colors{text.FgGreen}
	}
}

func summaryLine(s evaluation.Summary) string {
	return fmt.Sprintf("WER %.3f  accuracy %.3f  (%d reference, %d heard, %d substitutions, %d deletions, %d insertions)",
		s.WER, s.Accuracy, s.ReferenceWords, s.HypothesisWords, s.Substitutions, s.Deletions, s.Insertions)
}
