package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"pronounce/internal/evaluation"
	"pronounce/internal/services"
)

// Format selects an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

// ParseFormat accepts table, csv, or json in any case.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatTable, "":
		return FormatTable, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unsupported output format %q (want table, csv, or json)", services.ErrValidation, value)
	}
}

// Options tunes rendering.
type Options struct {
	// Title is printed above the table, typically the transcript name.
	Title string
	// Color enables ANSI colouring of labels in table output.
	Color bool
	// Summary appends WER and accuracy below the table.
	Summary bool
}

// Write renders report in format.
func Write(w io.Writer, format Format, rep evaluation.Report, opts Options) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, rep.Rows)
	case FormatJSON:
		return WriteJSON(w, rep)
	default:
		return WriteTable(w, rep, opts)
	}
}

// ShouldColorize reports whether writer is an interactive terminal.
func ShouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
