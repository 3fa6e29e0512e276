package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"pronounce/internal/evaluation"
)

// DefaultCSVName is the file name used when exporting without an explicit
// path.
const DefaultCSVName = "evaluation.csv"

// WriteCSV writes a header row in column order followed by one record per
// row. Missing numbers are empty cells.
func WriteCSV(w io.Writer, rows []evaluation.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(evaluation.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row.Cells()); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
