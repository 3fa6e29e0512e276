package report

import (
	"encoding/json"
	"io"

	"pronounce/internal/evaluation"
)

// WriteJSON encodes the full report, summary included, as indented JSON.
func WriteJSON(w io.Writer, rep evaluation.Report) error {
	if rep.Rows == nil {
		rep.Rows = []evaluation.Row{}
	}
	if rep.Reference == nil {
		rep.Reference = []string{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
