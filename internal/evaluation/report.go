package evaluation

import (
	"fmt"
	"math"
	"strconv"

	"pronounce/internal/align"
	"pronounce/internal/services"
	"pronounce/internal/textnorm"
	"pronounce/internal/transcript"
)

// ErrNoHypothesis is returned when no hypothesis input was supplied at all.
// An empty utterance list is a valid hypothesis in which nothing was heard.
var ErrNoHypothesis = fmt.Errorf("%w: no hypothesis input", services.ErrValidation)

// Columns is the tabular column order shared by the table and CSV writers.
var Columns = []string{"type", "reference_word", "heard_word", "start_sec", "end_sec", "confidence"}

// Row is one reported discrepancy. Numeric fields are rounded to three
// decimals and nil when the provider omitted them.
type Row struct {
	Type          Label    `json:"type"`
	ReferenceWord string   `json:"reference_word"`
	HeardWord     string   `json:"heard_word"`
	StartSec      *float64 `json:"start_sec"`
	EndSec        *float64 `json:"end_sec"`
	Confidence    *float64 `json:"confidence"`
	Similarity    *float64 `json:"similarity,omitempty"`
	SoundsAlike   bool     `json:"sounds_alike,omitempty"`
}

// Cells renders the row in Columns order. Nil numerics render as "".
func (r Row) Cells() []string {
	return []string{
		string(r.Type),
		r.ReferenceWord,
		r.HeardWord,
		FormatNumber(r.StartSec),
		FormatNumber(r.EndSec),
		FormatNumber(r.Confidence),
	}
}

// FormatNumber renders v with at most three decimals, or "" when nil.
func FormatNumber(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Report is the result of one evaluation.
type Report struct {
	Reference []string `json:"reference"`
	Rows      []Row    `json:"rows"`
	Summary   Summary  `json:"summary"`
}

// BuildReport scores utterances against reference and returns every
// non-match row in alignment order.
func BuildReport(reference string, utterances []transcript.Utterance, opts Options) ([]Row, error) {
	report, err := Evaluate(reference, utterances, opts)
	if err != nil {
		return nil, err
	}
	return report.Rows, nil
}

// Evaluate is BuildReport plus an aggregate Summary.
func Evaluate(reference string, utterances []transcript.Utterance, opts Options) (Report, error) {
	if utterances == nil {
		return Report{}, ErrNoHypothesis
	}
	words, err := transcript.Flatten(utterances)
	if err != nil {
		return Report{}, err
	}
	ref := textnorm.Tokenize(reference)
	ops := align.Align(ref, words)

	rows := make([]Row, 0, len(ops))
	summary := newSummary(len(ref), len(words))
	for _, op := range ops {
		label := Classify(op, opts)
		summary.add(op, label)
		if label == LabelMatch {
			continue
		}
		rows = append(rows, projectRow(op, label, opts))
	}
	summary.finish()

	return Report{Reference: ref, Rows: rows, Summary: summary}, nil
}

func projectRow(op align.Op, label Label, opts Options) Row {
	row := Row{Type: label}
	if op.HasRef() {
		row.ReferenceWord = op.Ref
	}
	if op.Hyp != nil {
		row.HeardWord = op.Hyp.Text
		row.StartSec = round3(op.Hyp.Start)
		row.EndSec = round3(op.Hyp.End)
		row.Confidence = round3(op.Hyp.Confidence)
	}
	if opts.PhoneticHints && op.Kind == align.Substitution {
		if h, ok := phoneticHint(row.ReferenceWord, row.HeardWord); ok {
			row.Similarity = &h.similarity
			row.SoundsAlike = h.soundsAlike
		}
	}
	return row
}

func round3(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := roundTo(*v)
	return &out
}

func roundTo(v float64) float64 {
	return math.Round(v*1000) / 1000
}
