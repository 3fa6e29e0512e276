package evaluation

import "pronounce/internal/align"

// Summary aggregates one evaluation. WER is (S+D+I)/|ref| and is 0 for an
// empty reference; Accuracy is exact matches over |ref|.
type Summary struct {
	ReferenceWords  int           `json:"reference_words"`
	HypothesisWords int           `json:"hypothesis_words"`
	Counts          map[Label]int `json:"counts"`
	Matches         int           `json:"matches"`
	Substitutions   int           `json:"substitutions"`
	Deletions       int           `json:"deletions"`
	Insertions      int           `json:"insertions"`
	WER             float64       `json:"wer"`
	Accuracy        float64       `json:"accuracy"`
}

func newSummary(refWords, hypWords int) Summary {
	counts := make(map[Label]int, len(Labels))
	for _, label := range Labels {
		counts[label] = 0
	}
	return Summary{ReferenceWords: refWords, HypothesisWords: hypWords, Counts: counts}
}

func (s *Summary) add(op align.Op, label Label) {
	s.Counts[label]++
	switch op.Kind {
	case align.Equal:
		s.Matches++
	case align.Substitution:
		s.Substitutions++
	case align.Deletion:
		s.Deletions++
	case align.Insertion:
		s.Insertions++
	}
}

func (s *Summary) finish() {
	if s.ReferenceWords == 0 {
		return
	}
	ref := float64(s.ReferenceWords)
	s.WER = roundTo(float64(s.Substitutions+s.Deletions+s.Insertions) / ref)
	s.Accuracy = roundTo(float64(s.Matches) / ref)
}

// Errors is the number of edit operations in the alignment.
func (s Summary) Errors() int {
	return s.Substitutions + s.Deletions + s.Insertions
}
