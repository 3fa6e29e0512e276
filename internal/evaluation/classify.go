package evaluation

import "pronounce/internal/align"

// Label is a diagnostic category for one aligned unit.
type Label string

const (
	LabelMatch               Label = "match"
	LabelMatchedButUnclear   Label = "matched-but-unclear"
	LabelMispronounced       Label = "mispronounced"
	LabelMispronouncedSevere Label = "mispronounced-severe"
	LabelExtra               Label = "extra"
	LabelExtraFiller         Label = "extra-filler"
	LabelMissed              Label = "missed"
)

// Labels lists every label in report order.
var Labels = []Label{
	LabelMatch,
	LabelMatchedButUnclear,
	LabelMispronounced,
	LabelMispronouncedSevere,
	LabelExtra,
	LabelExtraFiller,
	LabelMissed,
}

// Classify labels an aligned operation. A missing confidence never counts as
// low.
func Classify(op align.Op, opts Options) Label {
	switch op.Kind {
	case align.Equal:
		if confidenceBelow(op, opts.LowConfidence) {
			return LabelMatchedButUnclear
		}
		return LabelMatch
	case align.Substitution:
		if confidenceBelow(op, opts.VeryLowConfidence) {
			return LabelMispronouncedSevere
		}
		return LabelMispronounced
	case align.Insertion:
		if opts.Fillers.Contains(op.HypText()) {
			return LabelExtraFiller
		}
		return LabelExtra
	default:
		return LabelMissed
	}
}

func confidenceBelow(op align.Op, threshold float64) bool {
	return op.Hyp != nil && op.Hyp.Confidence != nil && *op.Hyp.Confidence < threshold
}
