package align

import "pronounce/internal/transcript"

// Kind identifies an alignment operation.
type Kind uint8

const (
	Equal Kind = iota
	Substitution
	Deletion
	Insertion
)

func (k Kind) String() string {
	switch k {
	case Equal:
		return "equal"
	case Substitution:
		return "substitution"
	case Deletion:
		return "deletion"
	case Insertion:
		return "insertion"
	default:
		return "unknown"
	}
}

// Op is one aligned unit. Ref is empty for insertions and Hyp is nil for
// deletions.
type Op struct {
	Kind Kind
	Ref  string
	Hyp  *transcript.Word
}

// HasRef reports whether the operation consumes a reference token.
func (o Op) HasRef() bool {
	return o.Kind != Insertion
}

// HasHyp reports whether the operation consumes a hypothesis word.
func (o Op) HasHyp() bool {
	return o.Kind != Deletion && o.Hyp != nil
}

// HypText returns the hypothesis text or "" for deletions.
func (o Op) HypText() string {
	if o.Hyp == nil {
		return ""
	}
	return o.Hyp.Text
}

// Cost returns the unit edit cost of the operation.
func (o Op) Cost() int {
	if o.Kind == Equal {
		return 0
	}
	return 1
}

// Cost sums the edit cost along an alignment.
func Cost(ops []Op) int {
	total := 0
	for _, op := range ops {
		total += op.Cost()
	}
	return total
}

// RefProjection returns the reference tokens consumed by ops, in order.
func RefProjection(ops []Op) []string {
	out := make([]string, 0, len(ops))
	for _, op := range ops {
		if op.HasRef() {
			out = append(out, op.Ref)
		}
	}
	return out
}

// HypProjection returns the hypothesis words consumed by ops, in order.
func HypProjection(ops []Op) []transcript.Word {
	out := make([]transcript.Word, 0, len(ops))
	for _, op := range ops {
		if op.HasHyp() {
			out = append(out, *op.Hyp)
		}
	}
	return out
}
