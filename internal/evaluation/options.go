package evaluation

import (
	"sort"
	"strings"

	"pronounce/internal/textnorm"
)

const (
	// DefaultLowConfidence flags exact matches heard with low confidence.
	DefaultLowConfidence = 0.35
	// DefaultVeryLowConfidence escalates substitutions to severe.
	DefaultVeryLowConfidence = 0.20
)

// DefaultFillers is the discourse filler and politeness vocabulary. Entries
// are compared against single normalized hypothesis words, so phrases appear
// both concatenated ("youknow", "excuseme") and as their separate words.
var DefaultFillers = strings.Fields(`
uh um hmm like youknow kinda sortof sorry thanks thank you next wait okay ok
yeah yea nope mam pardon excuseme excuse me please
`)

// Options carries the classification parameters for one evaluation.
type Options struct {
	Fillers           FillerSet
	LowConfidence     float64
	VeryLowConfidence float64
	// PhoneticHints attaches sound-alike scores to substitution rows.
	PhoneticHints bool
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Fillers:           NewFillerSet(DefaultFillers...),
		LowConfidence:     DefaultLowConfidence,
		VeryLowConfidence: DefaultVeryLowConfidence,
		PhoneticHints:     true,
	}
}

// FillerSet is a set of normalized filler words.
type FillerSet map[string]struct{}

// NewFillerSet normalizes words into a set. Entries that normalize to nothing
// are skipped.
func NewFillerSet(words ...string) FillerSet {
	set := make(FillerSet, len(words))
	for _, word := range words {
		normalized := textnorm.Normalize(word)
		if normalized == "" {
			continue
		}
		set[normalized] = struct{}{}
	}
	return set
}

// Contains reports whether word is a filler.
func (s FillerSet) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// Phrases returns entries that contain a space. Such entries can never match
// a single provider word.
func (s FillerSet) Phrases() []string {
	var out []string
	for word := range s {
		if strings.Contains(word, " ") {
			out = append(out, word)
		}
	}
	sort.Strings(out)
	return out
}

// Sorted returns the set members in lexical order.
func (s FillerSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for word := range s {
		out = append(out, word)
	}
	sort.Strings(out)
	return out
}
