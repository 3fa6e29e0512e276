package transcript

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"pronounce/internal/services"
	"pronounce/internal/textnorm"
)

var (
	// ErrInvalidWord marks a word record that violates the provider contract.
	ErrInvalidWord = fmt.Errorf("%w: invalid word record", services.ErrValidation)
	// ErrInvalidUtterance marks an utterance without a words list.
	ErrInvalidUtterance = fmt.Errorf("%w: invalid utterance", services.ErrValidation)
	// ErrNoUtterances is returned when a payload carries no utterance list at all.
	ErrNoUtterances = fmt.Errorf("%w: transcript has no utterances", services.ErrValidation)
)

// Flatten validates every raw word record across utterances, in order, and
// returns the normalized hypothesis sequence.
func Flatten(utterances []Utterance) ([]Word, error) {
	total := 0
	for _, u := range utterances {
		total += len(u.Words)
	}
	words := make([]Word, 0, total)
	for ui, u := range utterances {
		if u.Words == nil {
			return nil, fmt.Errorf("%w: utterance %d: missing words", ErrInvalidUtterance, ui)
		}
		for wi, raw := range u.Words {
			word, err := raw.normalize()
			if err != nil {
				return nil, fmt.Errorf("%w: utterance %d word %d: %w", ErrInvalidWord, ui, wi, err)
			}
			words = append(words, word)
		}
	}
	return words, nil
}

func (r RawWord) normalize() (Word, error) {
	if r.Word == nil {
		return Word{}, errors.New("missing word")
	}
	if err := checkFinite("start", r.Start); err != nil {
		return Word{}, err
	}
	if err := checkFinite("end", r.End); err != nil {
		return Word{}, err
	}
	if r.Start != nil && r.End != nil && *r.Start > *r.End {
		return Word{}, fmt.Errorf("start %.3f after end %.3f", *r.Start, *r.End)
	}
	if err := checkFinite("confidence", r.Confidence); err != nil {
		return Word{}, err
	}
	if r.Confidence != nil && (*r.Confidence < 0 || *r.Confidence > 1) {
		return Word{}, fmt.Errorf("confidence %v outside [0, 1]", *r.Confidence)
	}
	return Word{
		Text:       textnorm.Normalize(strings.TrimSpace(*r.Word)),
		Start:      copyFloat(r.Start),
		End:        copyFloat(r.End),
		Confidence: copyFloat(r.Confidence),
	}, nil
}

func checkFinite(field string, v *float64) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return fmt.Errorf("%s is not a finite number", field)
	}
	return nil
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
