package evaluation

import "github.com/antzucaro/matchr"

// soundsAlikeThreshold is the Jaro-Winkler score above which two words with
// different metaphone codes still count as sounding alike.
const soundsAlikeThreshold = 0.85

type hint struct {
	similarity  float64
	soundsAlike bool
}

// phoneticHint compares what was expected with what was heard. Words sound
// alike when any of their Double Metaphone codes agree or when their spelling
// is close enough.
func phoneticHint(expected, heard string) (hint, bool) {
	if expected == "" || heard == "" {
		return hint{}, false
	}
	score := roundTo(matchr.JaroWinkler(expected, heard, false))
	return hint{
		similarity:  score,
		soundsAlike: metaphoneOverlap(expected, heard) || score >= soundsAlikeThreshold,
	}, true
}

func metaphoneOverlap(a, b string) bool {
	ap, as := matchr.DoubleMetaphone(a)
	bp, bs := matchr.DoubleMetaphone(b)
	codes := map[string]struct{}{}
	for _, code := range []string{ap, as} {
		if code != "" {
			codes[code] = struct{}{}
		}
	}
	for _, code := range []string{bp, bs} {
		if _, ok := codes[code]; ok && code != "" {
			return true
		}
	}
	return false
}
