package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/unicode/norm"
)

// disallowedPattern matches anything that is not a word character, an
// apostrophe, or ASCII whitespace.
var disallowedPattern = regexp.MustCompile(`[^0-9A-Za-z_'\t\n\v\f\r ]`)

// Transliterate maps s to its closest ASCII spelling. Input is folded to NFKC
// first so compatibility and decomposed forms romanize like their canonical
// letters; runes with no romanization are dropped.
func Transliterate(s string) string {
	if isASCII(s) {
		return s
	}
	return unidecode.Unidecode(norm.NFKC.String(s))
}

// Normalize canonicalizes raw text for comparison.
func Normalize(raw string) string {
	s := strings.TrimSpace(strings.ToLower(Transliterate(raw)))
	s = disallowedPattern.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "'", "")
	return strings.Join(strings.Fields(s), " ")
}

// Tokenize normalizes raw and splits it on whitespace. Empty input yields an
// empty slice.
func Tokenize(raw string) []string {
	normalized := Normalize(raw)
	if normalized == "" {
		return []string{}
	}
	return strings.Split(normalized, " ")
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > unicode.MaxASCII {
			return false
		}
	}
	return true
}
