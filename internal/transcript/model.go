package transcript

// Word is a normalized hypothesis word. Nil fields mean the provider omitted
// the value.
type Word struct {
	Text       string   `json:"text"`
	Start      *float64 `json:"start,omitempty"`
	End        *float64 `json:"end,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// RawWord is a word record exactly as decoded from the provider payload.
type RawWord struct {
	Word       *string  `json:"word"`
	Start      *float64 `json:"start"`
	End        *float64 `json:"end"`
	Confidence *float64 `json:"confidence"`
}

// Utterance groups the raw word records of one provider utterance.
type Utterance struct {
	Text       string    `json:"text,omitempty"`
	Language   string    `json:"language,omitempty"`
	Start      *float64  `json:"start,omitempty"`
	End        *float64  `json:"end,omitempty"`
	Confidence *float64  `json:"confidence,omitempty"`
	Words      []RawWord `json:"words"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// String returns a pointer to v.
func String(v string) *string {
	return &v
}

// Texts projects words onto their normalized text.
func Texts(words []Word) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = w.Text
	}
	return out
}
