package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Transcription is the provider's transcription block.
type Transcription struct {
	FullTranscript string      `json:"full_transcript,omitempty"`
	Utterances     []Utterance `json:"utterances"`
}

type document struct {
	Utterances    []Utterance    `json:"utterances"`
	Transcription *Transcription `json:"transcription"`
	Result        *struct {
		Transcription *Transcription `json:"transcription"`
	} `json:"result"`
}

// Decode reads utterances from a bare JSON array, an object with an
// "utterances" key, a transcription block, or a full provider result
// document. A payload without any utterance list returns ErrNoUtterances; an
// explicitly empty list is valid.
func Decode(r io.Reader) ([]Utterance, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrNoUtterances
	}

	switch trimmed[0] {
	case '[':
		var utterances []Utterance
		if err := json.Unmarshal(trimmed, &utterances); err != nil {
			return nil, fmt.Errorf("%w: decode utterances: %w", ErrInvalidUtterance, err)
		}
		return utterances, nil
	case '{':
		var doc document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("%w: decode transcript document: %w", ErrInvalidUtterance, err)
		}
		switch {
		case doc.Utterances != nil:
			return doc.Utterances, nil
		case doc.Transcription != nil && doc.Transcription.Utterances != nil:
			return doc.Transcription.Utterances, nil
		case doc.Result != nil && doc.Result.Transcription != nil && doc.Result.Transcription.Utterances != nil:
			return doc.Result.Transcription.Utterances, nil
		}
		return nil, ErrNoUtterances
	default:
		return nil, ErrNoUtterances
	}
}

// DecodeFile opens path and decodes it with Decode.
func DecodeFile(path string) ([]Utterance, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer file.Close()
	utterances, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return utterances, nil
}

// Encode writes utterances as an indented JSON array.
func Encode(w io.Writer, utterances []Utterance) error {
	if utterances == nil {
		utterances = []Utterance{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(utterances)
}
