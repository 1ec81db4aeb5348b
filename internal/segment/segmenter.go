package segment

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidWindow is returned when the window/overlap pair could not make
// progress through the token stream.
var ErrInvalidWindow = errors.New("invalid segmentation window")

// Chunk is the atomic retrievable unit: a bounded window of document text.
// Identity is (Document, Sequence); the vector id is assigned later, by
// insertion order into the index.
type Chunk struct {
	Document string `json:"document"`
	Sequence int    `json:"sequence"`
	Text     string `json:"text"`
}

// Segment splits document text into overlapping windows of `window`
// whitespace tokens, advancing by `window-overlap` tokens each step. The last
// window may be shorter than `window`. Runs of whitespace are collapsed first
// so boundaries are token-based, not byte-based.
//
// An empty document yields an empty slice, not an error. An overlap outside
// (0, window) is rejected: a zero or negative stride would loop forever.
func Segment(document, text string, window, overlap int) ([]Chunk, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: window %d", ErrInvalidWindow, window)
	}
	if overlap <= 0 || overlap >= window {
		return nil, fmt.Errorf("%w: overlap %d for window %d", ErrInvalidWindow, overlap, window)
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []Chunk{}, nil
	}

	stride := window - overlap
	var chunks []Chunk
	for start, seq := 0, 0; start < len(words); start, seq = start+stride, seq+1 {
		end := start + window
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, Chunk{
			Document: document,
			Sequence: seq,
			Text:     strings.Join(words[start:end], " "),
		})
		if end == len(words) {
			break
		}
	}
	return chunks, nil
}
