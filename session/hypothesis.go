package session

import (
	"math"
	"strings"

	"github.com/kbukum/whisperkit/transcription"
)

const (
	// confidentWordProbability commits a word on first sight when
	// confidence validation is on.
	confidentWordProbability = 0.95
	maxOverlapNgram          = 5
)

// hypothesisBuffer implements LocalAgreement-2: a word is committed once
// two consecutive hypotheses agree on it.
type hypothesisBuffer struct {
	confidenceValidation bool

	committedInBuffer []transcription.Word
	buffer            []transcription.Word
	incoming          []transcription.Word
	lastCommittedTime float64
}

func newHypothesisBuffer(confidenceValidation bool, lastCommittedTime float64) *hypothesisBuffer {
	return &hypothesisBuffer{confidenceValidation: confidenceValidation, lastCommittedTime: lastCommittedTime}
}

// insert stores a new hypothesis whose times are relative to offset. Words
// ending before the commit point and n-grams repeating the committed tail
// are dropped.
func (h *hypothesisBuffer) insert(words []transcription.Word, offset float64) {
	h.incoming = h.incoming[:0]
	for _, w := range words {
		w = w.Shift(offset)
		if w.Start > h.lastCommittedTime-0.1 {
			h.incoming = append(h.incoming, w)
		}
	}
	if len(h.incoming) == 0 || len(h.committedInBuffer) == 0 {
		return
	}
	if math.Abs(h.incoming[0].Start-h.lastCommittedTime) >= 1 {
		return
	}

	cn, nn := len(h.committedInBuffer), len(h.incoming)
	for i := 1; i <= min(cn, nn, maxOverlapNgram); i++ {
		if sameText(h.committedInBuffer[cn-i:], h.incoming[:i]) {
			h.incoming = h.incoming[i:]
			return
		}
	}
}

// flush commits the longest prefix shared by the new hypothesis and the
// previous one and returns it.
func (h *hypothesisBuffer) flush() []transcription.Word {
	var commit []transcription.Word
	for len(h.incoming) > 0 {
		w := h.incoming[0]
		if h.confidenceValidation && w.Probability > confidentWordProbability {
			commit = append(commit, w)
			h.lastCommittedTime = w.End
			h.incoming = h.incoming[1:]
			if len(h.buffer) > 0 {
				h.buffer = h.buffer[1:]
			}
			continue
		}
		if len(h.buffer) == 0 || normalize(w.Text) != normalize(h.buffer[0].Text) {
			break
		}
		commit = append(commit, w)
		h.lastCommittedTime = w.End
		h.incoming = h.incoming[1:]
		h.buffer = h.buffer[1:]
	}
	h.buffer = append([]transcription.Word(nil), h.incoming...)
	h.incoming = h.incoming[:0]
	h.committedInBuffer = append(h.committedInBuffer, commit...)
	return commit
}

// popCommitted forgets committed words that end at or before t.
func (h *hypothesisBuffer) popCommitted(t float64) {
	i := 0
	for i < len(h.committedInBuffer) && h.committedInBuffer[i].End <= t {
		i++
	}
	h.committedInBuffer = h.committedInBuffer[i:]
}

// complete returns the uncommitted tail of the last hypothesis.
func (h *hypothesisBuffer) complete() []transcription.Word {
	return append([]transcription.Word(nil), h.buffer...)
}

func sameText(a, b []transcription.Word) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if normalize(a[i].Text) != normalize(b[i].Text) {
			return false
		}
	}
	return true
}

func normalize(text string) string {
	return strings.TrimSpace(text)
}
