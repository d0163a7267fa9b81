package session

import (
	"testing"

	"github.com/kbukum/whisperkit/testutil"
	"github.com/kbukum/whisperkit/tokenizer"
	"github.com/kbukum/whisperkit/transcription"
)

func texts(words []transcription.Word) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = w.Text
	}
	return out
}

func equalTexts(got []transcription.Word, want ...string) bool {
	g := texts(got)
	if len(g) != len(want) {
		return false
	}
	for i := range g {
		if g[i] != want[i] {
			return false
		}
	}
	return true
}

func TestHypothesisBuffer_LocalAgreement(t *testing.T) {
	h := newHypothesisBuffer(false, 0)

	h.insert(testutil.Words(0, " Hello", " world"), 0)
	if got := h.flush(); len(got) != 0 {
		t.Fatalf("first hypothesis committed %v", texts(got))
	}

	h.insert(testutil.Words(0, " Hello", " world", " again"), 0)
	got := h.flush()
	if !equalTexts(got, " Hello", " world") {
		t.Fatalf("committed %v, want [Hello world]", texts(got))
	}
	if h.lastCommittedTime != 1.0 {
		t.Errorf("lastCommittedTime = %v, want 1.0", h.lastCommittedTime)
	}
	if tail := h.complete(); !equalTexts(tail, " again") {
		t.Errorf("complete() = %v, want [again]", texts(tail))
	}
}

func TestHypothesisBuffer_Disagreement(t *testing.T) {
	h := newHypothesisBuffer(false, 0)
	h.insert(testutil.Words(0, " I", " scream"), 0)
	h.flush()
	h.insert(testutil.Words(0, " Ice", " cream"), 0)
	if got := h.flush(); len(got) != 0 {
		t.Fatalf("committed %v on disagreement", texts(got))
	}
	if tail := h.complete(); !equalTexts(tail, " Ice", " cream") {
		t.Errorf("complete() = %v", texts(tail))
	}
}

func TestHypothesisBuffer_ConfidenceValidation(t *testing.T) {
	words := testutil.Words(0, " sure", " maybe")
	words[0].Probability = 0.99

	h := newHypothesisBuffer(true, 0)
	h.insert(words, 0)
	if got := h.flush(); !equalTexts(got, " sure") {
		t.Fatalf("committed %v, want [sure]", texts(got))
	}

	off := newHypothesisBuffer(false, 0)
	off.insert(words, 0)
	if got := off.flush(); len(got) != 0 {
		t.Fatalf("committed %v without validation", texts(got))
	}
}

func TestHypothesisBuffer_DropsRepeatedTail(t *testing.T) {
	h := newHypothesisBuffer(false, 0)
	h.insert(testutil.Words(0, " a", " b"), 0)
	h.flush()
	h.insert(testutil.Words(0, " a", " b"), 0)
	if got := h.flush(); !equalTexts(got, " a", " b") {
		t.Fatalf("committed %v", texts(got))
	}

	// The next window starts at 1.0 and repeats the last committed word.
	h.insert(testutil.Words(0, " b", " c"), 1.0)
	h.flush()
	if tail := h.complete(); !equalTexts(tail, " c") {
		t.Fatalf("complete() = %v, want [c]", texts(tail))
	}
	if tail := h.complete(); tail[0].Start != 1.5 {
		t.Errorf("shifted start = %v, want 1.5", tail[0].Start)
	}
}

func TestHypothesisBuffer_DropsWordsBeforeCommitPoint(t *testing.T) {
	h := newHypothesisBuffer(false, 2.0)
	h.insert(testutil.Words(0, " old", " new"), 1.5)
	h.flush()
	if tail := h.complete(); !equalTexts(tail, " new") {
		t.Fatalf("complete() = %v, want [new]", texts(tail))
	}
}

func TestHypothesisBuffer_PopCommitted(t *testing.T) {
	h := newHypothesisBuffer(true, 0)
	words := testutil.Words(0, " a", " b", " c")
	for i := range words {
		words[i].Probability = 1
	}
	h.insert(words, 0)
	h.flush()

	h.popCommitted(1.0)
	if !equalTexts(h.committedInBuffer, " c") {
		t.Errorf("committedInBuffer = %v, want [c]", texts(h.committedInBuffer))
	}
}

func TestWordsToSentences(t *testing.T) {
	tok := tokenizer.NewMoses("en")

	tests := []struct {
		name  string
		words []transcription.Word
		want  []sentence
	}{
		{
			name:  "two sentences",
			words: testutil.Words(0, " Hello", " world.", " How", " are", " you?"),
			want:  []sentence{{0, 1.0, "Hello world."}, {1.0, 2.5, "How are you?"}},
		},
		{
			name:  "single word sentences",
			words: testutil.Words(0, " Yes.", " Sure.", " Okay."),
			want:  []sentence{{0, 0.5, "Yes."}, {0.5, 1.0, "Sure."}, {1.0, 1.5, "Okay."}},
		},
		{
			name:  "unfinished tail",
			words: testutil.Words(0, " Done.", " Then", " more"),
			want:  []sentence{{0, 0.5, "Done."}, {0.5, 1.5, "Then more"}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := wordsToSentences(tok, tc.words)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d sentences %+v, want %d", len(got), got, len(tc.want))
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("sentence %d = %+v, want %+v", i, got[i], tc.want[i])
				}
			}
		})
	}
}
