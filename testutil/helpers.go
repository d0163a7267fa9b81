package testutil

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/kbukum/whisperkit/audio"
	"github.com/kbukum/whisperkit/component"
	"github.com/kbukum/whisperkit/transcription"
)

// THelper provides testing.T integration for component setup.
type THelper struct {
	t   *testing.T
	ctx context.Context
}

// T wraps a testing.T to provide helper methods.
func T(t *testing.T) *THelper {
	return &THelper{t: t, ctx: context.Background()}
}

// WithContext sets a custom context for the helper.
func (h *THelper) WithContext(ctx context.Context) *THelper {
	h.ctx = ctx
	return h
}

// Setup starts a component and stops it when the test ends.
func (h *THelper) Setup(c component.Component) {
	h.t.Helper()
	if err := c.Start(h.ctx); err != nil {
		h.t.Fatalf("failed to start component %s: %v", c.Name(), err)
	}
	h.t.Cleanup(func() {
		if err := c.Stop(h.ctx); err != nil {
			h.t.Errorf("failed to stop component %s: %v", c.Name(), err)
		}
	})
}

// Tone returns seconds of a 440 Hz sine at 16 kHz with the given amplitude.
func Tone(seconds, amplitude float64) []float32 {
	n := int(seconds * audio.SampleRate)
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(amplitude * math.Sin(2*math.Pi*440*float64(i)/audio.SampleRate))
	}
	return out
}

// WriteWAV writes samples as a 16 kHz WAV file in a temp dir and returns its path.
func WriteWAV(t *testing.T, samples []float32) string {
	t.Helper()
	data, err := audio.EncodeWAV(samples, audio.SampleRate)
	if err != nil {
		t.Fatalf("encode wav: %v", err)
	}
	path := filepath.Join(t.TempDir(), "sample.wav")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	return path
}

// Words builds a word sequence starting at start, each lasting 0.5s.
func Words(start float64, texts ...string) []transcription.Word {
	out := make([]transcription.Word, len(texts))
	for i, text := range texts {
		s := start + float64(i)*0.5
		out[i] = transcription.Word{Start: s, End: s + 0.5, Text: text, Probability: 0.9}
	}
	return out
}

// ResultOf wraps words into a single-segment Result.
func ResultOf(words ...transcription.Word) *transcription.Result {
	if len(words) == 0 {
		return &transcription.Result{}
	}
	text := ""
	for _, w := range words {
		text += w.Text
	}
	return &transcription.Result{
		Text: text,
		Segments: []transcription.Segment{{
			Start: words[0].Start,
			End:   words[len(words)-1].End,
			Text:  text,
			Words: words,
		}},
	}
}
