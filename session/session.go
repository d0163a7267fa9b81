package session

import (
	"context"
	"strings"

	"github.com/kbukum/whisperkit/transcription"
)

// Variant identifies a processor implementation.
type Variant string

const (
	VariantStandard Variant = "standard"
	VariantVAC      Variant = "vac"
	VariantNative   Variant = "native"
)

func (v Variant) String() string { return string(v) }

// Processor consumes a stream of 16 kHz mono samples and emits committed
// transcript fragments to its sink.
type Processor interface {
	ID() string
	Variant() Variant
	// InsertAudio appends samples to the pending buffer.
	InsertAudio(samples []float32)
	// Process runs one inference step over the buffered audio.
	Process(ctx context.Context) error
	// Finish flushes everything still uncommitted. The processor must not
	// be used afterwards.
	Finish(ctx context.Context) error
}

// Trimming controls when the standard processor drops committed audio.
type Trimming struct {
	// Mode is "segment" or "sentence".
	Mode string
	// Seconds is the buffer length that triggers trimming.
	Seconds float64
}

// Options are the per-session settings taken from the engine config.
type Options struct {
	Trimming             Trimming
	ConfidenceValidation bool
	// MinChunkSize is the audio length in seconds between inference steps
	// for the vac and native variants.
	MinChunkSize float64
	// VACChunkSize is the voice activity frame length in seconds.
	VACChunkSize float64
}

// Transcript is a committed fragment. Times are seconds from stream start.
type Transcript struct {
	SessionID string               `json:"session_id"`
	Variant   Variant              `json:"variant"`
	Start     float64              `json:"start"`
	End       float64              `json:"end"`
	Text      string               `json:"text"`
	Words     []transcription.Word `json:"words"`
	// Final marks a fragment flushed at the end of an utterance or stream.
	Final bool `json:"final"`
}

func newTranscript(id string, variant Variant, words []transcription.Word, final bool) (Transcript, bool) {
	if len(words) == 0 {
		return Transcript{}, false
	}
	var sb strings.Builder
	for _, w := range words {
		sb.WriteString(w.Text)
	}
	return Transcript{
		SessionID: id,
		Variant:   variant,
		Start:     words[0].Start,
		End:       words[len(words)-1].End,
		Text:      sb.String(),
		Words:     words,
		Final:     final,
	}, true
}
