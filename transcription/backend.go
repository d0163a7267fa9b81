package transcription

import (
	"context"

	"github.com/kbukum/whisperkit/provider"
)

// Kind is the closed set of backend variants.
type Kind string

const (
	KindFasterWhisper      Kind = "faster-whisper"
	KindMLXWhisper         Kind = "mlx-whisper"
	KindWhisperTimestamped Kind = "whisper-timestamped"
	KindOpenAI             Kind = "openai-api"
	KindSimulStreaming     Kind = "simulstreaming"
)

// Kinds lists every variant.
var Kinds = []Kind{KindFasterWhisper, KindMLXWhisper, KindWhisperTimestamped, KindOpenAI, KindSimulStreaming}

// ParseKind maps a backend tag to its Kind. Unrecognized tags select
// whisper-timestamped.
func ParseKind(tag string) Kind {
	switch k := Kind(tag); k {
	case KindFasterWhisper, KindMLXWhisper, KindWhisperTimestamped, KindOpenAI, KindSimulStreaming:
		return k
	default:
		return KindWhisperTimestamped
	}
}

// Local reports whether the variant runs a local model.
func (k Kind) Local() bool {
	return k == KindFasterWhisper || k == KindMLXWhisper || k == KindWhisperTimestamped
}

func (k Kind) String() string { return string(k) }

// Backend is a loaded speech-recognition model. Implementations embed Base,
// which keeps the set of implementers inside this module's variants.
type Backend interface {
	provider.Provider

	Kind() Kind
	// Transcribe runs inference on 16 kHz mono samples. prompt is prior
	// context text and may be empty.
	Transcribe(ctx context.Context, audio []float32, prompt string) (*Result, error)
	UseVoiceActivityDetection()
	SetTranslateTask()

	sealed()
}

// Base must be embedded by every Backend implementation.
type Base struct{}

func (Base) sealed() {}

// Warmer is implemented by backends with a dedicated warmup entry point.
type Warmer interface {
	Warmup(ctx context.Context, audio []float32) error
}

// Streamer is implemented by backends that decode incrementally themselves.
type Streamer interface {
	NewStream(ctx context.Context, opts StreamOptions) (Stream, error)
}

// StreamOptions carry the session's commit settings to a backend that
// manages its own audio buffer.
type StreamOptions struct {
	BufferTrimming       string  `json:"buffer_trimming,omitempty"`
	BufferTrimmingSec    float64 `json:"buffer_trimming_sec,omitempty"`
	ConfidenceValidation bool    `json:"confidence_validation"`
}

// Stream is one incremental decoding session.
type Stream interface {
	// Push feeds samples and returns newly committed words.
	Push(ctx context.Context, audio []float32) ([]Word, error)
	// Close flushes and returns the remaining words.
	Close(ctx context.Context) ([]Word, error)
}

// Releaser is implemented by backends holding resources worth freeing.
type Releaser interface {
	Release() error
}

// Reentrant is implemented by backends that accept concurrent Transcribe calls.
type Reentrant interface {
	Reentrant() bool
}
