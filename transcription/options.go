package transcription

import (
	"time"

	"github.com/kbukum/whisperkit/logger"
)

// Options are the construction parameters shared by all variants.
type Options struct {
	Model       string
	Language    string
	CacheDir    string
	ModelDir    string
	Device      string
	ComputeType string
	Task        string

	// BaseURL is the sidecar or API endpoint.
	BaseURL string
	// APIKey is used by the openai-api variant.
	APIKey  string
	Timeout time.Duration

	Simul  SimulOptions
	Logger *logger.Logger
}

// SimulOptions is the allow-list of SimulStreaming tuning fields.
type SimulOptions struct {
	FrameThreshold   int     `json:"frame_threshold"`
	Beams            int     `json:"beams"`
	DecoderType      *string `json:"decoder_type"`
	AudioMaxLen      float64 `json:"audio_max_len"`
	AudioMinLen      float64 `json:"audio_min_len"`
	CIFCkptPath      *string `json:"cif_ckpt_path"`
	NeverFire        bool    `json:"never_fire"`
	InitPrompt       *string `json:"init_prompt"`
	StaticInitPrompt *string `json:"static_init_prompt"`
	MaxContextTokens *int    `json:"max_context_tokens"`
	ModelPath        string  `json:"model_path"`
	SegmentLength    float64 `json:"segment_length"`
}

// LoggerOrDefault returns o.Logger or a component logger named after kind.
func (o Options) LoggerOrDefault(kind Kind) *logger.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logger.WithComponent(string(kind))
}
