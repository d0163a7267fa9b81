package config

import (
	"net"
	"slices"
	"strconv"
	"time"
)

// Option keys that are accepted as input but never stored.
const (
	AliasNoTranscription = "no_transcription"
	AliasNoVAD           = "no_vad"
	AliasLanguage        = "language"
)

// Task values.
const (
	TaskTranscribe = "transcribe"
	TaskTranslate  = "translate"
)

// Buffer trimming modes.
const (
	TrimSegment  = "segment"
	TrimSentence = "sentence"
)

// Config is the resolved engine configuration. Values are produced by
// Resolve and must be treated as read-only; nil pointer fields are unset.
type Config struct {
	Host             string  `mapstructure:"host" yaml:"host" validate:"required"`
	Port             int     `mapstructure:"port" yaml:"port" validate:"min=0,max=65535"`
	WarmupFile       *string `mapstructure:"warmup_file" yaml:"warmup_file"`
	Diarization      bool    `mapstructure:"diarization" yaml:"diarization"`
	PunctuationSplit bool    `mapstructure:"punctuation_split" yaml:"punctuation_split"`
	MinChunkSize     float64 `mapstructure:"min_chunk_size" yaml:"min_chunk_size" validate:"gt=0"`
	Model            string  `mapstructure:"model" yaml:"model" validate:"required"`
	ModelCacheDir    *string `mapstructure:"model_cache_dir" yaml:"model_cache_dir"`
	ModelDir         *string `mapstructure:"model_dir" yaml:"model_dir"`
	Lan              string  `mapstructure:"lan" yaml:"lan" validate:"required"`
	Task             string  `mapstructure:"task" yaml:"task" validate:"oneof=transcribe translate"`
	Backend          string  `mapstructure:"backend" yaml:"backend" validate:"required"`
	VAC              bool    `mapstructure:"vac" yaml:"vac"`
	VACChunkSize     float64 `mapstructure:"vac_chunk_size" yaml:"vac_chunk_size" validate:"gt=0"`
	LogLevel         string  `mapstructure:"log_level" yaml:"log_level"`
	SSLCertFile      *string `mapstructure:"ssl_certfile" yaml:"ssl_certfile"`
	SSLKeyFile       *string `mapstructure:"ssl_keyfile" yaml:"ssl_keyfile"`
	Transcription    bool    `mapstructure:"transcription" yaml:"transcription"`
	VAD              bool    `mapstructure:"vad" yaml:"vad"`
	Device           string  `mapstructure:"device" yaml:"device"`
	ComputeType      string  `mapstructure:"compute_type" yaml:"compute_type"`

	BufferTrimming       string  `mapstructure:"buffer_trimming" yaml:"buffer_trimming" validate:"oneof=segment sentence"`
	ConfidenceValidation bool    `mapstructure:"confidence_validation" yaml:"confidence_validation"`
	BufferTrimmingSec    float64 `mapstructure:"buffer_trimming_sec" yaml:"buffer_trimming_sec" validate:"gt=0"`

	// SimulStreaming tuning.
	FrameThreshold   int     `mapstructure:"frame_threshold" yaml:"frame_threshold" validate:"min=0"`
	Beams            int     `mapstructure:"beams" yaml:"beams" validate:"min=1"`
	DecoderType      *string `mapstructure:"decoder_type" yaml:"decoder_type"`
	AudioMaxLen      float64 `mapstructure:"audio_max_len" yaml:"audio_max_len" validate:"gt=0"`
	AudioMinLen      float64 `mapstructure:"audio_min_len" yaml:"audio_min_len" validate:"gte=0"`
	CIFCkptPath      *string `mapstructure:"cif_ckpt_path" yaml:"cif_ckpt_path"`
	NeverFire        bool    `mapstructure:"never_fire" yaml:"never_fire"`
	InitPrompt       *string `mapstructure:"init_prompt" yaml:"init_prompt"`
	StaticInitPrompt *string `mapstructure:"static_init_prompt" yaml:"static_init_prompt"`
	MaxContextTokens *int    `mapstructure:"max_context_tokens" yaml:"max_context_tokens"`
	ModelPath        string  `mapstructure:"model_path" yaml:"model_path"`

	// Diarization models.
	SegmentationModel string `mapstructure:"segmentation_model" yaml:"segmentation_model"`
	EmbeddingModel    string `mapstructure:"embedding_model" yaml:"embedding_model"`

	// Sidecar endpoints and limits.
	InferenceURL      string        `mapstructure:"inference_url" yaml:"inference_url" validate:"url"`
	SplitterURL       string        `mapstructure:"splitter_url" yaml:"splitter_url" validate:"url"`
	DiarizationURL    string        `mapstructure:"diarization_url" yaml:"diarization_url" validate:"url"`
	SimulStreamingURL string        `mapstructure:"simulstreaming_url" yaml:"simulstreaming_url" validate:"url"`
	OpenAIAPIKey      *string       `mapstructure:"openai_api_key" yaml:"-"`
	WarmupTimeout     time.Duration `mapstructure:"warmup_timeout" yaml:"warmup_timeout" validate:"gt=0"`
	InferenceMaxWait  time.Duration `mapstructure:"inference_max_wait" yaml:"inference_max_wait" validate:"gte=0"`

	extra map[string]any
}

// Defaults returns a fresh copy of the default option table.
func Defaults() map[string]any {
	return map[string]any{
		"host":                  "localhost",
		"port":                  8000,
		"warmup_file":           nil,
		"diarization":           false,
		"punctuation_split":     false,
		"min_chunk_size":        0.5,
		"model":                 "tiny",
		"model_cache_dir":       nil,
		"model_dir":             nil,
		"lan":                   "auto",
		"task":                  TaskTranscribe,
		"backend":               "faster-whisper",
		"vac":                   false,
		"vac_chunk_size":        0.04,
		"log_level":             "DEBUG",
		"ssl_certfile":          nil,
		"ssl_keyfile":           nil,
		"transcription":         true,
		"vad":                   true,
		"device":                "auto",
		"compute_type":          "auto",
		"buffer_trimming":       TrimSegment,
		"confidence_validation": false,
		"buffer_trimming_sec":   15.0,
		"frame_threshold":       25,
		"beams":                 1,
		"decoder_type":          nil,
		"audio_max_len":         30.0,
		"audio_min_len":         0.0,
		"cif_ckpt_path":         nil,
		"never_fire":            false,
		"init_prompt":           nil,
		"static_init_prompt":    nil,
		"max_context_tokens":    nil,
		"model_path":            "./base.pt",
		"segmentation_model":    "pyannote/segmentation-3.0",
		"embedding_model":       "pyannote/embedding",
		"inference_url":         "http://localhost:8387",
		"splitter_url":          "http://localhost:8389",
		"diarization_url":       "http://localhost:8388",
		"simulstreaming_url":    "http://localhost:8390",
		"openai_api_key":        nil,
		"warmup_timeout":        "5s",
		"inference_max_wait":    "0s",
	}
}

// Extra returns a pass-through option that has no typed field.
func (c Config) Extra(key string) (any, bool) {
	v, ok := c.extra[key]
	return v, ok
}

// ExtraKeys returns the sorted names of pass-through options.
func (c Config) ExtraKeys() []string {
	keys := make([]string, 0, len(c.extra))
	for k := range c.extra {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Translate reports whether the task is translation.
func (c Config) Translate() bool {
	return c.Task == TaskTranslate
}

// SentenceTrimming reports whether buffers are trimmed on sentence boundaries.
func (c Config) SentenceTrimming() bool {
	return c.BufferTrimming == TrimSentence
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// TLS reports whether both certificate and key are configured.
func (c Config) TLS() bool {
	return c.SSLCertFile != nil && c.SSLKeyFile != nil
}

// StringOr dereferences p, returning def when it is nil.
func StringOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}
