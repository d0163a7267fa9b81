// Package whisper provides the local Whisper backends (faster-whisper,
// mlx-whisper and whisper-timestamped) through the inference sidecar.
package whisper

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kbukum/whisperkit/audio"
	"github.com/kbukum/whisperkit/httpclient"
	"github.com/kbukum/whisperkit/logger"
	"github.com/kbukum/whisperkit/transcription"
)

const (
	defaultWhisperURL     = "http://localhost:8387"
	defaultWhisperModel   = "tiny"
	defaultWhisperTimeout = 120 * time.Second
)

// Config holds configuration for a local Whisper backend.
type Config struct {
	URL         string        `json:"url" yaml:"url"`
	Model       string        `json:"model" yaml:"model"`
	Language    string        `json:"language,omitempty" yaml:"language"`
	CacheDir    string        `json:"cache_dir,omitempty" yaml:"cache_dir"`
	ModelDir    string        `json:"model_dir,omitempty" yaml:"model_dir"`
	Device      string        `json:"device,omitempty" yaml:"device"`
	ComputeType string        `json:"compute_type,omitempty" yaml:"compute_type"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`
}

// Backend implements transcription.Backend on the inference sidecar.
type Backend struct {
	transcription.Base

	kind      transcription.Kind
	cfg       Config
	client    *httpclient.Client
	vad       atomic.Bool
	translate atomic.Bool
	log       *logger.Logger

	loadMu   sync.Mutex
	released bool
}

// New asks the sidecar to load the model and returns a backend bound to it.
// kind must be one of the local variants.
func New(ctx context.Context, kind transcription.Kind, cfg Config, log *logger.Logger) (*Backend, error) {
	if !kind.Local() {
		return nil, fmt.Errorf("whisper: %s is not a local backend", kind)
	}
	if cfg.URL == "" {
		cfg.URL = defaultWhisperURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultWhisperModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultWhisperTimeout
	}
	if log == nil {
		log = logger.WithComponent(string(kind))
	}

	client, err := httpclient.New(httpclient.Config{
		Name:    string(kind),
		BaseURL: cfg.URL,
		Timeout: cfg.Timeout,
		Retry:   httpclient.DefaultRetryConfig(),
		Logger:  log,
	})
	if err != nil {
		return nil, err
	}

	b := &Backend{kind: kind, cfg: cfg, client: client, log: log}
	if err := b.load(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

// Factory returns a transcription.Factory for one local variant.
func Factory(kind transcription.Kind) transcription.Factory {
	return func(ctx context.Context, opts transcription.Options) (transcription.Backend, error) {
		return New(ctx, kind, Config{
			URL:         opts.BaseURL,
			Model:       opts.Model,
			Language:    opts.Language,
			CacheDir:    opts.CacheDir,
			ModelDir:    opts.ModelDir,
			Device:      opts.Device,
			ComputeType: opts.ComputeType,
			Timeout:     opts.Timeout,
		}, opts.LoggerOrDefault(kind))
	}
}

// Register adds the three local variants to reg.
func Register(reg *transcription.Registry) {
	for _, kind := range []transcription.Kind{
		transcription.KindFasterWhisper,
		transcription.KindMLXWhisper,
		transcription.KindWhisperTimestamped,
	} {
		reg.RegisterFactory(string(kind), Factory(kind))
	}
}

func (b *Backend) Name() string { return string(b.kind) }

func (b *Backend) Kind() transcription.Kind { return b.kind }

// IsAvailable checks if the sidecar is reachable.
func (b *Backend) IsAvailable(ctx context.Context) bool {
	return b.client.Ping(ctx, "/health")
}

func (b *Backend) UseVoiceActivityDetection() { b.vad.Store(true) }

func (b *Backend) SetTranslateTask() { b.translate.Store(true) }

// Config returns the backend configuration.
func (b *Backend) Config() Config { return b.cfg }

// Transcribe uploads samples as WAV and returns the sidecar's segments.
// A model unloaded by Release is loaded again first.
func (b *Backend) Transcribe(ctx context.Context, samples []float32, prompt string) (*transcription.Result, error) {
	if err := b.reload(ctx); err != nil {
		return nil, err
	}
	wav, err := audio.EncodeWAV(samples, audio.SampleRate)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{
		"variant":         string(b.kind),
		"model":           b.cfg.Model,
		"task":            b.task(),
		"vad":             strconv.FormatBool(b.vad.Load()),
		"word_timestamps": "true",
	}
	if lang := b.language(); lang != "" {
		fields["language"] = lang
	}
	if prompt != "" {
		fields["prompt"] = prompt
	}

	resp, err := b.client.Do(ctx, httpclient.Request{
		Method: "POST",
		Path:   "/transcribe",
		Body:   httpclient.WAVUpload(fields, wav),
	})
	if err != nil {
		return nil, httpclient.ToAppError(string(b.kind)+" inference", err)
	}

	var result whisperResponse
	if err := resp.DecodeJSON(&result); err != nil {
		return nil, fmt.Errorf("decode whisper response: %w", err)
	}
	return toResult(&result), nil
}

// Release asks the sidecar to unload the model. The next Transcribe loads
// it again. Errors are logged and leave the model marked as loaded.
func (b *Backend) Release() error {
	b.loadMu.Lock()
	defer b.loadMu.Unlock()
	if b.released {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := b.client.PostJSON(ctx, "/unload", map[string]string{"variant": string(b.kind), "model": b.cfg.Model}, nil); err != nil {
		b.log.Warn("failed to unload model", logger.ErrorFields("unload", err))
		return err
	}
	b.released = true
	return nil
}

func (b *Backend) reload(ctx context.Context) error {
	b.loadMu.Lock()
	defer b.loadMu.Unlock()
	if !b.released {
		return nil
	}
	if err := b.load(ctx); err != nil {
		return err
	}
	b.released = false
	return nil
}

func (b *Backend) load(ctx context.Context) error {
	req := loadRequest{
		Variant:     string(b.kind),
		Model:       b.cfg.Model,
		Language:    b.language(),
		CacheDir:    b.cfg.CacheDir,
		ModelDir:    b.cfg.ModelDir,
		Device:      b.cfg.Device,
		ComputeType: b.cfg.ComputeType,
	}
	b.log.Info(fmt.Sprintf("Loading Whisper %s model with language=%s, device=%s and compute_type=%s...",
		b.cfg.Model, b.cfg.Language, b.cfg.Device, b.cfg.ComputeType))
	if err := b.client.PostJSON(ctx, "/load", req, nil); err != nil {
		return httpclient.ToAppError(string(b.kind)+" model load", err)
	}
	return nil
}

func (b *Backend) task() string {
	if b.translate.Load() {
		return "translate"
	}
	return "transcribe"
}

func (b *Backend) language() string {
	if b.cfg.Language == "auto" {
		return ""
	}
	return b.cfg.Language
}

// --- internal sidecar API types ---

type loadRequest struct {
	Variant     string `json:"variant"`
	Model       string `json:"model"`
	Language    string `json:"language,omitempty"`
	CacheDir    string `json:"cache_dir,omitempty"`
	ModelDir    string `json:"model_dir,omitempty"`
	Device      string `json:"device,omitempty"`
	ComputeType string `json:"compute_type,omitempty"`
}

type whisperResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
}

type whisperSegment struct {
	Text         string        `json:"text"`
	Start        float64       `json:"start"`
	End          float64       `json:"end"`
	NoSpeechProb float64       `json:"no_speech_prob"`
	Words        []whisperWord `json:"words"`
}

type whisperWord struct {
	Word        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability"`
}

func toResult(resp *whisperResponse) *transcription.Result {
	segments := make([]transcription.Segment, len(resp.Segments))
	for i, seg := range resp.Segments {
		words := make([]transcription.Word, len(seg.Words))
		for j, w := range seg.Words {
			words[j] = transcription.Word{Start: w.Start, End: w.End, Text: w.Word, Probability: w.Probability}
		}
		segments[i] = transcription.Segment{
			Start:        seg.Start,
			End:          seg.End,
			Text:         seg.Text,
			Words:        words,
			NoSpeechProb: seg.NoSpeechProb,
		}
	}
	return &transcription.Result{
		Text:     resp.Text,
		Segments: segments,
		Language: resp.Language,
	}
}
