// Package openai provides the openai-api backend on the OpenAI audio API.
package openai

import (
	"bytes"
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/kbukum/whisperkit/audio"
	"github.com/kbukum/whisperkit/errors"
	"github.com/kbukum/whisperkit/logger"
	"github.com/kbukum/whisperkit/transcription"
)

// noSpeechThreshold drops segments the API marks as probable silence when VAD is on.
const noSpeechThreshold = 0.8

// Config holds configuration for the OpenAI backend.
type Config struct {
	// APIKey falls back to OPENAI_API_KEY when empty.
	APIKey   string
	BaseURL  string
	Model    string
	Language string
	Timeout  time.Duration
	// MaxRetries is passed to the SDK; negative keeps the SDK default.
	MaxRetries int
}

// Backend implements transcription.Backend with remote inference.
// It never provisions a local model.
type Backend struct {
	transcription.Base

	client    openai.Client
	cfg       Config
	vad       atomic.Bool
	translate atomic.Bool
	log       *logger.Logger
}

// New creates an OpenAI backend. It performs no network I/O.
func New(cfg Config, log *logger.Logger) *Backend {
	if cfg.Model == "" {
		cfg.Model = string(openai.AudioModelWhisper1)
	}
	if log == nil {
		log = logger.WithComponent(string(transcription.KindOpenAI))
	}

	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.MaxRetries >= 0 {
		opts = append(opts, option.WithMaxRetries(cfg.MaxRetries))
	}

	log.Debug("Using OpenAI API.")
	return &Backend{client: openai.NewClient(opts...), cfg: cfg, log: log}
}

// Factory returns a transcription.Factory for the openai-api kind.
func Factory() transcription.Factory {
	return func(_ context.Context, opts transcription.Options) (transcription.Backend, error) {
		return New(Config{
			APIKey:     opts.APIKey,
			BaseURL:    opts.BaseURL,
			Language:   opts.Language,
			Timeout:    opts.Timeout,
			MaxRetries: -1,
		}, opts.LoggerOrDefault(transcription.KindOpenAI)), nil
	}
}

// Register adds the openai-api kind to reg.
func Register(reg *transcription.Registry) {
	reg.RegisterFactory(string(transcription.KindOpenAI), Factory())
}

func (b *Backend) Name() string { return string(transcription.KindOpenAI) }

func (b *Backend) Kind() transcription.Kind { return transcription.KindOpenAI }

// IsAvailable reports true; reachability is only known per request.
func (b *Backend) IsAvailable(context.Context) bool { return true }

// Reentrant reports that concurrent requests are safe.
func (b *Backend) Reentrant() bool { return true }

func (b *Backend) UseVoiceActivityDetection() { b.vad.Store(true) }

func (b *Backend) SetTranslateTask() { b.translate.Store(true) }

// Transcribe uploads samples to the transcription or translation endpoint.
func (b *Backend) Transcribe(ctx context.Context, samples []float32, prompt string) (*transcription.Result, error) {
	wav, err := audio.EncodeWAV(samples, audio.SampleRate)
	if err != nil {
		return nil, err
	}
	if b.translate.Load() {
		return b.translateAudio(ctx, wav, prompt, audio.Duration(samples, audio.SampleRate))
	}

	params := openai.AudioTranscriptionNewParams{
		File:                   openai.File(bytes.NewReader(wav), "audio.wav", "audio/wav"),
		Model:                  openai.AudioModel(b.cfg.Model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"segment", "word"},
	}
	if b.cfg.Language != "" && b.cfg.Language != "auto" {
		params.Language = openai.String(b.cfg.Language)
	}
	if prompt != "" {
		params.Prompt = openai.String(prompt)
	}

	resp, err := b.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, errors.ExternalServiceError("openai transcription", err)
	}
	return b.toResult(resp.AsTranscriptionVerbose()), nil
}

func (b *Backend) translateAudio(ctx context.Context, wav []byte, prompt string, duration float64) (*transcription.Result, error) {
	params := openai.AudioTranslationNewParams{
		File:  openai.File(bytes.NewReader(wav), "audio.wav", "audio/wav"),
		Model: openai.AudioModel(b.cfg.Model),
	}
	if prompt != "" {
		params.Prompt = openai.String(prompt)
	}
	resp, err := b.client.Audio.Translations.New(ctx, params)
	if err != nil {
		return nil, errors.ExternalServiceError("openai translation", err)
	}
	return &transcription.Result{
		Text:     resp.Text,
		Language: "en",
		Segments: []transcription.Segment{{Start: 0, End: duration, Text: resp.Text}},
	}, nil
}

func (b *Backend) toResult(v openai.TranscriptionVerbose) *transcription.Result {
	res := &transcription.Result{Text: v.Text, Language: v.Language}
	for _, seg := range v.Segments {
		if b.vad.Load() && seg.NoSpeechProb > noSpeechThreshold {
			continue
		}
		s := transcription.Segment{Start: seg.Start, End: seg.End, Text: seg.Text, NoSpeechProb: seg.NoSpeechProb}
		for _, w := range v.Words {
			if w.Start >= seg.Start && w.Start < seg.End {
				s.Words = append(s.Words, transcription.Word{Start: w.Start, End: w.End, Text: " " + w.Word})
			}
		}
		res.Segments = append(res.Segments, s)
	}
	if len(v.Segments) == 0 && v.Text != "" {
		b.log.Debug(fmt.Sprintf("no segments in response for %q", v.Text))
	}
	return res
}
