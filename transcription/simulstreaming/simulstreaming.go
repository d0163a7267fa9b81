// Package simulstreaming provides the SimulStreaming backend, which decodes
// incrementally on its own sidecar and drives the native session processor.
//
// The backend is optional. Register only installs it in binaries built with
// -tags simulstreaming; otherwise the kind is marked unavailable and engine
// construction fails with BACKEND_UNAVAILABLE carrying Remediation.
package simulstreaming

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/kbukum/whisperkit/audio"
	"github.com/kbukum/whisperkit/httpclient"
	"github.com/kbukum/whisperkit/logger"
	"github.com/kbukum/whisperkit/transcription"
)

// Remediation tells operators how to enable the backend.
const Remediation = "SimulStreaming is not compiled into this binary. Rebuild with " +
	"`go build -tags simulstreaming ./cmd/whisperkit` and run the SimulStreaming sidecar " +
	"(simulstreaming_url, default http://localhost:8390)."

const (
	defaultURL     = "http://localhost:8390"
	defaultTimeout = 120 * time.Second
)

// Config holds configuration for the SimulStreaming backend.
type Config struct {
	URL      string
	Model    string
	Language string
	CacheDir string
	ModelDir string
	Task     string
	Tuning   transcription.SimulOptions
	Timeout  time.Duration
}

// Backend implements transcription.Backend, transcription.Warmer and
// transcription.Streamer against the SimulStreaming sidecar.
type Backend struct {
	transcription.Base

	cfg       Config
	client    *httpclient.Client
	vad       atomic.Bool
	translate atomic.Bool
	log       *logger.Logger
}

// Register installs the backend when it is part of the build and marks it
// unavailable otherwise.
func Register(reg *transcription.Registry) {
	if !Available {
		reg.MarkUnavailable(string(transcription.KindSimulStreaming), Remediation)
		return
	}
	reg.RegisterFactory(string(transcription.KindSimulStreaming), Factory())
}

// Factory returns a transcription.Factory for the simulstreaming kind.
func Factory() transcription.Factory {
	return func(ctx context.Context, opts transcription.Options) (transcription.Backend, error) {
		return New(ctx, Config{
			URL:      opts.BaseURL,
			Model:    opts.Model,
			Language: opts.Language,
			CacheDir: opts.CacheDir,
			ModelDir: opts.ModelDir,
			Task:     opts.Task,
			Tuning:   opts.Simul,
			Timeout:  opts.Timeout,
		}, opts.LoggerOrDefault(transcription.KindSimulStreaming))
	}
}

// New loads the model on the sidecar.
func New(ctx context.Context, cfg Config, log *logger.Logger) (*Backend, error) {
	if cfg.URL == "" {
		cfg.URL = defaultURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Task == "" {
		cfg.Task = "transcribe"
	}
	if log == nil {
		log = logger.WithComponent(string(transcription.KindSimulStreaming))
	}
	client, err := httpclient.New(httpclient.Config{
		Name:    string(transcription.KindSimulStreaming),
		BaseURL: cfg.URL,
		Timeout: cfg.Timeout,
		Retry:   httpclient.DefaultRetryConfig(),
		Logger:  log,
	})
	if err != nil {
		return nil, err
	}

	b := &Backend{cfg: cfg, client: client, log: log}
	log.Info(fmt.Sprintf("Loading SimulStreaming %s model for language %s...", cfg.Model, cfg.Language))
	req := loadRequest{
		Model:        cfg.Model,
		Language:     cfg.Language,
		CacheDir:     cfg.CacheDir,
		ModelDir:     cfg.ModelDir,
		Task:         cfg.Task,
		SimulOptions: cfg.Tuning,
	}
	if err := client.PostJSON(ctx, "/load", req, nil); err != nil {
		return nil, httpclient.ToAppError("simulstreaming model load", err)
	}
	return b, nil
}

func (b *Backend) Name() string { return string(transcription.KindSimulStreaming) }

func (b *Backend) Kind() transcription.Kind { return transcription.KindSimulStreaming }

// IsAvailable checks if the sidecar is reachable.
func (b *Backend) IsAvailable(ctx context.Context) bool {
	return b.client.Ping(ctx, "/health")
}

func (b *Backend) UseVoiceActivityDetection() { b.vad.Store(true) }

// SetTranslateTask is accepted for interface parity; the task is fixed at load.
func (b *Backend) SetTranslateTask() { b.translate.Store(true) }

// Transcribe decodes a complete buffer in one call.
func (b *Backend) Transcribe(ctx context.Context, samples []float32, prompt string) (*transcription.Result, error) {
	var resp transcribeResponse
	fields := map[string]string{"vad": strconv.FormatBool(b.vad.Load())}
	if prompt != "" {
		fields["prompt"] = prompt
	}
	if err := b.upload(ctx, "/transcribe", samples, fields, &resp); err != nil {
		return nil, err
	}
	return &transcription.Result{
		Text:     resp.Text,
		Language: resp.Language,
		Segments: []transcription.Segment{{Start: 0, End: audio.Duration(samples, audio.SampleRate), Text: resp.Text, Words: toWords(resp.Words)}},
	}, nil
}

// Warmup primes the sidecar's decoder.
func (b *Backend) Warmup(ctx context.Context, samples []float32) error {
	return b.upload(ctx, "/warmup", samples, nil, nil)
}

// NewStream opens an incremental decoding session on the sidecar. The
// commit settings in opts are applied by the sidecar's own buffer.
func (b *Backend) NewStream(ctx context.Context, opts transcription.StreamOptions) (transcription.Stream, error) {
	var resp streamResponse
	req := streamRequest{VAD: b.vad.Load(), StreamOptions: opts}
	if err := b.client.PostJSON(ctx, "/streams", req, &resp); err != nil {
		return nil, httpclient.ToAppError("simulstreaming", err)
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("simulstreaming: sidecar returned no stream id")
	}
	return &stream{backend: b, id: resp.ID}, nil
}

func (b *Backend) upload(ctx context.Context, path string, samples []float32, fields map[string]string, out any) error {
	wav, err := audio.EncodeWAV(samples, audio.SampleRate)
	if err != nil {
		return err
	}
	resp, err := b.client.Do(ctx, httpclient.Request{
		Method: "POST",
		Path:   path,
		Body:   httpclient.WAVUpload(fields, wav),
	})
	if err != nil {
		return httpclient.ToAppError("simulstreaming", err)
	}
	if out == nil {
		return nil
	}
	if err := resp.DecodeJSON(out); err != nil {
		return fmt.Errorf("decode simulstreaming response: %w", err)
	}
	return nil
}

type stream struct {
	backend *Backend
	id      string
}

func (s *stream) Push(ctx context.Context, samples []float32) ([]transcription.Word, error) {
	var resp wordsResponse
	if err := s.backend.upload(ctx, "/streams/"+s.id+"/audio", samples, nil, &resp); err != nil {
		return nil, err
	}
	return toWords(resp.Words), nil
}

func (s *stream) Close(ctx context.Context) ([]transcription.Word, error) {
	var resp wordsResponse
	if err := s.backend.client.PostJSON(ctx, "/streams/"+s.id+"/close", struct{}{}, &resp); err != nil {
		return nil, httpclient.ToAppError("simulstreaming", err)
	}
	return toWords(resp.Words), nil
}

// --- internal sidecar API types ---

type loadRequest struct {
	Model    string `json:"model"`
	Language string `json:"language"`
	CacheDir string `json:"cache_dir,omitempty"`
	ModelDir string `json:"model_dir,omitempty"`
	Task     string `json:"task"`
	transcription.SimulOptions
}

type streamRequest struct {
	VAD bool `json:"vad"`
	transcription.StreamOptions
}

type streamResponse struct {
	ID string `json:"id"`
}

type wireWord struct {
	Word        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability"`
}

type wordsResponse struct {
	Words []wireWord `json:"words"`
}

type transcribeResponse struct {
	Text     string     `json:"text"`
	Language string     `json:"language"`
	Words    []wireWord `json:"words"`
}

func toWords(in []wireWord) []transcription.Word {
	out := make([]transcription.Word, len(in))
	for i, w := range in {
		out[i] = transcription.Word{Start: w.Start, End: w.End, Text: w.Word, Probability: w.Probability}
	}
	return out
}
