package engine

import (
	"context"
	"runtime"
	"runtime/debug"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/whisperkit/config"
	"github.com/kbukum/whisperkit/diarization"
	"github.com/kbukum/whisperkit/errors"
	"github.com/kbukum/whisperkit/logger"
	"github.com/kbukum/whisperkit/observability"
	"github.com/kbukum/whisperkit/session"
	"github.com/kbukum/whisperkit/tokenizer"
	"github.com/kbukum/whisperkit/transcription"
	"github.com/kbukum/whisperkit/warmup"
)

// Engine holds the shared, read-mostly state every session uses.
type Engine struct {
	cfg       config.Config
	backend   transcription.Backend
	tokenizer tokenizer.Tokenizer
	diarizer  diarization.Provider
	warmedUp  bool

	sessions *session.Factory
	metrics  *observability.Metrics
	log      *logger.Logger
}

// Info summarizes an engine for status endpoints.
type Info struct {
	Transcription  bool   `json:"transcription"`
	Backend        string `json:"backend,omitempty"`
	Model          string `json:"model,omitempty"`
	Language       string `json:"language"`
	TargetLanguage string `json:"target_language"`
	Task           string `json:"task"`
	Tokenizer      string `json:"tokenizer,omitempty"`
	Session        string `json:"session_variant,omitempty"`
	WarmedUp       bool   `json:"warmed_up"`
	Diarization    bool   `json:"diarization"`
}

// New builds an engine from a resolved configuration. With transcription
// enabled it loads the backend and tokenizer and warms the backend up;
// with diarization enabled it creates the diarizer. Warmup failures are
// logged and never fail construction.
func New(ctx context.Context, cfg config.Config, deps Deps) (*Engine, error) {
	deps = deps.withDefaults()
	e := &Engine{
		cfg:      cfg,
		sessions: session.NewFactory(deps.Logger.WithComponent("session"), deps.Metrics),
		metrics:  deps.Metrics,
		log:      deps.Logger,
	}

	if cfg.Transcription {
		backend, tok, err := Build(ctx, cfg, deps)
		if err != nil {
			return nil, err
		}
		e.backend, e.tokenizer = backend, tok
		e.warmedUp = e.warmup(ctx, deps)
	}

	if cfg.Diarization {
		d, err := deps.Diarizers.Create(ctx, DefaultDiarizer, diarization.Options{
			URL:               cfg.DiarizationURL,
			SegmentationModel: cfg.SegmentationModel,
			EmbeddingModel:    cfg.EmbeddingModel,
			BlockDuration:     cfg.MinChunkSize,
			Logger:            deps.Logger.WithComponent("diarization"),
		})
		if err != nil {
			e.releaseBackend()
			return nil, errors.BackendConstruction(DefaultDiarizer, err)
		}
		e.diarizer = d
	}
	return e, nil
}

func (e *Engine) warmup(ctx context.Context, deps Deps) bool {
	kind := string(e.backend.Kind())
	if e.cfg.WarmupFile != nil && *e.cfg.WarmupFile == "" {
		e.metrics.RecordWarmup(ctx, kind, "skipped")
		return false
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanEngineWarmup)
	defer span.End()
	span.SetAttributes(attribute.String(observability.AttrBackend, kind))

	assets := deps.Assets
	if assets == nil {
		assets = warmup.Default(e.cfg.WarmupTimeout)
	}
	ok := warmup.NewRunner(assets, e.log.WithComponent("warmup")).Run(ctx, e.backend, e.cfg.WarmupFile)
	result := "ok"
	if !ok {
		result = "failed"
	}
	e.metrics.RecordWarmup(ctx, kind, result)
	span.SetAttributes(attribute.String(observability.AttrStatus, result))
	return ok
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() config.Config { return e.cfg }

// Backend returns the shared backend, or nil when transcription is off.
func (e *Engine) Backend() transcription.Backend { return e.backend }

// Tokenizer returns the sentence tokenizer, or nil unless sentence
// trimming is configured.
func (e *Engine) Tokenizer() tokenizer.Tokenizer { return e.tokenizer }

// Diarizer returns the diarizer, or nil when diarization is off.
func (e *Engine) Diarizer() diarization.Provider { return e.diarizer }

// WarmedUp reports whether the warmup inference succeeded.
func (e *Engine) WarmedUp() bool { return e.warmedUp }

// TargetLanguage returns the language of the produced transcript.
func (e *Engine) TargetLanguage() string { return TargetLanguage(e.cfg) }

// NewSession creates an independent processor bound to the engine's backend
// and tokenizer.
func (e *Engine) NewSession(ctx context.Context, sink session.Sink) (session.Processor, error) {
	_, span := observability.StartSpan(ctx, observability.SpanSessionCreate)
	defer span.End()

	p, err := e.sessions.Create(e.cfg, e.backend, e.tokenizer, sink)
	if err != nil {
		span.RecordError(err)
		if appErr, ok := errors.AsAppError(err); ok {
			e.metrics.RecordError(ctx, string(appErr.Code), "session")
		}
		return nil, err
	}
	span.SetAttributes(attribute.String(observability.AttrSessionID, p.ID()))
	return p, nil
}

// Info returns a summary of the engine.
func (e *Engine) Info() Info {
	info := Info{
		Transcription:  e.backend != nil,
		Language:       e.cfg.Lan,
		TargetLanguage: e.TargetLanguage(),
		Task:           e.cfg.Task,
		WarmedUp:       e.warmedUp,
		Diarization:    e.diarizer != nil,
	}
	if e.backend != nil {
		info.Backend = string(e.backend.Kind())
		info.Model = e.cfg.Model
		info.Session = string(session.SelectVariant(e.cfg))
	}
	if e.tokenizer != nil {
		info.Tokenizer = string(e.tokenizer.Kind())
	}
	return info
}

// Free is a best-effort hint to give back backend memory. The engine stays
// initialized; a released backend reloads its model on the next inference.
func (e *Engine) Free() {
	e.releaseBackend()
	runtime.GC()
	debug.FreeOSMemory()
	e.log.Debug("engine resources freed")
}

func (e *Engine) releaseBackend() {
	if e.backend != nil {
		release(e.backend, e.log)
	}
}
