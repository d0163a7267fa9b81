package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/whisperkit/config"
	"github.com/kbukum/whisperkit/errors"
	"github.com/kbukum/whisperkit/logger"
	"github.com/kbukum/whisperkit/observability"
	"github.com/kbukum/whisperkit/provider"
	"github.com/kbukum/whisperkit/tokenizer"
	"github.com/kbukum/whisperkit/transcription"
)

// ExtraOpenAIBaseURL is the pass-through option that points the openai-api
// backend at a compatible server.
const ExtraOpenAIBaseURL = "openai_base_url"

// TargetLanguage is the language of the produced text: "en" when a
// non-simulstreaming backend translates, otherwise the source language.
func TargetLanguage(cfg config.Config) string {
	if cfg.Translate() && transcription.ParseKind(cfg.Backend) != transcription.KindSimulStreaming {
		return "en"
	}
	return cfg.Lan
}

// BackendOptions maps cfg to the construction options of kind.
func BackendOptions(cfg config.Config, kind transcription.Kind, log *logger.Logger) transcription.Options {
	opts := transcription.Options{
		Model:       cfg.Model,
		Language:    cfg.Lan,
		CacheDir:    config.StringOr(cfg.ModelCacheDir, ""),
		ModelDir:    config.StringOr(cfg.ModelDir, ""),
		Device:      cfg.Device,
		ComputeType: cfg.ComputeType,
		Task:        cfg.Task,
		Logger:      log,
	}

	switch kind {
	case transcription.KindOpenAI:
		opts.APIKey = config.StringOr(cfg.OpenAIAPIKey, "")
		if v, ok := cfg.Extra(ExtraOpenAIBaseURL); ok {
			if url, ok := v.(string); ok {
				opts.BaseURL = url
			}
		}
	case transcription.KindSimulStreaming:
		opts.BaseURL = cfg.SimulStreamingURL
		opts.Simul = transcription.SimulOptions{
			FrameThreshold:   cfg.FrameThreshold,
			Beams:            cfg.Beams,
			DecoderType:      cfg.DecoderType,
			AudioMaxLen:      cfg.AudioMaxLen,
			AudioMinLen:      cfg.AudioMinLen,
			CIFCkptPath:      cfg.CIFCkptPath,
			NeverFire:        cfg.NeverFire,
			InitPrompt:       cfg.InitPrompt,
			StaticInitPrompt: cfg.StaticInitPrompt,
			MaxContextTokens: cfg.MaxContextTokens,
			ModelPath:        cfg.ModelPath,
			SegmentLength:    cfg.MinChunkSize,
		}
	default:
		opts.BaseURL = cfg.InferenceURL
	}
	return opts
}

// Build constructs the backend selected by cfg and the matching tokenizer.
// The returned backend serializes inference unless it is reentrant.
func Build(ctx context.Context, cfg config.Config, deps Deps) (transcription.Backend, tokenizer.Tokenizer, error) {
	deps = deps.withDefaults()
	log := deps.Logger

	kind := transcription.ParseKind(cfg.Backend)
	if string(kind) != cfg.Backend {
		log.Debug(fmt.Sprintf("unknown backend %q, using %s", cfg.Backend, kind))
	}

	ctx, op := observability.Begin(ctx, deps.Metrics, "engine", "build", observability.SpanEngineBuild,
		attribute.String(observability.AttrBackend, string(kind)))
	backend, tok, err := build(ctx, cfg, kind, deps)
	op.End(ctx, err)
	if err != nil {
		return nil, nil, err
	}
	return backend, tok, nil
}

func build(ctx context.Context, cfg config.Config, kind transcription.Kind, deps Deps) (transcription.Backend, tokenizer.Tokenizer, error) {
	log := deps.Logger

	start := time.Now()
	backend, err := deps.Backends.Create(ctx, string(kind), BackendOptions(cfg, kind, log.WithComponent(string(kind))))
	elapsed := time.Since(start)
	if err != nil {
		deps.Metrics.RecordBackendLoad(ctx, string(kind), "error", elapsed)
		var unavailable *provider.UnavailableError
		if stderrors.As(err, &unavailable) {
			return nil, nil, errors.BackendUnavailable(string(kind), unavailable.Remediation)
		}
		return nil, nil, errors.BackendConstruction(string(kind), err)
	}
	deps.Metrics.RecordBackendLoad(ctx, string(kind), "ok", elapsed)
	log.Info(fmt.Sprintf("done. It took %.2f seconds.", elapsed.Seconds()),
		logger.Fields(logger.FieldBackend, string(kind), logger.FieldModel, cfg.Model))

	if cfg.VAD {
		log.Info("Setting VAD filter")
		backend.UseVoiceActivityDetection()
	}
	if cfg.Translate() && kind != transcription.KindSimulStreaming {
		backend.SetTranslateTask()
	}

	target := TargetLanguage(cfg)
	tok, err := tokenizer.Select(target, cfg.BufferTrimming, tokenizer.Options{
		SplitterURL: cfg.SplitterURL,
		Logger:      log.WithComponent("tokenizer"),
	})
	if err != nil {
		release(backend, log)
		return nil, nil, err
	}
	if tok != nil {
		log.Debug("sentence tokenizer selected", logger.Fields(logger.FieldLanguage, target, "tokenizer", string(tok.Kind())))
	}

	return transcription.Serialize(backend, cfg.InferenceMaxWait), tok, nil
}

func release(backend transcription.Backend, log *logger.Logger) {
	r, ok := transcription.AsReleaser(backend)
	if !ok {
		return
	}
	if err := r.Release(); err != nil {
		log.Warn("backend release failed", logger.ErrorFields("release", err))
	}
}
