package session

import (
	"context"

	"github.com/google/uuid"

	"github.com/kbukum/whisperkit/config"
	"github.com/kbukum/whisperkit/errors"
	"github.com/kbukum/whisperkit/logger"
	"github.com/kbukum/whisperkit/observability"
	"github.com/kbukum/whisperkit/tokenizer"
	"github.com/kbukum/whisperkit/transcription"
)

// Factory creates session processors for an engine's backend.
type Factory struct {
	log     *logger.Logger
	metrics *observability.Metrics
}

// NewFactory returns a Factory. metrics may be nil.
func NewFactory(log *logger.Logger, metrics *observability.Metrics) *Factory {
	if log == nil {
		log = logger.WithComponent("session")
	}
	return &Factory{log: log, metrics: metrics}
}

// OptionsFrom extracts the per-session settings from cfg.
func OptionsFrom(cfg config.Config) Options {
	return Options{
		Trimming:             Trimming{Mode: cfg.BufferTrimming, Seconds: cfg.BufferTrimmingSec},
		ConfidenceValidation: cfg.ConfidenceValidation,
		MinChunkSize:         cfg.MinChunkSize,
		VACChunkSize:         cfg.VACChunkSize,
	}
}

// SelectVariant returns the processor variant cfg asks for.
func SelectVariant(cfg config.Config) Variant {
	switch {
	case transcription.ParseKind(cfg.Backend) == transcription.KindSimulStreaming:
		return VariantNative
	case cfg.VAC:
		return VariantVAC
	default:
		return VariantStandard
	}
}

// Create returns a new processor for backend. The backend must be the one
// the engine built from cfg; a backend of another kind, or a native session
// on a backend that cannot stream, fails with a variant mismatch. A nil
// sink logs fragments.
func (f *Factory) Create(cfg config.Config, backend transcription.Backend, tok tokenizer.Tokenizer, sink Sink) (Processor, error) {
	variant := SelectVariant(cfg)
	if backend == nil {
		return nil, errors.Configuration("transcription is disabled; no backend to run a session on")
	}
	want := transcription.ParseKind(cfg.Backend)
	if backend.Kind() != want {
		return nil, errors.VariantMismatch(string(variant), string(backend.Kind()))
	}
	if sink == nil {
		sink = LogSink(f.log)
	}

	id := uuid.NewString()
	log := f.log.WithFields(logger.Fields(logger.FieldSessionID, id, logger.FieldVariant, string(variant)))
	opts := OptionsFrom(cfg)
	e := &emitter{id: id, variant: variant, sink: sink, metrics: f.metrics}

	var p Processor
	switch variant {
	case VariantNative:
		streamer, ok := transcription.AsStreamer(backend)
		if !ok {
			return nil, errors.VariantMismatch(string(variant), string(backend.Kind()))
		}
		if cfg.VAC {
			log.Debug("vac is ignored for simulstreaming, which segments audio itself")
		}
		p = newNativeProcessor(e, backend.Name(), streamer, opts, log)
	case VariantVAC:
		p = newVACProcessor(e, newOnlineProcessor(e, backend, tok, opts, log), opts, log)
	default:
		p = newOnlineProcessor(e, backend, tok, opts, log)
	}

	f.metrics.RecordSessionStart(context.Background(), string(variant))
	log.Debug("session created", logger.Fields(logger.FieldBackend, backend.Name()))
	return p, nil
}
