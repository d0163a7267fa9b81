package engine

import (
	"github.com/kbukum/whisperkit/diarization"
	"github.com/kbukum/whisperkit/diarization/pyannote"
	"github.com/kbukum/whisperkit/logger"
	"github.com/kbukum/whisperkit/observability"
	"github.com/kbukum/whisperkit/transcription"
	"github.com/kbukum/whisperkit/transcription/openai"
	"github.com/kbukum/whisperkit/transcription/simulstreaming"
	"github.com/kbukum/whisperkit/transcription/whisper"
	"github.com/kbukum/whisperkit/warmup"
)

// DefaultDiarizer is the diarizer built when diarization is enabled.
const DefaultDiarizer = pyannote.ProviderName

// Deps are the collaborators an engine is built from.
type Deps struct {
	Backends  *transcription.Registry
	Diarizers *diarization.Registry
	// Assets supplies the default warmup sample. Nil uses
	// warmup.Default with the configured warmup timeout.
	Assets  warmup.AssetProvider
	Metrics *observability.Metrics
	Logger  *logger.Logger
}

// DefaultDeps registers every backend and diarizer compiled into the binary.
func DefaultDeps() Deps {
	backends := transcription.NewRegistry()
	whisper.Register(backends)
	openai.Register(backends)
	simulstreaming.Register(backends)

	diarizers := diarization.NewRegistry()
	pyannote.Register(diarizers)

	return Deps{Backends: backends, Diarizers: diarizers}
}

func (d Deps) withDefaults() Deps {
	if d.Backends == nil || d.Diarizers == nil {
		def := DefaultDeps()
		if d.Backends == nil {
			d.Backends = def.Backends
		}
		if d.Diarizers == nil {
			d.Diarizers = def.Diarizers
		}
	}
	if d.Logger == nil {
		d.Logger = logger.WithComponent("engine")
	}
	return d
}
