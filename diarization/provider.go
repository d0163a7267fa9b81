package diarization

import (
	"context"
	"time"

	"github.com/kbukum/whisperkit/logger"
	"github.com/kbukum/whisperkit/provider"
)

// Provider is the interface that diarization backends must implement.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Diarize attributes the speech in req to speakers.
	Diarize(ctx context.Context, req Request) (*Response, error)
}

// Options are the construction parameters of a diarizer.
type Options struct {
	// URL is the sidecar endpoint.
	URL               string
	SegmentationModel string
	EmbeddingModel    string
	// BlockDuration is the step, in seconds, of the streaming pipeline.
	BlockDuration float64
	Timeout       time.Duration
	Logger        *logger.Logger
}

// Registry creates diarizers by name.
type Registry = provider.Registry[Provider, Options]

// Factory builds a diarizer from Options.
type Factory = provider.Factory[Provider, Options]

// NewRegistry returns an empty diarizer registry.
func NewRegistry() *Registry {
	return provider.NewRegistry[Provider, Options]()
}
