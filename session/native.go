package session

import (
	"context"
	"time"

	"github.com/kbukum/whisperkit/audio"
	"github.com/kbukum/whisperkit/logger"
	"github.com/kbukum/whisperkit/transcription"
)

// nativeProcessor forwards audio to a backend that commits words itself.
// The backend owns its buffer, so trimming and confidence validation are
// passed to the stream rather than applied here.
type nativeProcessor struct {
	*emitter

	name       string
	streamer   transcription.Streamer
	streamOpts transcription.StreamOptions
	stream     transcription.Stream
	log        *logger.Logger

	stepSamples int
	pending     []float32
}

func newNativeProcessor(e *emitter, name string, streamer transcription.Streamer, opts Options, log *logger.Logger) *nativeProcessor {
	return &nativeProcessor{
		emitter:  e,
		name:     name,
		streamer: streamer,
		streamOpts: transcription.StreamOptions{
			BufferTrimming:       opts.Trimming.Mode,
			BufferTrimmingSec:    opts.Trimming.Seconds,
			ConfidenceValidation: opts.ConfidenceValidation,
		},
		log:         log,
		stepSamples: max(1, int(opts.MinChunkSize*audio.SampleRate)),
	}
}

func (p *nativeProcessor) ID() string       { return p.id }
func (p *nativeProcessor) Variant() Variant { return p.variant }

func (p *nativeProcessor) InsertAudio(samples []float32) {
	p.pending = append(p.pending, samples...)
}

// Process pushes buffered audio once at least one step is available. The
// backend stream is opened on first use.
func (p *nativeProcessor) Process(ctx context.Context) error {
	if len(p.pending) < p.stepSamples {
		return nil
	}
	if err := p.open(ctx); err != nil {
		return err
	}
	words, err := p.push(ctx)
	if err != nil {
		return err
	}
	p.emit(ctx, words, false)
	return nil
}

// Finish pushes the remainder and closes the backend stream.
func (p *nativeProcessor) Finish(ctx context.Context) error {
	defer p.metrics.RecordSessionEnd(ctx, string(p.variant))
	if p.stream == nil && len(p.pending) == 0 {
		return nil
	}
	if err := p.open(ctx); err != nil {
		return err
	}
	if len(p.pending) > 0 {
		words, err := p.push(ctx)
		if err != nil {
			return err
		}
		p.emit(ctx, words, false)
	}
	tail, err := p.stream.Close(ctx)
	if err != nil {
		return err
	}
	p.emit(ctx, tail, true)
	return nil
}

func (p *nativeProcessor) open(ctx context.Context) error {
	if p.stream != nil {
		return nil
	}
	stream, err := p.streamer.NewStream(ctx, p.streamOpts)
	if err != nil {
		return err
	}
	p.stream = stream
	p.log.Debug("stream opened", logger.Fields(logger.FieldSessionID, p.id))
	return nil
}

func (p *nativeProcessor) push(ctx context.Context) ([]transcription.Word, error) {
	chunk := p.pending
	p.pending = nil
	start := time.Now()
	words, err := p.stream.Push(ctx, chunk)
	status := "ok"
	if err != nil {
		status = "error"
	}
	p.metrics.RecordInference(ctx, p.name, status, time.Since(start))
	return words, err
}
