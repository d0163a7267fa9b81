package session

import (
	"context"

	"github.com/kbukum/whisperkit/audio"
	"github.com/kbukum/whisperkit/logger"
)

// vacProcessor gates a standard processor with voice activity detection.
// Audio outside speech is dropped; each utterance starts a fresh
// hypothesis at its stream offset and is flushed when speech ends.
type vacProcessor struct {
	*emitter

	online *onlineProcessor
	vad    *vad
	log    *logger.Logger

	frameSamples int
	stepSamples  int

	pending  []float32
	consumed int
	speech   bool
	buffered int
}

func newVACProcessor(e *emitter, online *onlineProcessor, opts Options, log *logger.Logger) *vacProcessor {
	return &vacProcessor{
		emitter:      e,
		online:       online,
		vad:          newVAD(defaultVADThreshold, defaultVADMinSilence),
		log:          log,
		frameSamples: max(1, int(opts.VACChunkSize*audio.SampleRate)),
		stepSamples:  max(1, int(opts.MinChunkSize*audio.SampleRate)),
	}
}

func (p *vacProcessor) ID() string       { return p.id }
func (p *vacProcessor) Variant() Variant { return p.variant }

func (p *vacProcessor) InsertAudio(samples []float32) {
	p.pending = append(p.pending, samples...)
}

// Process runs the detector over every complete frame and transcribes once
// enough speech is buffered or an utterance ends.
func (p *vacProcessor) Process(ctx context.Context) error {
	for len(p.pending) >= p.frameSamples {
		frame := p.pending[:p.frameSamples]
		p.pending = p.pending[p.frameSamples:]

		switch p.vad.process(frame) {
		case vadSpeechStart:
			p.online.init(float64(p.consumed) / audio.SampleRate)
			p.speech = true
			p.feed(frame)
			p.log.Debug("speech started", logger.Fields(logger.FieldSessionID, p.id, "offset", p.online.offset))
		case vadSpeechContinue:
			p.feed(frame)
		case vadSpeechEnd:
			p.feed(frame)
			p.consumed += len(frame)
			if err := p.endUtterance(ctx); err != nil {
				return err
			}
			continue
		}
		p.consumed += len(frame)

		if p.speech && p.buffered >= p.stepSamples {
			p.buffered = 0
			if err := p.online.Process(ctx); err != nil {
				return err
			}
		}
	}
	p.pending = append([]float32(nil), p.pending...)
	return nil
}

// Finish flushes an utterance still in progress.
func (p *vacProcessor) Finish(ctx context.Context) error {
	var err error
	if p.speech {
		p.feed(p.pending)
		p.pending = nil
		err = p.endUtterance(ctx)
	}
	p.metrics.RecordSessionEnd(ctx, string(p.variant))
	return err
}

func (p *vacProcessor) feed(frame []float32) {
	p.online.InsertAudio(frame)
	p.buffered += len(frame)
}

func (p *vacProcessor) endUtterance(ctx context.Context) error {
	p.speech = false
	p.buffered = 0
	if err := p.online.Process(ctx); err != nil {
		return err
	}
	p.online.finishSegment(ctx)
	p.log.Debug("speech ended", logger.Fields(logger.FieldSessionID, p.id))
	return nil
}
