package session

import (
	"context"
	"strings"
	"time"

	"github.com/kbukum/whisperkit/audio"
	"github.com/kbukum/whisperkit/config"
	"github.com/kbukum/whisperkit/logger"
	"github.com/kbukum/whisperkit/observability"
	"github.com/kbukum/whisperkit/tokenizer"
	"github.com/kbukum/whisperkit/transcription"
)

const (
	promptMaxChars = 200
	// sentenceModeSegmentLimit is the segment trimming threshold used as a
	// fallback when sentence trimming is active.
	sentenceModeSegmentLimit = 30.0
)

// emitter delivers committed words to the sink and counts them.
type emitter struct {
	id      string
	variant Variant
	sink    Sink
	metrics *observability.Metrics
}

func (e *emitter) emit(ctx context.Context, words []transcription.Word, final bool) {
	t, ok := newTranscript(e.id, e.variant, words, final)
	if !ok {
		return
	}
	e.metrics.RecordWordsCommitted(ctx, string(e.variant), len(words))
	e.sink.Emit(t)
}

// onlineProcessor is the standard processor. It re-transcribes the whole
// buffer on every step and commits words confirmed by two consecutive
// hypotheses.
type onlineProcessor struct {
	*emitter

	backend transcription.Backend
	tok     tokenizer.Tokenizer
	opts    Options
	log     *logger.Logger

	audio     []float32
	offset    float64
	hyp       *hypothesisBuffer
	committed []transcription.Word
}

func newOnlineProcessor(e *emitter, backend transcription.Backend, tok tokenizer.Tokenizer, opts Options, log *logger.Logger) *onlineProcessor {
	p := &onlineProcessor{emitter: e, backend: backend, tok: tok, opts: opts, log: log}
	p.init(0)
	return p
}

func (p *onlineProcessor) ID() string       { return p.id }
func (p *onlineProcessor) Variant() Variant { return p.variant }

// init resets the processor to start at offset seconds of the stream.
func (p *onlineProcessor) init(offset float64) {
	p.audio = nil
	p.offset = offset
	p.hyp = newHypothesisBuffer(p.opts.ConfidenceValidation, offset)
	p.committed = nil
}

func (p *onlineProcessor) InsertAudio(samples []float32) {
	p.audio = append(p.audio, samples...)
}

func (p *onlineProcessor) Process(ctx context.Context) error {
	if len(p.audio) == 0 {
		return nil
	}
	base := p.offset
	prompt := p.prompt()

	start := time.Now()
	res, err := p.backend.Transcribe(ctx, p.audio, prompt)
	if err != nil {
		p.metrics.RecordInference(ctx, p.backend.Name(), "error", time.Since(start))
		return err
	}
	p.metrics.RecordInference(ctx, p.backend.Name(), "ok", time.Since(start))

	p.hyp.insert(res.Words(), base)
	committed := p.hyp.flush()
	p.committed = append(p.committed, committed...)
	p.emit(ctx, committed, false)

	p.trim(res, base)
	return nil
}

// Finish flushes the uncommitted tail as a final fragment.
func (p *onlineProcessor) Finish(ctx context.Context) error {
	p.finishSegment(ctx)
	p.metrics.RecordSessionEnd(ctx, string(p.variant))
	return nil
}

func (p *onlineProcessor) finishSegment(ctx context.Context) {
	tail := p.hyp.complete()
	p.emit(ctx, tail, true)
	p.offset += p.bufferSeconds()
	p.audio = nil
}

func (p *onlineProcessor) bufferSeconds() float64 {
	return float64(len(p.audio)) / audio.SampleRate
}

// prompt returns up to promptMaxChars of committed text that lies before
// the current buffer.
func (p *onlineProcessor) prompt() string {
	k := max(0, len(p.committed)-1)
	for k > 0 && p.committed[k-1].End > p.offset {
		k--
	}

	var parts []string
	n := 0
	for i := k - 1; i >= 0 && n < promptMaxChars; i-- {
		text := p.committed[i].Text
		n += len(text) + 1
		parts = append(parts, text)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "")
}

func (p *onlineProcessor) trim(res *transcription.Result, base float64) {
	limit := p.opts.Trimming.Seconds
	if p.opts.Trimming.Mode == config.TrimSentence {
		if p.tok != nil && p.bufferSeconds() > limit {
			p.chunkCompletedSentence()
		}
		limit = sentenceModeSegmentLimit
	}
	if p.bufferSeconds() > limit && base == p.offset {
		p.chunkCompletedSegment(res, base)
	}
}

// chunkCompletedSentence cuts the buffer at the end of the second-to-last
// committed sentence.
func (p *onlineProcessor) chunkCompletedSentence() {
	if len(p.committed) == 0 {
		return
	}
	sents := wordsToSentences(p.tok, p.committed)
	if len(sents) < 2 {
		return
	}
	p.chunkAt(sents[len(sents)-2].end)
}

// chunkCompletedSegment cuts the buffer at the last segment boundary that
// is already covered by committed words.
func (p *onlineProcessor) chunkCompletedSegment(res *transcription.Result, base float64) {
	if len(p.committed) == 0 {
		return
	}
	ends := res.SegmentEnds()
	if len(ends) < 2 {
		return
	}
	t := p.committed[len(p.committed)-1].End
	e := ends[len(ends)-2] + base
	for len(ends) > 2 && e > t {
		ends = ends[:len(ends)-1]
		e = ends[len(ends)-2] + base
	}
	if e <= t {
		p.chunkAt(e)
	}
}

func (p *onlineProcessor) chunkAt(t float64) {
	p.hyp.popCommitted(t)
	cut := int((t - p.offset) * audio.SampleRate)
	cut = min(max(cut, 0), len(p.audio))
	p.audio = append([]float32(nil), p.audio[cut:]...)
	p.offset = t
	p.log.Debug("buffer trimmed", logger.Fields(logger.FieldSessionID, p.id, "offset", t))
}

type sentence struct {
	start, end float64
	text       string
}

// wordsToSentences groups timed words into the sentences tok finds in
// their joined text.
func wordsToSentences(tok tokenizer.Tokenizer, words []transcription.Word) []sentence {
	texts := make([]string, len(words))
	for i, w := range words {
		texts[i] = strings.TrimSpace(w.Text)
	}

	var out []sentence
	rest := words
	for _, raw := range tok.Split(strings.Join(texts, " ")) {
		sent := strings.TrimSpace(raw)
		if sent == "" {
			continue
		}
		full := sent
		started := false
		var start float64
		for len(rest) > 0 {
			w := rest[0]
			rest = rest[1:]
			text := strings.TrimSpace(w.Text)
			if !started && strings.HasPrefix(sent, text) {
				start = w.Start
				started = true
			}
			if started && sent == text {
				out = append(out, sentence{start: start, end: w.End, text: full})
				break
			}
			if len(text) <= len(sent) {
				sent = strings.TrimSpace(sent[len(text):])
			} else {
				sent = ""
			}
		}
	}
	return out
}
