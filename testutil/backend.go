package testutil

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kbukum/whisperkit/transcription"
)

// Backend is a scripted transcription.Backend.
type Backend struct {
	transcription.Base

	kind transcription.Kind

	mu      sync.Mutex
	script  []*transcription.Result
	err     error
	delay   time.Duration
	prompts []string
	panics  bool

	calls       atomic.Int32
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	releases    atomic.Int32
	vad         atomic.Bool
	translate   atomic.Bool
}

// NewBackend returns a fake of the given kind that returns empty results.
func NewBackend(kind transcription.Kind) *Backend {
	return &Backend{kind: kind}
}

// Script sets the results returned by successive Transcribe calls. The last
// result repeats once the script is exhausted.
func (b *Backend) Script(results ...*transcription.Result) *Backend {
	b.mu.Lock()
	b.script = results
	b.mu.Unlock()
	return b
}

// FailWith makes every Transcribe call return err.
func (b *Backend) FailWith(err error) *Backend {
	b.mu.Lock()
	b.err = err
	b.mu.Unlock()
	return b
}

// PanicOnTranscribe makes Transcribe panic.
func (b *Backend) PanicOnTranscribe() *Backend {
	b.mu.Lock()
	b.panics = true
	b.mu.Unlock()
	return b
}

// Delay makes every Transcribe call sleep for d.
func (b *Backend) Delay(d time.Duration) *Backend {
	b.mu.Lock()
	b.delay = d
	b.mu.Unlock()
	return b
}

func (b *Backend) Name() string { return string(b.kind) }
func (b *Backend) IsAvailable(ctx context.Context) bool { return true }
func (b *Backend) Kind() transcription.Kind { return b.kind }
func (b *Backend) UseVoiceActivityDetection() { b.vad.Store(true) }
func (b *Backend) SetTranslateTask() { b.translate.Store(true) }

// Transcribe returns the next scripted result.
func (b *Backend) Transcribe(ctx context.Context, audio []float32, prompt string) (*transcription.Result, error) {
	n := b.inFlight.Add(1)
	defer b.inFlight.Add(-1)
	for {
		peak := b.maxInFlight.Load()
		if n <= peak || b.maxInFlight.CompareAndSwap(peak, n) {
			break
		}
	}
	call := int(b.calls.Add(1))

	b.mu.Lock()
	b.prompts = append(b.prompts, prompt)
	delay, err, panics := b.delay, b.err, b.panics
	var result *transcription.Result
	if len(b.script) > 0 {
		i := call - 1
		if i >= len(b.script) {
			i = len(b.script) - 1
		}
		result = b.script[i]
	}
	b.mu.Unlock()

	if panics {
		panic("fake backend panic")
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = &transcription.Result{}
	}
	return result, nil
}

// Release records a release call.
func (b *Backend) Release() error {
	b.releases.Add(1)
	return nil
}

// Calls returns the number of Transcribe calls.
func (b *Backend) Calls() int { return int(b.calls.Load()) }

// MaxInFlight returns the highest number of concurrent Transcribe calls seen.
func (b *Backend) MaxInFlight() int { return int(b.maxInFlight.Load()) }

// Releases returns the number of Release calls.
func (b *Backend) Releases() int { return int(b.releases.Load()) }

// VADEnabled reports whether UseVoiceActivityDetection was called.
func (b *Backend) VADEnabled() bool { return b.vad.Load() }

// TranslateEnabled reports whether SetTranslateTask was called.
func (b *Backend) TranslateEnabled() bool { return b.translate.Load() }

// Prompts returns the prompts passed to Transcribe, in call order.
func (b *Backend) Prompts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.prompts...)
}

// WarmingBackend adds transcription.Warmer to Backend.
type WarmingBackend struct {
	*Backend
	warmups atomic.Int32
	WarmErr error
}

// NewWarmingBackend returns a fake that implements Warmup.
func NewWarmingBackend(kind transcription.Kind) *WarmingBackend {
	return &WarmingBackend{Backend: NewBackend(kind)}
}

func (w *WarmingBackend) Warmup(ctx context.Context, audio []float32) error {
	w.warmups.Add(1)
	return w.WarmErr
}

// Warmups returns the number of Warmup calls.
func (w *WarmingBackend) Warmups() int { return int(w.warmups.Load()) }

// StreamingBackend adds transcription.Streamer to Backend. Each Push returns
// the next batch of Batches; Close returns Tail.
type StreamingBackend struct {
	*Backend

	// PushDelay is how long each Push takes.
	PushDelay time.Duration

	mu       sync.Mutex
	Batches  [][]transcription.Word
	Tail     []transcription.Word
	streams  int
	pushed   int
	lastOpts transcription.StreamOptions
	active   int
	peak     int
}

// NewStreamingBackend returns a simulstreaming fake.
func NewStreamingBackend() *StreamingBackend {
	return &StreamingBackend{Backend: NewBackend(transcription.KindSimulStreaming)}
}

func (s *StreamingBackend) NewStream(ctx context.Context, opts transcription.StreamOptions) (transcription.Stream, error) {
	s.mu.Lock()
	s.streams++
	s.lastOpts = opts
	s.mu.Unlock()
	return &fakeStream{owner: s}, nil
}

// StreamOptions returns the options the last stream was opened with.
func (s *StreamingBackend) StreamOptions() transcription.StreamOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastOpts
}

// PeakPushes returns the highest number of Push calls seen in flight at once.
func (s *StreamingBackend) PeakPushes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peak
}

// Streams returns the number of streams opened.
func (s *StreamingBackend) Streams() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streams
}

// SamplesPushed returns the total number of samples pushed to all streams.
func (s *StreamingBackend) SamplesPushed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pushed
}

type fakeStream struct {
	owner *StreamingBackend
	next  int
}

func (f *fakeStream) Push(ctx context.Context, audio []float32) ([]transcription.Word, error) {
	f.owner.mu.Lock()
	f.owner.active++
	f.owner.peak = max(f.owner.peak, f.owner.active)
	f.owner.mu.Unlock()

	if f.owner.PushDelay > 0 {
		time.Sleep(f.owner.PushDelay)
	}

	f.owner.mu.Lock()
	defer f.owner.mu.Unlock()
	f.owner.active--
	f.owner.pushed += len(audio)
	if f.next >= len(f.owner.Batches) {
		return nil, nil
	}
	words := f.owner.Batches[f.next]
	f.next++
	return words, nil
}

func (f *fakeStream) Close(ctx context.Context) ([]transcription.Word, error) {
	f.owner.mu.Lock()
	defer f.owner.mu.Unlock()
	return f.owner.Tail, nil
}
