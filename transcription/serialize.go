package transcription

import (
	"context"
	"time"

	"github.com/kbukum/whisperkit/resilience"
)

// Serialize wraps b so that at most one inference runs at a time.
// Backends reporting Reentrant() == true are returned unchanged.
// maxWait bounds how long a call queues for the slot; zero or negative
// waits until the caller's context is done.
func Serialize(b Backend, maxWait time.Duration) Backend {
	if r, ok := b.(Reentrant); ok && r.Reentrant() {
		return b
	}
	if _, ok := b.(*serialized); ok {
		return b
	}
	if maxWait <= 0 {
		maxWait = -1
	}
	return &serialized{
		Backend: b,
		bulkhead: resilience.NewBulkhead(resilience.BulkheadConfig{
			Name:          "inference." + string(b.Kind()),
			MaxConcurrent: 1,
			MaxWait:       maxWait,
		}),
	}
}

type serialized struct {
	Backend
	bulkhead *resilience.Bulkhead
}

func (s *serialized) Transcribe(ctx context.Context, audio []float32, prompt string) (*Result, error) {
	return resilience.Call(ctx, s.bulkhead, func() (*Result, error) {
		return s.Backend.Transcribe(ctx, audio, prompt)
	})
}

// Unwrap returns the wrapped backend.
func (s *serialized) Unwrap() Backend { return s.Backend }

// Unwrap returns the backend beneath any Serialize wrapper.
func Unwrap(b Backend) Backend {
	for {
		u, ok := b.(interface{ Unwrap() Backend })
		if !ok {
			return b
		}
		b = u.Unwrap()
	}
}

// AsWarmer returns b's warmup entry point. Warmup shares the inference slot.
func AsWarmer(b Backend) (Warmer, bool) {
	w, ok := Unwrap(b).(Warmer)
	if !ok {
		return nil, false
	}
	if s, isSerialized := b.(*serialized); isSerialized {
		return warmerFunc(func(ctx context.Context, audio []float32) error {
			return s.bulkhead.Execute(ctx, func() error { return w.Warmup(ctx, audio) })
		}), true
	}
	return w, true
}

// AsStreamer returns b's incremental decoding entry point. Streams of a
// serialized backend share its inference slot for every sidecar call.
func AsStreamer(b Backend) (Streamer, bool) {
	st, ok := Unwrap(b).(Streamer)
	if !ok {
		return nil, false
	}
	if s, isSerialized := b.(*serialized); isSerialized {
		return &serializedStreamer{inner: st, bulkhead: s.bulkhead}, true
	}
	return st, true
}

// AsReleaser returns b's resource release hook.
func AsReleaser(b Backend) (Releaser, bool) {
	r, ok := Unwrap(b).(Releaser)
	return r, ok
}

type warmerFunc func(ctx context.Context, audio []float32) error

func (f warmerFunc) Warmup(ctx context.Context, audio []float32) error { return f(ctx, audio) }

type serializedStreamer struct {
	inner    Streamer
	bulkhead *resilience.Bulkhead
}

func (s *serializedStreamer) NewStream(ctx context.Context, opts StreamOptions) (Stream, error) {
	st, err := resilience.Call(ctx, s.bulkhead, func() (Stream, error) {
		return s.inner.NewStream(ctx, opts)
	})
	if err != nil {
		return nil, err
	}
	return &serializedStream{inner: st, bulkhead: s.bulkhead}, nil
}

type serializedStream struct {
	inner    Stream
	bulkhead *resilience.Bulkhead
}

func (s *serializedStream) Push(ctx context.Context, audio []float32) ([]Word, error) {
	return resilience.Call(ctx, s.bulkhead, func() ([]Word, error) {
		return s.inner.Push(ctx, audio)
	})
}

func (s *serializedStream) Close(ctx context.Context) ([]Word, error) {
	return resilience.Call(ctx, s.bulkhead, func() ([]Word, error) {
		return s.inner.Close(ctx)
	})
}
