package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

var (
	// ErrFull is returned when no slot is free and the bulkhead does not
	// queue.
	ErrFull = errors.New("bulkhead full")
	// ErrWaitTimeout is returned when a queued caller gives up after MaxWait.
	ErrWaitTimeout = errors.New("bulkhead wait timed out")
)

// BulkheadConfig sizes a Bulkhead.
type BulkheadConfig struct {
	Name          string
	MaxConcurrent int // defaults to 1
	// MaxWait bounds queueing for a slot. Zero rejects at once; a negative
	// value queues until the caller's context ends.
	MaxWait time.Duration
}

// Bulkhead caps how many calls run at once. With one slot it serializes
// access to a resource that is not reentrant.
type Bulkhead struct {
	name    string
	maxWait time.Duration
	slots   chan struct{}
	queued  atomic.Int64
}

func NewBulkhead(cfg BulkheadConfig) *Bulkhead {
	n := max(cfg.MaxConcurrent, 1)
	return &Bulkhead{name: cfg.Name, maxWait: cfg.MaxWait, slots: make(chan struct{}, n)}
}

// Acquire takes a slot. The returned func gives it back and must be called
// exactly once.
func (b *Bulkhead) Acquire(ctx context.Context) (release func(), err error) {
	select {
	case b.slots <- struct{}{}:
		return b.release, nil
	default:
	}
	if b.maxWait == 0 {
		return nil, fmt.Errorf("%s: %w", b.name, ErrFull)
	}

	b.queued.Add(1)
	defer b.queued.Add(-1)

	if b.maxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, b.maxWait, ErrWaitTimeout)
		defer cancel()
	}
	select {
	case b.slots <- struct{}{}:
		return b.release, nil
	case <-ctx.Done():
		if cause := context.Cause(ctx); errors.Is(cause, ErrWaitTimeout) {
			return nil, fmt.Errorf("%s: %w", b.name, ErrWaitTimeout)
		}
		return nil, ctx.Err()
	}
}

func (b *Bulkhead) release() { <-b.slots }

// Execute runs fn inside a slot.
func (b *Bulkhead) Execute(ctx context.Context, fn func() error) error {
	release, err := b.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

// Call runs fn inside a slot of b and passes its result through.
func Call[T any](ctx context.Context, b *Bulkhead, fn func() (T, error)) (T, error) {
	release, err := b.Acquire(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	defer release()
	return fn()
}

func (b *Bulkhead) Name() string { return b.name }

// InUse is the number of slots held right now.
func (b *Bulkhead) InUse() int { return len(b.slots) }

// Queued is the number of callers waiting for a slot.
func (b *Bulkhead) Queued() int { return int(b.queued.Load()) }

func (b *Bulkhead) Capacity() int { return cap(b.slots) }
