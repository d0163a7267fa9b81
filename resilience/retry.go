package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryConfig is an exponential backoff policy.
type RetryConfig struct {
	MaxAttempts    int // including the first call
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
	Jitter         float64 // randomization factor, 0 to 1
	// RetryIf reports whether an error deserves another attempt.
	RetryIf func(error) bool
	// OnRetry runs before sleeping; attempt is the call that just failed.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// DefaultRetryConfig makes three attempts starting at 100ms.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		BackoffFactor:  2,
		Jitter:         0.1,
		RetryIf:        DefaultRetryIf,
	}
}

// DefaultRetryIf gives up on context cancellation and deadlines only.
func DefaultRetryIf(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (c RetryConfig) normalized() RetryConfig {
	d := DefaultRetryConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = d.InitialBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = d.MaxBackoff
	}
	if c.BackoffFactor <= 0 {
		c.BackoffFactor = d.BackoffFactor
	}
	if c.RetryIf == nil {
		c.RetryIf = DefaultRetryIf
	}
	return c
}

func (c RetryConfig) policy() *backoff.ExponentialBackOff {
	p := &backoff.ExponentialBackOff{
		InitialInterval:     c.InitialBackoff,
		RandomizationFactor: min(max(c.Jitter, 0), 1),
		Multiplier:          c.BackoffFactor,
		MaxInterval:         c.MaxBackoff,
	}
	p.Reset()
	return p
}

// Retry calls fn until it succeeds, RetryIf rejects the error, attempts run
// out or ctx ends. The last error from fn is returned unwrapped.
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	cfg = cfg.normalized()
	attempt := 0
	op := func() (T, error) {
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, backoff.Permanent(err)
		}
		attempt++
		v, err := fn()
		if err != nil && !cfg.RetryIf(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(cfg.policy()),
		backoff.WithMaxTries(uint(cfg.MaxAttempts)),
	}
	if cfg.OnRetry != nil {
		opts = append(opts, backoff.WithNotify(func(err error, wait time.Duration) {
			cfg.OnRetry(attempt, err, wait)
		}))
	}
	return backoff.Retry(ctx, op, opts...)
}

// RetryFunc is Retry for calls without a result.
func RetryFunc(ctx context.Context, cfg RetryConfig, fn func() error) error {
	_, err := Retry(ctx, cfg, func() (struct{}, error) { return struct{}{}, fn() })
	return err
}
