package provider

import (
	"context"
	"errors"
	"fmt"
)

// Provider is the base interface all providers must implement.
type Provider interface {
	// Name returns the provider's unique name.
	Name() string
	// IsAvailable checks if the provider is ready to handle requests.
	IsAvailable(ctx context.Context) bool
}

// Factory creates a provider instance from typed options. Factories may
// perform blocking work such as loading a model, so they take a context.
type Factory[T any, O any] func(ctx context.Context, opts O) (T, error)

// ErrNotRegistered is returned by Create for names with no factory.
var ErrNotRegistered = errors.New("provider not registered")

// UnavailableError reports a provider that is known but not part of this build.
type UnavailableError struct {
	Name        string
	Remediation string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("provider %q is not available: %s", e.Name, e.Remediation)
}
