package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError carries a code, a client-safe message and the cause that stays
// on the server side.
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Is matches any *AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// WithCause attaches cause and returns e.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail records key in Details and returns e.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

// New returns an AppError whose status and retryability follow from code.
func New(code ErrorCode, format string, args ...any) *AppError {
	c := classOf(code)
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &AppError{Code: code, Message: msg, HTTPStatus: c.status, Retryable: c.retryable}
}

// with fills Details from alternating key/value pairs.
func (e *AppError) with(kv ...any) *AppError {
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			e.WithDetail(k, kv[i+1])
		}
	}
	return e
}

// Configuration reports an option that failed to decode or validate.
func Configuration(message string) *AppError {
	return New(ErrCodeConfiguration, "%s", message)
}

// UnsupportedLanguage reports a language code no tokenizer can serve.
func UnsupportedLanguage(lang string) *AppError {
	return New(ErrCodeUnsupportedLanguage, "language %q is not a supported Whisper language", lang).
		with("language", lang)
}

// BackendUnavailable reports an optional backend missing from this build.
// remediation tells the operator how to enable it.
func BackendUnavailable(backend, remediation string) *AppError {
	return New(ErrCodeBackendUnavailable, "%s backend is not available", backend).
		with("backend", backend, "remediation", remediation)
}

// BackendConstruction wraps the error a backend returned while loading.
func BackendConstruction(backend string, cause error) *AppError {
	return New(ErrCodeBackendConstruction, "failed to load %s backend", backend).
		with("backend", backend).WithCause(cause)
}

// WarmupFailure explains why the warmup inference did not run.
func WarmupFailure(reason string, cause error) *AppError {
	return New(ErrCodeWarmupFailure, "%s", reason).WithCause(cause)
}

// NetworkTimeout reports a bounded network call that ran out of time.
func NetworkTimeout(operation string, cause error) *AppError {
	return New(ErrCodeNetworkTimeout, "%s timed out", operation).
		with("operation", operation).WithCause(cause)
}

// ExternalServiceError wraps a failure reported by a sidecar or remote API.
func ExternalServiceError(service string, cause error) *AppError {
	return New(ErrCodeExternalService, "the %s service encountered an error", service).
		with("service", service).WithCause(cause)
}

// VariantMismatch reports a session processor that cannot drive the
// engine's backend.
func VariantMismatch(variant, backend string) *AppError {
	return New(ErrCodeVariantMismatch, "%s processor cannot run on %s backend", variant, backend).
		with("variant", variant, "backend", backend)
}

// NotReady reports that no engine has been built yet.
func NotReady() *AppError {
	return New(ErrCodeNotReady, "the transcription engine is not initialized")
}

// Internal hides cause behind a generic message.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "an unexpected error occurred").WithCause(cause)
}

// AsAppError finds the first *AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err's chain holds an AppError with code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
