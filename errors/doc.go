// Package errors provides the structured error type used across whisperkit.
// Codes separate fatal startup failures (configuration, language, backend)
// from recoverable ones (warmup, network) so callers can decide whether to
// abort engine construction or log and continue.
package errors
