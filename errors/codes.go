package errors

import "net/http"

// ErrorCode is the machine-readable part of an AppError.
type ErrorCode string

// Startup failures. Any of these aborts engine construction.
const (
	ErrCodeConfiguration       ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeUnsupportedLanguage ErrorCode = "UNSUPPORTED_LANGUAGE"
	ErrCodeBackendUnavailable  ErrorCode = "BACKEND_UNAVAILABLE"
	ErrCodeBackendConstruction ErrorCode = "BACKEND_CONSTRUCTION_FAILURE"
)

// Recoverable failures. The engine logs these and carries on.
const (
	ErrCodeWarmupFailure   ErrorCode = "WARMUP_FAILURE"
	ErrCodeNetworkTimeout  ErrorCode = "NETWORK_TIMEOUT"
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

// Session and lifecycle failures.
const (
	ErrCodeVariantMismatch ErrorCode = "SESSION_VARIANT_MISMATCH"
	ErrCodeNotReady        ErrorCode = "ENGINE_NOT_READY"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// class is what a code implies for transport and control flow.
type class struct {
	status    int
	retryable bool
	fatal     bool
}

var classes = map[ErrorCode]class{
	ErrCodeConfiguration:       {status: http.StatusBadRequest, fatal: true},
	ErrCodeUnsupportedLanguage: {status: http.StatusBadRequest, fatal: true},
	ErrCodeBackendUnavailable:  {status: http.StatusServiceUnavailable, fatal: true},
	ErrCodeBackendConstruction: {status: http.StatusInternalServerError, fatal: true},
	ErrCodeWarmupFailure:       {status: http.StatusInternalServerError},
	ErrCodeNetworkTimeout:      {status: http.StatusGatewayTimeout, retryable: true},
	ErrCodeExternalService:     {status: http.StatusBadGateway, retryable: true},
	ErrCodeVariantMismatch:     {status: http.StatusConflict},
	ErrCodeNotReady:            {status: http.StatusServiceUnavailable, retryable: true},
	ErrCodeInternal:            {status: http.StatusInternalServerError},
}

func classOf(code ErrorCode) class {
	if c, ok := classes[code]; ok {
		return c
	}
	return class{status: http.StatusInternalServerError}
}

// IsRetryableCode reports whether a call that failed with code may succeed
// if repeated.
func IsRetryableCode(code ErrorCode) bool { return classOf(code).retryable }

// IsFatalCode reports whether code aborts engine startup.
func IsFatalCode(code ErrorCode) bool { return classOf(code).fatal }

// StatusOf returns the HTTP status that code maps to. Unknown codes map
// to 500.
func StatusOf(code ErrorCode) int { return classOf(code).status }
