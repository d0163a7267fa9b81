package httpclient

import (
	"errors"
	"fmt"
	"net/http"

	apperrors "github.com/kbukum/whisperkit/errors"
)

// Kind says where an upstream call broke.
type Kind string

const (
	KindTimeout    Kind = "timeout"    // deadline or transport timeout
	KindConnection Kind = "connection" // refused, reset, DNS
	KindClient     Kind = "client"     // 4xx
	KindServer     Kind = "server"     // 5xx
	KindEncoding   Kind = "encoding"   // request or response could not be (de)serialized
)

// bodyPreview is the longest response body quoted in an error message.
const bodyPreview = 512

// Error is a failed upstream call. StatusCode is zero when no response
// arrived.
type Error struct {
	Kind       Kind
	StatusCode int
	Retryable  bool
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode == 0:
		return fmt.Sprintf("httpclient: %s: %v", e.Kind, e.Err)
	case len(e.Body) > 0 && len(e.Body) <= bodyPreview:
		return fmt.Sprintf("httpclient: %s: HTTP %d: %s", e.Kind, e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("httpclient: %s: HTTP %d", e.Kind, e.StatusCode)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func fail(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err, Retryable: kind == KindTimeout || kind == KindConnection}
}

// StatusError returns the error for a non-2xx status, or nil. Request
// timeouts, throttling and server errors are retryable.
func StatusError(status int, body []byte) *Error {
	if status >= 200 && status < 300 {
		return nil
	}
	e := &Error{Kind: KindClient, StatusCode: status, Body: body}
	if status >= 500 {
		e.Kind = KindServer
	}
	e.Retryable = e.Kind == KindServer || status == http.StatusRequestTimeout || status == http.StatusTooManyRequests
	return e
}

func kindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, e.Retryable
	}
	return "", false
}

// IsTimeout reports whether err is an upstream timeout.
func IsTimeout(err error) bool {
	k, _ := kindOf(err)
	return k == KindTimeout
}

// IsRetryable reports whether repeating the call may succeed.
func IsRetryable(err error) bool {
	_, retry := kindOf(err)
	return retry
}

// ToAppError turns a client error into NETWORK_TIMEOUT or
// EXTERNAL_SERVICE_ERROR for service.
func ToAppError(service string, err error) error {
	switch {
	case err == nil:
		return nil
	case IsTimeout(err):
		return apperrors.NetworkTimeout(service, err)
	default:
		return apperrors.ExternalServiceError(service, err)
	}
}
