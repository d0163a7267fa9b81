package httpclient

import (
	"encoding/json"
	"time"
)

// Request is one call to the upstream.
type Request struct {
	Method string
	// Path is joined to BaseURL unless it is an absolute URL.
	Path    string
	Headers map[string]string
	Query   map[string]string
	// Body may be nil, []byte, string, *MultipartBody, an io.Reader or any
	// value to send as JSON. Readers cannot be replayed on retry.
	Body any
}

// Response is a fully read answer.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	// Duration covers the final attempt only.
	Duration time.Duration
}

// DecodeJSON unmarshals the body into v.
func (r *Response) DecodeJSON(v any) error {
	return json.Unmarshal(r.Body, v)
}
