package middleware

import "net/http"

// recorder remembers the status code and body size of a response for the
// request log. It passes Flush through and exposes the wrapped writer to
// http.ResponseController.
type recorder struct {
	http.ResponseWriter
	status  int
	written int64
	sent    bool
}

func record(w http.ResponseWriter) *recorder {
	return &recorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *recorder) WriteHeader(code int) {
	if !r.sent {
		r.status, r.sent = code, true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	r.sent = true
	n, err := r.ResponseWriter.Write(b)
	r.written += int64(n)
	return n, err
}

func (r *recorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *recorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }
