package middleware

import (
	"net/http"
	"slices"
	"time"

	"github.com/kbukum/whisperkit/logger"
)

// Probes are polled by orchestrators and would drown the request log.
var probePaths = []string{"/health", "/alive", "/ready", "/metrics"}

// RequestLogger writes one line per request once the handler returns.
// Failures log at warn or error. Successful reads log at debug, while
// successful writes such as POST /v1/engine/free log at info.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(probePaths, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := record(w)
			next.ServeHTTP(rec, r)

			fields := logger.Fields(
				"method", r.Method,
				logger.FieldPath, r.URL.Path,
				"status", rec.status,
				"bytes", rec.written,
				logger.FieldDuration, time.Since(start).Milliseconds(),
			)
			if id := r.Header.Get(RequestIDHeader); id != "" {
				fields[logger.FieldRequestID] = id
			}

			switch {
			case rec.status >= http.StatusInternalServerError:
				log.Error("Request completed", fields)
			case rec.status >= http.StatusBadRequest:
				log.Warn("Request completed", fields)
			case isRead(r.Method):
				log.Debug("Request completed", fields)
			default:
				log.Info("Request completed", fields)
			}
		})
	}
}

func isRead(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}
