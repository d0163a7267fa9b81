package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/kbukum/whisperkit/logger"
)

// Recovery returns middleware that turns a panic into a 500 and logs the stack.
func Recovery(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("Panic recovered", map[string]interface{}{
					logger.FieldError: fmt.Sprintf("%v", rec),
					"stack":           string(debug.Stack()),
					logger.FieldPath:  r.URL.Path,
					"method":          r.Method,
				})
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "Internal server error"})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
