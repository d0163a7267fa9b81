package middleware

import (
	"net/http"
	"slices"
)

// Middleware decorates a handler. The server applies every middleware
// around the whole router, so one type covers Gin routes and plain
// handlers alike.
type Middleware func(http.Handler) http.Handler

// Chain stacks mws so that mws[0] sees the request first.
func Chain(mws ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		for _, mw := range slices.Backward(mws) {
			h = mw(h)
		}
		return h
	}
}
