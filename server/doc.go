// Package server provides the whisperkit HTTP server: Gin with h2c, the
// probe endpoints and the engine status API.
//
// # Middleware
//
// server/middleware holds net/http middleware applied around the Gin
// router:
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: X-Request-Id generation and propagation
//   - RequestLogger: request logging with duration
//   - CORS: cross-origin headers and preflight answers
//   - BodySizeLimit: request body size limits
//
// # Endpoints
//
//   - GET /health, /alive, /ready: component health and probes
//   - GET /info, /metrics: build and runtime figures
//   - GET /v1/engine: the engine summary, 503 until it is built
//   - POST /v1/engine/free: release backend memory
package server
