package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/whisperkit/logger"
	"github.com/kbukum/whisperkit/server/middleware"
)

// shutdownGrace bounds how long Stop waits for requests in flight.
const shutdownGrace = 5 * time.Second

// Server serves the Gin router over HTTP/1.1, h2c on plain connections, or
// TLS.
type Server struct {
	cfg    Config
	log    *logger.Logger
	router *gin.Engine
	h2     *http2.Server
	http   *http.Server

	mu sync.Mutex
	ln net.Listener
}

// New builds a Server with an empty router. Gin runs in debug mode only
// when log is at debug level or below.
func New(cfg Config, log *logger.Logger) *Server {
	mode := gin.ReleaseMode
	if log.Level() <= zerolog.DebugLevel {
		mode = gin.DebugMode
	}
	gin.SetMode(mode)

	s := &Server{
		cfg:    cfg,
		log:    log.WithComponent("server"),
		router: gin.New(),
		h2:     &http2.Server{MaxConcurrentStreams: 250, IdleTimeout: 2 * time.Minute},
	}
	s.http = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:      h2c.NewHandler(s.router, s.h2),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	if cfg.TLS() {
		s.http.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return s
}

// ApplyMiddleware wraps the router, outermost first, in panic recovery,
// request ids, access logging, CORS and the body size limit.
func (s *Server) ApplyMiddleware() {
	stack := middleware.Chain(
		middleware.Recovery(s.log),
		middleware.RequestID(),
		middleware.RequestLogger(s.log),
		middleware.CORS(&s.cfg.CORS),
		middleware.BodySizeLimit(s.cfg.MaxBodySize),
	)
	s.http.Handler = h2c.NewHandler(stack(s.router), s.h2)
}

// Router exposes the Gin router for route registration.
func (s *Server) Router() *gin.Engine { return s.router }

// Handler is the root handler, middleware included.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Start binds the listener, then serves in the background.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.http.Addr, err)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	serve := func() error { return s.http.Serve(ln) }
	if s.cfg.TLS() {
		serve = func() error { return s.http.ServeTLS(ln, s.cfg.CertFile, s.cfg.KeyFile) }
	}
	go func() {
		if err := serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("serve failed")
		}
	}()

	s.log.Info("listening", logger.Fields("addr", ln.Addr().String(), "tls", s.cfg.TLS()))
	return nil
}

// Stop drains requests in flight for up to five seconds.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownGrace)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		s.log.WithError(err).Error("shutdown failed")
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("stopped listening")
	return nil
}

// Addr is the bound address after Start and the configured one before.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return s.http.Addr
	}
	return s.ln.Addr().String()
}
