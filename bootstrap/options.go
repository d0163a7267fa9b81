package bootstrap

import (
	"io"
	"os"
	"syscall"
	"time"

	"github.com/kbukum/whisperkit/logger"
)

// Option adjusts an App in NewApp.
type Option func(*settings)

type settings struct {
	logger          *logger.Logger
	gracefulTimeout time.Duration
	summaryOut      io.Writer
	signals         []os.Signal
}

func defaultSettings() settings {
	return settings{
		gracefulTimeout: 15 * time.Second,
		summaryOut:      os.Stdout,
		signals:         []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}
}

// WithLogger replaces the logger NewApp would build from the Logging
// section.
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithGracefulTimeout bounds stop hooks plus component shutdown. A
// non-positive d keeps the 15s default.
func WithGracefulTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.gracefulTimeout = d
		}
	}
}

// WithSummaryOutput sends the startup summary to w instead of stdout.
func WithSummaryOutput(w io.Writer) Option {
	return func(s *settings) { s.summaryOut = w }
}

// WithSignals replaces SIGINT and SIGTERM as the shutdown signals.
func WithSignals(sigs ...os.Signal) Option {
	return func(s *settings) {
		if len(sigs) > 0 {
			s.signals = sigs
		}
	}
}
