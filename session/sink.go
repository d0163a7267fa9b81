package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/whisperkit/logger"
)

// Sink receives committed transcript fragments.
type Sink interface {
	Emit(t Transcript)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(t Transcript)

func (f SinkFunc) Emit(t Transcript) { f(t) }

type logSink struct {
	log     *logger.Logger
	started time.Time
}

// LogSink writes each fragment as "<elapsed ms> <start ms> <end ms> <text>"
// at info level.
func LogSink(log *logger.Logger) Sink {
	if log == nil {
		log = logger.WithComponent("transcript")
	}
	return &logSink{log: log, started: time.Now()}
}

func (s *logSink) Emit(t Transcript) {
	elapsed := time.Since(s.started).Seconds() * 1000
	s.log.Info(fmt.Sprintf("%1.4f %1.0f %1.0f %s", elapsed, t.Start*1000, t.End*1000, strings.TrimSpace(t.Text)),
		logger.Fields(logger.FieldSessionID, t.SessionID, logger.FieldVariant, string(t.Variant)))
}

// ChannelSink sends fragments to ch. Emit blocks while ch is full.
func ChannelSink(ch chan<- Transcript) Sink {
	return SinkFunc(func(t Transcript) { ch <- t })
}
