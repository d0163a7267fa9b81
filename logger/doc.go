// Package logger provides structured logging for whisperkit using zerolog.
//
// It supports JSON and console output, level configuration (including the
// upper-case levels accepted by the engine's log_level option), and
// component-scoped loggers with structured fields.
//
// # Usage
//
//	log := logger.WithComponent("engine")
//	log.Info("backend loaded", logger.Fields(logger.FieldBackend, "faster-whisper"))
package logger
