// Package session builds per-stream transcription processors.
//
// A Factory picks one of three variants from the engine configuration:
//
//   - standard: LocalAgreement-2 over a growing audio buffer, trimmed at
//     segment or sentence boundaries
//   - vac: the standard processor gated by a voice activity controller,
//     restarted at every speech onset
//   - native: the backend decodes incrementally itself (simulstreaming)
//
// Processors are single-owner: one goroutine feeds audio, calls Process and
// finally Finish. Committed words are delivered to a Sink.
package session
