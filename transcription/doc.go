// Package transcription defines the speech-recognition backend contract
// shared by every variant and the registry used to construct them.
//
// The set of backends is closed (see Kind). Each variant lives in its own
// subpackage and registers a factory:
//
//   - transcription/whisper: faster-whisper, mlx-whisper and whisper-timestamped
//     through the local inference sidecar
//   - transcription/openai: the OpenAI audio API
//   - transcription/simulstreaming: SimulStreaming, only with -tags simulstreaming
//
// Backends are shared by all sessions. Serialize wraps a backend so that at
// most one inference runs at a time unless the backend is reentrant.
package transcription
