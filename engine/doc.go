// Package engine owns the process-wide transcription engine: the loaded
// backend, its sentence tokenizer and the optional diarizer.
//
// Construction happens once per Holder. The first successful Obtain builds
// the engine; later calls return it unchanged and ignore their overrides.
//
//	eng, err := engine.Obtain(ctx, map[string]any{"backend": "openai-api", "lan": "en"})
//	proc, err := eng.NewSession(ctx, session.LogSink(nil))
//
// Holders can also be created explicitly with NewHolder and passed to the
// components that need the engine.
package engine
