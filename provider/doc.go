// Package provider defines the base contract shared by pluggable backends
// (transcription, diarization, sentence splitting) and a registry that builds
// them by name from typed options.
//
// Registries know which names are compiled into the binary. A name can be
// registered as unavailable with remediation text, so callers get a typed
// UnavailableError instead of a missing-factory failure.
//
//	reg := provider.NewRegistry[transcription.Backend, transcription.Options]()
//	reg.RegisterFactory("openai-api", openai.Factory())
//	reg.MarkUnavailable("simulstreaming", "rebuild with -tags simulstreaming")
//	b, err := reg.Create(ctx, "openai-api", opts)
package provider
