package transcription

import "github.com/kbukum/whisperkit/provider"

// Registry maps backend kinds to factories.
type Registry = provider.Registry[Backend, Options]

// Factory constructs one backend variant.
type Factory = provider.Factory[Backend, Options]

// NewRegistry creates an empty backend registry.
func NewRegistry() *Registry {
	return provider.NewRegistry[Backend, Options]()
}
