//go:build simulstreaming

package simulstreaming

// Available reports whether the backend is compiled in.
const Available = true
