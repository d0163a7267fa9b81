// Package component defines lifecycle-managed services and a registry that
// starts them in order and stops them in reverse.
//
// # Interfaces
//
//   - Component: Name/Start/Stop/Health
//   - Describable: startup summary descriptions
//
// Lazy holds a value that is built at most once by the first caller that
// succeeds; the engine singleton is built on it.
package component
