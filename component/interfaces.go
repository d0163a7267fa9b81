package component

import "context"

// HealthStatus is the coarse state a component reports to the probes.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// Worse reports whether s ranks below other. Unknown values rank as
// healthy.
func (s HealthStatus) Worse(other HealthStatus) bool {
	return s.rank() > other.rank()
}

func (s HealthStatus) rank() int {
	switch s {
	case StatusUnhealthy:
		return 2
	case StatusDegraded:
		return 1
	default:
		return 0
	}
}

// Health is one component's answer to a probe.
type Health struct {
	Name    string            `json:"name"`
	Status  HealthStatus      `json:"status"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// Component is a unit the Registry starts, stops and probes. Name must be
// stable and unique within one Registry.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// Description is the line a component contributes to the startup summary.
type Description struct {
	Name    string // falls back to Component.Name
	Type    string // "engine", "server", "telemetry"
	Details string
	Port    int // 0 when the component listens nowhere
}

// Describable components appear in the startup summary.
type Describable interface {
	Describe() Description
}
