package endpoint

import (
	"slices"
	"testing"

	"github.com/kbukum/whisperkit/component"
)

func TestOverall(t *testing.T) {
	tests := []struct {
		name        string
		components  []component.Health
		want        component.HealthStatus
		wantFailing []string
	}{
		{"no components", nil, component.StatusHealthy, nil},
		{
			"degraded engine",
			[]component.Health{
				{Name: "telemetry", Status: component.StatusHealthy},
				{Name: "engine", Status: component.StatusDegraded},
			},
			component.StatusDegraded, nil,
		},
		{
			"unhealthy wins over degraded",
			[]component.Health{
				{Name: "engine", Status: component.StatusUnhealthy},
				{Name: "http-server", Status: component.StatusDegraded},
			},
			component.StatusUnhealthy, []string{"engine"},
		},
		{
			"every failing component is named",
			[]component.Health{
				{Name: "engine", Status: component.StatusUnhealthy},
				{Name: "http-server", Status: component.StatusUnhealthy},
			},
			component.StatusUnhealthy, []string{"engine", "http-server"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, failing := Overall(tc.components)
			if got != tc.want {
				t.Errorf("status = %s, want %s", got, tc.want)
			}
			if !slices.Equal(failing, tc.wantFailing) {
				t.Errorf("failing = %v, want %v", failing, tc.wantFailing)
			}
		})
	}
}

func TestReadMemory(t *testing.T) {
	m := ReadMemory()
	if m.SysMB < m.AllocMB {
		t.Errorf("sys %d MiB below alloc %d MiB", m.SysMB, m.AllocMB)
	}
}
