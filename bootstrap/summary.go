package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/whisperkit/component"
)

var statusGlyph = map[component.HealthStatus]string{
	component.StatusHealthy:   "✅",
	component.StatusDegraded:  "⚠️",
	component.StatusUnhealthy: "❌",
}

func glyph(s component.HealthStatus) string {
	if g, ok := statusGlyph[s]; ok {
		return g
	}
	return "❓"
}

// Summary is the report printed once startup finishes.
type Summary struct {
	Service string
	Version string
	Took    time.Duration
}

func NewSummary(service, version string) *Summary {
	return &Summary{Service: service, Version: version}
}

// SetStartupDuration records how long startup took.
func (s *Summary) SetStartupDuration(d time.Duration) { s.Took = d }

// Write prints the component descriptions and their current health.
func (s *Summary) Write(ctx context.Context, w io.Writer, registry *component.Registry) {
	fmt.Fprintf(w, "\n%s %s ready in %.2fs\n", s.Service, s.Version, s.Took.Seconds())

	var health []component.Health
	if registry != nil {
		writeTree(w, "Components", describeLines(registry.Describe()))
		health = registry.HealthAll(ctx)
	}
	if len(health) == 0 {
		fmt.Fprintln(w, "\nNo components registered")
		return
	}

	healthy := 0
	lines := make([]string, len(health))
	for i, h := range health {
		if h.Status == component.StatusHealthy {
			healthy++
		}
		lines[i] = fmt.Sprintf("%s %s: %s", glyph(h.Status), h.Name, h.Status)
		if h.Message != "" {
			lines[i] += " (" + h.Message + ")"
		}
	}
	writeTree(w, fmt.Sprintf("Health %d/%d", healthy, len(health)), lines)
	fmt.Fprintln(w)
}

func describeLines(descs []component.Description) []string {
	lines := make([]string, len(descs))
	for i, d := range descs {
		details := d.Details
		if port := ":" + strconv.Itoa(d.Port); d.Port > 0 && !strings.Contains(details, port) {
			details += " (" + port + ")"
		}
		lines[i] = fmt.Sprintf("[%s] %s: %s", d.Type, d.Name, details)
	}
	return lines
}

func writeTree(w io.Writer, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)
	for i, l := range lines {
		branch := "├──"
		if i == len(lines)-1 {
			branch = "└──"
		}
		fmt.Fprintf(w, "   %s %s\n", branch, l)
	}
}
