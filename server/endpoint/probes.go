package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/whisperkit/component"
)

// HealthChecker collects the health of every registered component.
type HealthChecker func(ctx context.Context) []component.Health

// ProbeReport is the body of /health, /alive and /ready.
type ProbeReport struct {
	Status     string             `json:"status"`
	Service    string             `json:"service"`
	Timestamp  string             `json:"timestamp"`
	Failing    []string           `json:"failing,omitempty"`
	Components []component.Health `json:"components,omitempty"`
}

func newReport(service, status string) ProbeReport {
	return ProbeReport{
		Status:    status,
		Service:   service,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Overall folds component statuses into one: any unhealthy component makes
// the service unhealthy, otherwise any degraded one makes it degraded.
func Overall(components []component.Health) (component.HealthStatus, []string) {
	status := component.StatusHealthy
	var failing []string
	for _, h := range components {
		if h.Status.Worse(status) {
			status = h.Status
		}
		if h.Status == component.StatusUnhealthy {
			failing = append(failing, h.Name)
		}
	}
	return status, failing
}

func collect(c *gin.Context, checker HealthChecker) []component.Health {
	if checker == nil {
		return nil
	}
	return checker(c.Request.Context())
}

// Health reports every component. A degraded engine (warmup failed) still
// answers 200; an unhealthy component answers 503.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		components := collect(c, checker)
		status, failing := Overall(components)

		report := newReport(serviceName, string(status))
		report.Components = components
		report.Failing = failing

		code := http.StatusOK
		if status == component.StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, report)
	}
}

// Liveness answers as long as the process serves HTTP.
func Liveness(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, newReport(serviceName, "alive"))
	}
}

// Readiness is ready once no component is unhealthy, which in practice
// means the engine has been built.
func Readiness(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, failing := Overall(collect(c, checker))
		if status == component.StatusUnhealthy {
			report := newReport(serviceName, "not_ready")
			report.Failing = failing
			c.JSON(http.StatusServiceUnavailable, report)
			return
		}
		c.JSON(http.StatusOK, newReport(serviceName, "ready"))
	}
}
