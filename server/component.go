package server

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/kbukum/whisperkit/component"
)

const componentName = "http-server"

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component runs a Server under a component.Registry.
type Component struct {
	server  *Server
	started atomic.Bool
}

// NewComponent returns a component backed by s.
func NewComponent(s *Server) *Component {
	return &Component{server: s}
}

func (sc *Component) Name() string { return componentName }

func (sc *Component) Start(ctx context.Context) error {
	if err := sc.server.Start(ctx); err != nil {
		return err
	}
	sc.started.Store(true)
	return nil
}

func (sc *Component) Stop(ctx context.Context) error {
	if !sc.started.Swap(false) {
		return nil
	}
	return sc.server.Stop(ctx)
}

func (sc *Component) Health(ctx context.Context) component.Health {
	if !sc.started.Load() {
		return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: "HTTP server not started"}
	}
	return component.Health{Name: componentName, Status: component.StatusHealthy}
}

// Describe reports the listen address for the startup summary.
func (sc *Component) Describe() component.Description {
	scheme := "http"
	if sc.server.cfg.TLS() {
		scheme = "https"
	}
	return component.Description{
		Name:    "HTTP Server",
		Type:    "server",
		Details: fmt.Sprintf("%s://%s", scheme, sc.server.Addr()),
		Port:    sc.server.cfg.Port,
	}
}
