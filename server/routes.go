package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/whisperkit/engine"
	"github.com/kbukum/whisperkit/errors"
	"github.com/kbukum/whisperkit/logger"
	"github.com/kbukum/whisperkit/server/endpoint"
	"github.com/kbukum/whisperkit/server/middleware"
)

// DataResponse wraps successful JSON bodies.
type DataResponse struct {
	Data any `json:"data"`
}

// RegisterDefaultEndpoints mounts /health, /alive, /ready, /info and
// /metrics.
func (s *Server) RegisterDefaultEndpoints(serviceName, version string, checker endpoint.HealthChecker) {
	s.router.GET("/health", endpoint.Health(serviceName, checker))
	s.router.GET("/alive", endpoint.Liveness(serviceName))
	s.router.GET("/ready", endpoint.Readiness(serviceName, checker))
	s.router.GET("/info", endpoint.Info(serviceName, version))
	s.router.GET("/metrics", endpoint.Metrics())
}

// RegisterEngine mounts the engine status and free endpoints. Both answer
// 503 ENGINE_NOT_READY until holder has built an engine.
func (s *Server) RegisterEngine(holder *engine.Holder) {
	g := s.router.Group("/v1/engine")
	g.GET("", s.engineInfo(holder))
	g.POST("/free", s.engineFree(holder))
}

func (s *Server) engineInfo(holder *engine.Holder) gin.HandlerFunc {
	return func(c *gin.Context) {
		e, err := holder.Current()
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, DataResponse{Data: e.Info()})
	}
}

func (s *Server) engineFree(holder *engine.Holder) gin.HandlerFunc {
	return func(c *gin.Context) {
		e, err := holder.Current()
		if err != nil {
			respondError(c, err)
			return
		}
		before := endpoint.ReadMemory()
		e.Free()
		after := endpoint.ReadMemory()
		s.log.Info("engine freed", logger.Fields(
			logger.FieldRequestID, c.GetHeader(middleware.RequestIDHeader),
			"heap_idle_mb", after.HeapIdleMB,
			"released_mb_before", before.ReleasedMB,
			"released_mb_after", after.ReleasedMB,
		))
		c.Status(http.StatusNoContent)
	}
}

func respondError(c *gin.Context, err error) {
	status, body := errors.Response(err, c.GetHeader(middleware.RequestIDHeader))
	c.JSON(status, body)
}
