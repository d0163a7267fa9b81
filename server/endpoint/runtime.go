package endpoint

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

const mib = 1 << 20

// BuildInfo is the body of /info.
type BuildInfo struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp"`
}

// MemoryStats reports heap figures in MiB. Comparing heap_idle_mb with
// released_mb before and after POST /v1/engine/free shows what the
// runtime handed back to the OS.
type MemoryStats struct {
	AllocMB    uint64 `json:"alloc_mb"`
	HeapIdleMB uint64 `json:"heap_idle_mb"`
	ReleasedMB uint64 `json:"released_mb"`
	SysMB      uint64 `json:"sys_mb"`
	GCRuns     uint32 `json:"gc_runs"`
}

// RuntimeStats is the body of /metrics.
type RuntimeStats struct {
	Timestamp  string      `json:"timestamp"`
	Goroutines int         `json:"goroutines"`
	Memory     MemoryStats `json:"memory"`
}

// Info reports the service name, version and uptime.
func Info(serviceName, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, BuildInfo{
			Service:   serviceName,
			Version:   version,
			GoVersion: runtime.Version(),
			Uptime:    time.Since(startTime).Round(time.Second).String(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// ReadMemory samples the runtime allocator.
func ReadMemory() MemoryStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemoryStats{
		AllocMB:    m.Alloc / mib,
		HeapIdleMB: m.HeapIdle / mib,
		ReleasedMB: m.HeapReleased / mib,
		SysMB:      m.Sys / mib,
		GCRuns:     m.NumGC,
	}
}

// Metrics reports goroutine and memory figures.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, RuntimeStats{
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			Goroutines: runtime.NumGoroutine(),
			Memory:     ReadMemory(),
		})
	}
}
