package httpclient

import (
	"time"

	"github.com/kbukum/whisperkit/logger"
	"github.com/kbukum/whisperkit/resilience"
	"github.com/kbukum/whisperkit/validation"
)

const (
	defaultTimeout          = 30 * time.Second
	defaultMaxResponseBytes = 32 << 20
)

// Config describes one upstream, usually an inference sidecar.
type Config struct {
	// Name labels log lines, e.g. "faster-whisper" or "pyannote".
	Name string `yaml:"name" mapstructure:"name"`
	// BaseURL is prepended to relative request paths.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	// Timeout bounds each attempt. Model loads need far more than the 30s
	// default on a cold cache.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	// MaxResponseBytes caps how much of a response body is read.
	MaxResponseBytes int64 `yaml:"max_response_bytes" mapstructure:"max_response_bytes" validate:"gte=0"`
	Headers          map[string]string `yaml:"headers" mapstructure:"headers"`
	// Retry is nil for single-shot clients.
	Retry  *resilience.RetryConfig `yaml:"-" mapstructure:"-" validate:"-"`
	Logger *logger.Logger          `yaml:"-" mapstructure:"-" validate:"-"`
}

func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "http"
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxResponseBytes == 0 {
		c.MaxResponseBytes = defaultMaxResponseBytes
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}
}

func (c *Config) Validate() error {
	return validation.Validate(c)
}

// DefaultRetryConfig retries timeouts, connection failures and 5xx
// answers, which is what a sidecar restarting looks like.
func DefaultRetryConfig() *resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.RetryIf = IsRetryable
	return &cfg
}
