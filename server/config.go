package server

import (
	"sync"
	"time"

	"github.com/kbukum/whisperkit/config"
	"github.com/kbukum/whisperkit/server/middleware"
	"github.com/kbukum/whisperkit/validation"
)

// Config is the "server" section of the service configuration. Host, port
// and certificates fall back to the engine's host, port, ssl_certfile and
// ssl_keyfile options (see FromEngine).
type Config struct {
	Host         string                `yaml:"host" mapstructure:"host"`
	Port         int                   `yaml:"port" mapstructure:"port" validate:"gte=0,lte=65535"`
	ReadTimeout  time.Duration         `yaml:"read_timeout" mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration         `yaml:"write_timeout" mapstructure:"write_timeout" validate:"gte=0"`
	IdleTimeout  time.Duration         `yaml:"idle_timeout" mapstructure:"idle_timeout" validate:"gte=0"`
	MaxBodySize  string                `yaml:"max_body_size" mapstructure:"max_body_size" validate:"omitempty,bytesize"`
	CORS         middleware.CORSConfig `yaml:"cors" mapstructure:"cors"`
	CertFile     string                `yaml:"cert_file" mapstructure:"cert_file"`
	KeyFile      string                `yaml:"key_file" mapstructure:"key_file"`
}

// FromEngine fills the listen address and certificates from the engine
// options wherever the server section leaves them empty.
func (c Config) FromEngine(cfg config.Config) Config {
	if c.Host == "" {
		c.Host = cfg.Host
	}
	if c.Port == 0 {
		c.Port = cfg.Port
	}
	if c.CertFile == "" && c.KeyFile == "" && cfg.TLS() {
		c.CertFile, c.KeyFile = *cfg.SSLCertFile, *cfg.SSLKeyFile
	}
	return c
}

// TLS reports whether both a certificate and a key are configured.
func (c *Config) TLS() bool {
	return c.CertFile != "" && c.KeyFile != ""
}

func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 8000
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 15 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = time.Minute
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "10MB"
	}
	c.CORS.ApplyDefaults()
}

var registerRules = sync.OnceValue(func() error {
	return validation.RegisterStringRule("bytesize", "must be a size such as 512KB or 10MB", func(s string) bool {
		return middleware.ParseSize(s, -1) > 0
	})
})

func (c *Config) Validate() error {
	if err := registerRules(); err != nil {
		return err
	}
	if err := validation.Validate(c); err != nil {
		return err
	}
	return validation.NewChecker().
		Check((c.CertFile == "") == (c.KeyFile == ""), "cert_file", "cert_file and key_file must be set together").
		Err()
}
