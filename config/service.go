package config

import (
	"github.com/kbukum/whisperkit/errors"
	"github.com/kbukum/whisperkit/logger"
	"github.com/kbukum/whisperkit/validation"
)

// Environments a service may declare.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// ServiceConfig is the process-level part of config.yml. Applications
// embed it next to their own sections:
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Server server.Config `yaml:"server" mapstructure:"server"`
//	}
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string        `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging" validate:"-"`
	// Engine holds raw engine options; Resolve turns them into a Config.
	Engine map[string]any `yaml:"engine" mapstructure:"engine" validate:"-"`
}

func (c *ServiceConfig) GetServiceConfig() *ServiceConfig { return c }

// ApplyDefaults names the service whisperkit and puts it in development,
// where Debug is forced on.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "whisperkit"
	}
	if c.Environment == "" {
		c.Environment = EnvDevelopment
	}
	c.Debug = c.Debug || c.Environment == EnvDevelopment
	c.Logging.ApplyDefaults()
}

func (c *ServiceConfig) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return errors.Configuration(err.Error()).WithDetail("field", "logging")
	}
	return nil
}

// UseEngineLogLevel makes the engine's log_level drive process logging
// when the engine option was set explicitly or logging.level is empty.
func (c *ServiceConfig) UseEngineLogLevel(engine Config, explicit bool) {
	if explicit || c.Logging.Level == "" {
		c.Logging.Level = engine.LogLevel
	}
}
