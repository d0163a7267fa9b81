package bootstrap

import (
	"github.com/kbukum/whisperkit/config"
)

// Config is what NewApp needs from a service configuration. The whisperkit
// command's AppConfig embeds config.ServiceConfig for the name, version
// and logging settings and adds its own sections:
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//
//	    Server    server.Config        `yaml:"server" mapstructure:"server"`
//	    Telemetry observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
//	}
//
// ApplyDefaults and Validate must cover the added sections too.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
