package logger

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

// Config is the "logging" section of the service configuration.
type Config struct {
	Level     string `yaml:"level" mapstructure:"level"`
	Format    string `yaml:"format" mapstructure:"format"`
	Output    string `yaml:"output" mapstructure:"output"`
	NoColor   bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller    bool   `yaml:"caller" mapstructure:"caller"`
}

// levelAliases maps the engine's log_level spellings onto zerolog names.
var levelAliases = map[string]string{
	"warning":  "warn",
	"critical": "fatal",
}

var formats = []string{"json", "console", "pretty"}

// normalizeLevel lower-cases level and resolves aliases. Empty means info.
func normalizeLevel(level string) string {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return "info"
	}
	if alias, ok := levelAliases[level]; ok {
		return alias
	}
	return level
}

// ParseLevel accepts zerolog level names and the engine's upper-case
// spellings (DEBUG, INFO, WARNING, ERROR, CRITICAL).
func ParseLevel(level string) (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(normalizeLevel(level))
	if err != nil || lvl == zerolog.NoLevel || lvl == zerolog.Disabled {
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
	return lvl, nil
}

// ApplyDefaults normalizes the level and fills console output to stdout
// with timestamps.
func (c *Config) ApplyDefaults() {
	c.Level = normalizeLevel(c.Level)
	c.Format = strings.ToLower(c.Format)
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
	c.Timestamp = true
}

func (c *Config) Validate() error {
	if _, err := ParseLevel(c.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if !slices.Contains(formats, strings.ToLower(c.Format)) {
		return fmt.Errorf("logging.format must be one of %v (got: %s)", formats, c.Format)
	}
	return nil
}
