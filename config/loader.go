package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/whisperkit/logger"
)

// FileSystem abstracts the file operations the loader needs.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem on the OS.
type RealFileSystem struct{}

func (RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// LoaderConfig holds loader dependencies and explicit file paths.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
	// EnvPrefix limits environment binding to variables with this prefix.
	// WHISPERKIT_ENGINE_MODEL binds engine.model. Defaults to the upper-cased service name.
	EnvPrefix string
}

// LoaderOption configures LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix overrides the environment variable prefix.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = prefix }
}

// LoadConfig loads a service's config.yml and .env into cfg.
// Explicit paths win; otherwise standard locations are searched.
// A config file that was asked for explicitly but cannot be read is an error.
func LoadConfig(serviceName string, cfg any, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: RealFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.EnvPrefix == "" {
		lc.EnvPrefix = strings.ToUpper(strings.ReplaceAll(serviceName, "-", "_"))
	}

	explicit := lc.ConfigFile != ""
	configFile := lc.ConfigFile
	if configFile == "" {
		configFile = firstExisting(lc.FileSystem, configSearchPaths(serviceName))
	}
	envFile := lc.EnvFile
	if envFile == "" {
		envFile = firstExisting(lc.FileSystem, envSearchPaths(serviceName))
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			if explicit {
				return fmt.Errorf("read config file %s: %w", configFile, err)
			}
			logger.Warn("failed to load config file", logger.Fields(logger.FieldPath, configFile, logger.FieldError, err.Error()))
		}
	}

	if envFile != "" && lc.FileSystem.Exists(envFile) {
		if err := lc.FileSystem.LoadEnv(envFile); err != nil {
			logger.Warn("failed to load .env file", logger.Fields(logger.FieldPath, envFile, logger.FieldError, err.Error()))
		}
	}
	bindEnv(v, lc.EnvPrefix)

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshal config for service %s: %w", serviceName, err)
	}
	return nil
}

func configSearchPaths(serviceName string) []string {
	return []string{
		filepath.Join("cmd", serviceName, "config.yml"),
		filepath.Join("..", "cmd", serviceName, "config.yml"),
		filepath.Join("config", "config.yml"),
		"config.yml",
	}
}

func envSearchPaths(serviceName string) []string {
	var paths []string
	for _, name := range []string{".env." + serviceName, ".env"} {
		paths = append(paths,
			filepath.Join("cmd", serviceName, name),
			filepath.Join("config", name),
			name,
		)
	}
	return paths
}

func firstExisting(fs FileSystem, paths []string) string {
	for _, p := range paths {
		if fs.Exists(p) {
			return p
		}
	}
	return ""
}

// bindEnv copies prefixed environment variables into v under every plausible
// key spelling, since option names themselves contain underscores.
func bindEnv(v *viper.Viper, prefix string) {
	p := prefix + "_"
	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(key, p) {
			continue
		}
		for _, variant := range envKeyVariants(strings.TrimPrefix(key, p)) {
			v.Set(variant, value)
		}
	}
}

// envKeyVariants expands ENGINE_MIN_CHUNK_SIZE into
// [engine_min_chunk_size, engine.min_chunk_size, engine.min.chunk_size, ...].
func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	if len(parts) <= 1 {
		return []string{lower}
	}

	seen := map[string]bool{}
	var variants []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			variants = append(variants, s)
		}
	}
	add(lower)
	add(strings.Join(parts, "."))
	for i := 1; i < len(parts); i++ {
		add(strings.Join(parts[:i], ".") + "." + strings.Join(parts[i:], "_"))
	}
	return variants
}
