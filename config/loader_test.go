package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/whisperkit/errors"
	"github.com/kbukum/whisperkit/logger"
)

type appConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
}

func TestLoadConfig_ReadsEngineSection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	yml := "name: whisperkit\nenvironment: production\nengine:\n  model: small\n  no_vad: true\n  lan: de\n"
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}

	var cfg appConfig
	if err := LoadConfig("whisperkit", &cfg, WithConfigFile(path), WithEnvFile(filepath.Join(dir, "missing.env"))); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Environment != "production" || cfg.Debug {
		t.Errorf("unexpected service fields %+v", cfg.ServiceConfig)
	}

	resolved, err := Resolve(cfg.Engine)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Model != "small" || resolved.VAD || resolved.Lan != "de" {
		t.Errorf("unexpected engine config model=%q vad=%v lan=%q", resolved.Model, resolved.VAD, resolved.Lan)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte("engine:\n  model: small\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WKTEST_ENGINE_MODEL", "large-v3")

	var cfg appConfig
	if err := LoadConfig("wktest", &cfg, WithConfigFile(path), WithEnvFile(filepath.Join(dir, "none"))); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got := cfg.Engine["model"]; got != "large-v3" {
		t.Errorf("expected env override, got %v", got)
	}
}

func TestLoadConfig_ExplicitMissingFileFails(t *testing.T) {
	var cfg appConfig
	err := LoadConfig("whisperkit", &cfg, WithConfigFile(filepath.Join(t.TempDir(), "nope.yml")))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestServiceConfig_Validate(t *testing.T) {
	cfg := ServiceConfig{Environment: "qa"}
	cfg.ApplyDefaults()
	if cfg.Name != "whisperkit" {
		t.Errorf("expected default name, got %q", cfg.Name)
	}
	if err := cfg.Validate(); !errors.HasCode(err, errors.ErrCodeConfiguration) || !strings.Contains(err.Error(), "environment") {
		t.Errorf("err = %v, want environment CONFIGURATION_ERROR", err)
	}
}

func TestServiceConfig_UseEngineLogLevel(t *testing.T) {
	engine := Config{LogLevel: "DEBUG"}
	tests := []struct {
		name     string
		level    string
		explicit bool
		want     string
	}{
		{"empty logging level adopts engine", "", false, "DEBUG"},
		{"configured level wins over default", "warn", false, "warn"},
		{"explicit engine option wins", "warn", true, "DEBUG"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := ServiceConfig{Logging: logger.Config{Level: tc.level}}
			cfg.UseEngineLogLevel(engine, tc.explicit)
			if cfg.Logging.Level != tc.want {
				t.Errorf("level = %q, want %q", cfg.Logging.Level, tc.want)
			}
		})
	}
}

func TestEnvKeyVariants(t *testing.T) {
	got := envKeyVariants("ENGINE_MIN_CHUNK_SIZE")
	want := map[string]bool{
		"engine_min_chunk_size":  true,
		"engine.min_chunk_size":  true,
		"engine.min.chunk.size":  true,
		"engine.min.chunk_size":  true,
		"engine.min.chunk.size_": false,
	}
	found := map[string]bool{}
	for _, v := range got {
		found[v] = true
	}
	for k, expected := range want {
		if found[k] != expected {
			t.Errorf("variant %q: expected present=%v", k, expected)
		}
	}
}
