package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/kbukum/whisperkit/config"
	"github.com/kbukum/whisperkit/server"
)

func parse(t *testing.T, args ...string) (map[string]any, error) {
	t.Helper()
	fs, cli := newFlagSet()
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse(%v): %v", args, err)
	}
	return engineOverrides(fs, cli)
}

func TestEngineOverrides(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want map[string]any
	}{
		{"nothing set", nil, map[string]any{}},
		{
			name: "typed values",
			args: []string{"--model", "base", "--min-chunk-size", "1", "--port", "9000", "--vac"},
			want: map[string]any{"model": "base", "min_chunk_size": 1.0, "port": 9000, "vac": true},
		},
		{
			name: "aliases",
			args: []string{"--no-vad", "--no-transcription", "--language", "de"},
			want: map[string]any{"no_vad": true, "no_transcription": true, "language": "de"},
		},
		{
			name: "optional option set empty",
			args: []string{"--warmup-file", ""},
			want: map[string]any{"warmup_file": ""},
		},
		{
			name: "pass-through and process flags",
			args: []string{"--option", "openai_base_url=http://localhost:9999/v1", "--print-config", "--config", "svc.yml"},
			want: map[string]any{"openai_base_url": "http://localhost:9999/v1"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parse(t, tc.args...)
			if err != nil {
				t.Fatalf("engineOverrides: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("overrides = %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestEngineOverrides_Conflict(t *testing.T) {
	if _, err := parse(t, "--model", "base", "--option", "model=small"); err == nil {
		t.Fatal("expected an error for an option given twice")
	}
}

func TestEngineOverrides_Resolve(t *testing.T) {
	overrides, err := parse(t, "--no-vad", "--language", "de", "--warmup-file", "", "--buffer-trimming", "sentence")
	if err != nil {
		t.Fatalf("engineOverrides: %v", err)
	}
	cfg, err := config.Resolve(overrides)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.VAD || cfg.Lan != "de" || cfg.WarmupFile == nil || *cfg.WarmupFile != "" || !cfg.SentenceTrimming() {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestMergeOverrides(t *testing.T) {
	file := map[string]any{"Model": "base", "lan": "fr"}
	flags := map[string]any{"model": "small"}
	got := mergeOverrides(file, flags)
	want := map[string]any{"model": "small", "lan": "fr"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("merge = %v, want %v", got, want)
	}
}

func TestPrintConfig(t *testing.T) {
	cfg, err := config.Resolve(map[string]any{"openai_api_key": "sk-secret", "openai_base_url": "http://localhost:9999/v1"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	var out bytes.Buffer
	if err := printConfig(&out, cfg); err != nil {
		t.Fatalf("printConfig: %v", err)
	}
	got := out.String()
	for _, want := range []string{"backend: faster-whisper", "model: tiny", "warmup_timeout: 5s", "extra:", "openai_base_url: http://localhost:9999/v1"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "sk-secret") {
		t.Error("API key printed")
	}
}

func TestRun_PrintConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yml")
	body := "name: whisperkit\nengine:\n  model: base\n  lan: fr\n"
	if err := os.WriteFile(file, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var out bytes.Buffer
	err := run(context.Background(), []string{"--config", file, "--lan", "de", "--print-config"}, &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "model: base") || !strings.Contains(out.String(), "lan: de") {
		t.Errorf("flags and file not merged:\n%s", out.String())
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--no-such-flag"}},
		{"missing config file", []string{"--config", filepath.Join(t.TempDir(), "missing.yml"), "--print-config"}},
		{"invalid option", []string{"--task", "summarize", "--print-config"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := run(context.Background(), tc.args, &bytes.Buffer{}); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestAppConfig(t *testing.T) {
	cfg := AppConfig{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate defaults: %v", err)
	}
	if cfg.Name != "whisperkit" || cfg.Server.Port != 8000 {
		t.Errorf("defaults not applied: %+v", cfg)
	}

	cfg.Server = server.Config{CertFile: "/etc/tls/cert.pem"}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for a certificate without key")
	}
}
