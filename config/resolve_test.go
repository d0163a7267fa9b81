package config

import (
	"testing"
	"time"

	"github.com/kbukum/whisperkit/errors"
)

func TestResolve_Defaults(t *testing.T) {
	cfg, err := Resolve(nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Model != "tiny" || cfg.Lan != "auto" || cfg.Backend != "faster-whisper" {
		t.Errorf("unexpected defaults: model=%q lan=%q backend=%q", cfg.Model, cfg.Lan, cfg.Backend)
	}
	if !cfg.Transcription || !cfg.VAD || cfg.VAC {
		t.Errorf("unexpected flags: transcription=%v vad=%v vac=%v", cfg.Transcription, cfg.VAD, cfg.VAC)
	}
	if cfg.MinChunkSize != 0.5 || cfg.BufferTrimmingSec != 15 || cfg.VACChunkSize != 0.04 {
		t.Errorf("unexpected numeric defaults: %+v", cfg)
	}
	if cfg.WarmupFile != nil || cfg.MaxContextTokens != nil || cfg.DecoderType != nil {
		t.Error("expected nullable options to be unset")
	}
	if cfg.WarmupTimeout != 5*time.Second {
		t.Errorf("expected 5s warmup timeout, got %s", cfg.WarmupTimeout)
	}
	if cfg.Addr() != "localhost:8000" {
		t.Errorf("unexpected addr %q", cfg.Addr())
	}
}

func TestResolve_NegationAliases(t *testing.T) {
	tests := []struct {
		name              string
		overrides         map[string]any
		wantTranscription bool
		wantVAD           bool
	}{
		{"none", map[string]any{}, true, true},
		{"explicit", map[string]any{"transcription": false, "vad": false}, false, false},
		{"no_transcription", map[string]any{"no_transcription": true}, false, true},
		{"no_transcription false", map[string]any{"no_transcription": false}, true, true},
		{"alias wins", map[string]any{"vad": true, "no_vad": true}, true, false},
		{"alias wins other way", map[string]any{"transcription": false, "no_transcription": false}, true, true},
		{"string alias", map[string]any{"no_vad": "true"}, true, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Resolve(tc.overrides)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if cfg.Transcription != tc.wantTranscription {
				t.Errorf("transcription: expected %v, got %v", tc.wantTranscription, cfg.Transcription)
			}
			if cfg.VAD != tc.wantVAD {
				t.Errorf("vad: expected %v, got %v", tc.wantVAD, cfg.VAD)
			}
		})
	}
}

func TestResolve_LanguageAlias(t *testing.T) {
	cfg, err := Resolve(map[string]any{"lan": "fr", "language": "de"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Lan != "de" {
		t.Errorf("expected language alias to win, got %q", cfg.Lan)
	}
	if _, ok := cfg.Extra("language"); ok {
		t.Error("alias key must not be kept")
	}
}

func TestResolve_DoesNotMutateOverrides(t *testing.T) {
	in := map[string]any{"no_vad": true, "language": "en"}
	if _, err := Resolve(in); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(in) != 2 || in["no_vad"] != true || in["language"] != "en" {
		t.Errorf("overrides were modified: %v", in)
	}
}

func TestResolve_UnknownKeysPassThrough(t *testing.T) {
	cfg, err := Resolve(map[string]any{"future_knob": 3, "another": "x"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	v, ok := cfg.Extra("future_knob")
	if !ok || v != 3 {
		t.Errorf("expected future_knob=3, got %v (%v)", v, ok)
	}
	keys := cfg.ExtraKeys()
	if len(keys) != 2 || keys[0] != "another" || keys[1] != "future_knob" {
		t.Errorf("unexpected extra keys %v", keys)
	}
}

func TestResolve_WeakTyping(t *testing.T) {
	cfg, err := Resolve(map[string]any{
		"port":               "9000",
		"min_chunk_size":     "1",
		"vac":                "true",
		"warmup_file":        "",
		"max_context_tokens": 64,
		"warmup_timeout":     "250ms",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Port != 9000 || cfg.MinChunkSize != 1 || !cfg.VAC {
		t.Errorf("weak decode failed: %+v", cfg)
	}
	if cfg.WarmupFile == nil || *cfg.WarmupFile != "" {
		t.Error("expected explicit empty warmup_file")
	}
	if cfg.MaxContextTokens == nil || *cfg.MaxContextTokens != 64 {
		t.Error("expected max_context_tokens=64")
	}
	if cfg.WarmupTimeout != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %s", cfg.WarmupTimeout)
	}
}

func TestResolve_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
	}{
		{"bad task", map[string]any{"task": "summarize"}},
		{"bad trimming", map[string]any{"buffer_trimming": "word"}},
		{"zero chunk", map[string]any{"min_chunk_size": 0}},
		{"port range", map[string]any{"port": 70000}},
		{"undecodable", map[string]any{"port": "eighty"}},
		{"bad alias", map[string]any{"no_vad": "maybe"}},
		{"cert without key", map[string]any{"ssl_certfile": "/tmp/cert.pem"}},
		{"bad log level", map[string]any{"log_level": "LOUD"}},
		{"min over max", map[string]any{"audio_min_len": 40.0}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(tc.overrides)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.HasCode(err, errors.ErrCodeConfiguration) {
				t.Errorf("expected CONFIGURATION_ERROR, got %v", err)
			}
		})
	}
}

func TestResolve_LogLevelCaseInsensitive(t *testing.T) {
	for _, lvl := range []string{"INFO", "warning", "CRITICAL"} {
		if _, err := Resolve(map[string]any{"log_level": lvl}); err != nil {
			t.Errorf("%s: unexpected error %v", lvl, err)
		}
	}
}

func TestConfigHelpers(t *testing.T) {
	cfg, err := Resolve(map[string]any{"task": "translate", "buffer_trimming": "sentence"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !cfg.Translate() || !cfg.SentenceTrimming() {
		t.Error("expected translate and sentence trimming")
	}
	if cfg.TLS() {
		t.Error("expected TLS off")
	}
	if StringOr(cfg.ModelDir, "none") != "none" {
		t.Error("expected fallback for nil pointer")
	}
}
