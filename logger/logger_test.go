package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestConfigApplyDefaults(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "info"},
		{"DEBUG", "debug"},
		{"WARNING", "warn"},
		{"CRITICAL", "fatal"},
		{"error", "error"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			cfg := Config{Level: tc.in}
			cfg.ApplyDefaults()
			if cfg.Level != tc.want {
				t.Errorf("expected %q, got %q", tc.want, cfg.Level)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("expected valid config, got %v", err)
			}
		})
	}
}

func TestConfigValidateRejectsUnknownFormat(t *testing.T) {
	cfg := Config{Level: "info", Format: "xml"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewWithWriter_WritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "debug").WithComponent("engine")

	l.Info("backend loaded", Fields(FieldBackend, "faster-whisper", FieldModel, "tiny"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "backend loaded" {
		t.Errorf("unexpected message %v", entry["message"])
	}
	if entry[FieldComponent] != "engine" {
		t.Errorf("expected component=engine, got %v", entry[FieldComponent])
	}
	if entry[FieldBackend] != "faster-whisper" {
		t.Errorf("expected backend field, got %v", entry[FieldBackend])
	}
}

func TestNewWithWriter_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn")
	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn output, got %q", buf.String())
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf, "info").WithError(errors.New("boom")).Error("failed")
	if !strings.Contains(buf.String(), `"error":"boom"`) {
		t.Errorf("expected error field, got %q", buf.String())
	}
}

func TestSetLevel(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	SetGlobalLogger(NewWithWriter(&bytes.Buffer{}, "info"))
	if err := SetLevel("DEBUG"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if GetGlobalLogger().Level() != zerolog.DebugLevel {
		t.Errorf("expected debug level, got %s", GetGlobalLogger().Level())
	}
	if err := SetLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestDurationFields(t *testing.T) {
	f := DurationFields("load", 1500*time.Millisecond)
	if f[FieldOperation] != "load" {
		t.Errorf("expected operation=load, got %v", f[FieldOperation])
	}
	if f[FieldDuration] != int64(1500) {
		t.Errorf("expected 1500ms, got %v", f[FieldDuration])
	}
}

func TestFieldsIgnoresDanglingKey(t *testing.T) {
	f := Fields("a", 1, "b")
	if len(f) != 1 || f["a"] != 1 {
		t.Errorf("unexpected fields %v", f)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{" Warning ", zerolog.WarnLevel, false},
		{"CRITICAL", zerolog.FatalLevel, false},
		{"trace", zerolog.TraceLevel, false},
		{"disabled", zerolog.InfoLevel, true},
		{"verbose", zerolog.InfoLevel, true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseLevel(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("level = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestErrorFields_NilError(t *testing.T) {
	f := ErrorFields("warmup", nil)
	if f[FieldError] != "<nil>" || f[FieldOperation] != "warmup" {
		t.Errorf("unexpected fields %v", f)
	}
}
