package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/whisperkit/errors"
)

type sample struct {
	Task    string  `mapstructure:"task" validate:"oneof=transcribe translate"`
	MinSize float64 `mapstructure:"min_chunk_size" validate:"gt=0"`
	Port    int     `mapstructure:"port" validate:"min=0,max=65535"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      sample
		wantErr bool
		field   string
	}{
		{"valid", sample{Task: "transcribe", MinSize: 0.5, Port: 8000}, false, ""},
		{"bad task", sample{Task: "summarize", MinSize: 0.5}, true, "task"},
		{"zero chunk", sample{Task: "translate", MinSize: 0}, true, "min_chunk_size"},
		{"port range", sample{Task: "translate", MinSize: 1, Port: 70000}, true, "port"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.in)
			if !tc.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.HasCode(err, errors.ErrCodeConfiguration) {
				t.Errorf("expected CONFIGURATION_ERROR, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Errorf("expected error to name %q, got %q", tc.field, err.Error())
			}
		})
	}
}

func TestChecker(t *testing.T) {
	if err := NewChecker().Check(true, "a", "never").Err(); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}

	err := NewChecker().
		Check(false, "ssl_certfile", "requires ssl_keyfile").
		Check(true, "port", "ok").
		Err()
	if err == nil {
		t.Fatal("expected error")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	fields, _ := appErr.Details["fields"].([]FieldError)
	if len(fields) != 1 || fields[0].Field != "ssl_certfile" {
		t.Errorf("unexpected fields %+v", appErr.Details["fields"])
	}
}

type upload struct {
	Limit string `mapstructure:"max_body_size" validate:"omitempty,even_len"`
}

func TestRegisterStringRule(t *testing.T) {
	err := RegisterStringRule("even_len", "must have an even length", func(s string) bool { return len(s)%2 == 0 })
	if err != nil {
		t.Fatalf("RegisterStringRule: %v", err)
	}
	if err := Validate(upload{Limit: "10MB"}); err != nil {
		t.Errorf("10MB should pass: %v", err)
	}
	if err := Validate(upload{}); err != nil {
		t.Errorf("empty value should be skipped: %v", err)
	}
	err = Validate(upload{Limit: "1MB"})
	if err == nil || !strings.Contains(err.Error(), "max_body_size: must have an even length") {
		t.Errorf("err = %v", err)
	}
}

func TestOptionName_FallsBackToSnakeCase(t *testing.T) {
	type opts struct {
		WarmupFile string `validate:"required"`
	}
	err := Validate(opts{})
	if err == nil || !strings.Contains(err.Error(), "warmup_file") {
		t.Errorf("err = %v, want warmup_file", err)
	}
}
