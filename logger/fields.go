package logger

import "time"

// Keys every package uses for the same concept.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldSessionID = "session_id"
	FieldBackend   = "backend"
	FieldLanguage  = "language"
	FieldVariant   = "variant"
	FieldModel     = "model"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
	FieldPath      = "path"
	FieldURL       = "url"
)

// Fields turns alternating keys and values into a field map. Non-string
// keys and a trailing key without a value are dropped.
//
//	log.Info("backend loaded", logger.Fields(logger.FieldBackend, "faster-whisper", logger.FieldModel, "tiny"))
func Fields(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 1; i < len(kv); i += 2 {
		if k, ok := kv[i-1].(string); ok {
			m[k] = kv[i]
		}
	}
	return m
}

// ErrorFields tags a failed step with its operation name.
func ErrorFields(op string, err error) map[string]any {
	msg := "<nil>"
	if err != nil {
		msg = err.Error()
	}
	return Fields(FieldOperation, op, FieldError, msg)
}

// DurationFields tags a finished step with its wall time in milliseconds.
func DurationFields(op string, d time.Duration) map[string]any {
	return Fields(FieldOperation, op, FieldDuration, d.Milliseconds())
}
