package config

import (
	"fmt"
	"strconv"

	"github.com/go-viper/mapstructure/v2"

	"github.com/kbukum/whisperkit/errors"
	"github.com/kbukum/whisperkit/logger"
	"github.com/kbukum/whisperkit/validation"
)

// Resolve merges overrides over the default table, applies the alias keys
// and returns a validated snapshot.
//
// Aliases are applied after the merge, so no_transcription beats an
// explicit transcription value (and likewise no_vad and language).
// Keys with no typed field are kept and exposed through Extra.
func Resolve(overrides map[string]any) (Config, error) {
	merged := Defaults()
	for k, v := range overrides {
		merged[k] = v
	}

	if err := applyNegation(merged, AliasNoTranscription, "transcription"); err != nil {
		return Config{}, err
	}
	if err := applyNegation(merged, AliasNoVAD, "vad"); err != nil {
		return Config{}, err
	}
	if v, ok := merged[AliasLanguage]; ok {
		merged["lan"] = v
		delete(merged, AliasLanguage)
	}

	var cfg Config
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		Metadata:         &md,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return Config{}, errors.Internal(err)
	}
	if err := dec.Decode(merged); err != nil {
		return Config{}, errors.Configuration("decode options").WithCause(err)
	}

	if len(md.Unused) > 0 {
		cfg.extra = make(map[string]any, len(md.Unused))
		for _, k := range md.Unused {
			cfg.extra[k] = merged[k]
		}
	}

	if err := validation.Validate(cfg); err != nil {
		return Config{}, err
	}
	if err := check(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func check(cfg Config) error {
	_, levelErr := logger.ParseLevel(cfg.LogLevel)
	return validation.NewChecker().
		Check(levelErr == nil, "log_level", "must be one of DEBUG, INFO, WARNING, ERROR, CRITICAL").
		Check((cfg.SSLCertFile == nil) == (cfg.SSLKeyFile == nil), "ssl_certfile", "ssl_certfile and ssl_keyfile must be set together").
		Check(cfg.AudioMinLen <= cfg.AudioMaxLen, "audio_min_len", "must not exceed audio_max_len").
		Err()
}

func applyNegation(m map[string]any, alias, target string) error {
	v, ok := m[alias]
	if !ok {
		return nil
	}
	delete(m, alias)
	b, err := toBool(v)
	if err != nil {
		return errors.Configuration(fmt.Sprintf("%s: %v", alias, err)).WithDetail("field", alias)
	}
	m[target] = !b
	return nil
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		return strconv.ParseBool(b)
	case int:
		return b != 0, nil
	case int64:
		return b != 0, nil
	case float64:
		return b != 0, nil
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("cannot use %T as a boolean", v)
	}
}
