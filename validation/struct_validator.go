package validation

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/whisperkit/errors"
)

// FieldError names one option that failed and how.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	mu       sync.RWMutex
	messages = map[string]string{
		"required": "is required",
		"url":      "must be a valid URL",
	}
	// prefixes are joined with the tag parameter.
	prefixes = map[string]string{
		"oneof": "must be one of: ",
		"gt":    "must be greater than ",
		"gte":   "must be at least ",
		"min":   "must be at least ",
		"lte":   "must be at most ",
		"max":   "must be at most ",
	}
)

var engine = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(optionName)
	return v
})

// optionName reports fields under their mapstructure key, the name users
// put in config files and flags.
func optionName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
	if name == "" || name == "-" {
		return snake(f.Name)
	}
	return name
}

// RegisterStringRule adds a validate tag for string fields. message is
// reported when ok returns false.
func RegisterStringRule(tag, message string, ok func(string) bool) error {
	err := engine().RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return ok(fl.Field().String())
	})
	if err != nil {
		return err
	}
	mu.Lock()
	messages[tag] = message
	mu.Unlock()
	return nil
}

// Validate checks s against its validate tags and returns a
// CONFIGURATION_ERROR listing every failing option.
func Validate(s any) error {
	err := engine().Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Configuration("validation failed").WithCause(err)
	}

	c := NewChecker()
	for _, fe := range verrs {
		c.Check(false, fe.Field(), describe(fe))
	}
	return c.Err()
}

func describe(fe validator.FieldError) string {
	mu.RLock()
	defer mu.RUnlock()
	if msg, ok := messages[fe.Tag()]; ok {
		return msg
	}
	if p, ok := prefixes[fe.Tag()]; ok {
		return p + fe.Param()
	}
	return "is invalid"
}

func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
