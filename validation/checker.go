package validation

import (
	"strings"

	"github.com/kbukum/whisperkit/errors"
)

// Checker collects cross-field validation failures.
type Checker struct {
	errs []FieldError
}

// NewChecker creates an empty Checker.
func NewChecker() *Checker {
	return &Checker{}
}

// Check records message against field when ok is false.
func (c *Checker) Check(ok bool, field, message string) *Checker {
	if !ok {
		c.errs = append(c.errs, FieldError{Field: field, Message: message})
	}
	return c
}

// Err returns a CONFIGURATION_ERROR describing every failed check, or nil.
func (c *Checker) Err() error {
	if len(c.errs) == 0 {
		return nil
	}
	messages := make([]string, len(c.errs))
	for i, e := range c.errs {
		messages[i] = e.Field + ": " + e.Message
	}
	return errors.Configuration(strings.Join(messages, "; ")).WithDetail("fields", c.errs)
}
