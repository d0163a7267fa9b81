// Package validation checks typed configuration structs.
//
// Struct tags (go-playground/validator) cover per-field constraints, and the
// programmatic Checker covers cross-field rules. Both report failures as a
// CONFIGURATION_ERROR AppError naming the offending option keys.
//
//	type Options struct {
//	    Task string `mapstructure:"task" validate:"oneof=transcribe translate"`
//	}
//	err := validation.Validate(opts)
package validation
