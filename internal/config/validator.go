package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/egigoka/telegram-update-checker/internal/common"
	"github.com/go-playground/validator/v10"
)

// oneOf builds a validator func accepting the empty string and the given
// values, compared case-insensitively.
func oneOf(values ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := strings.ToLower(fl.Field().String())
		if value == "" {
			return true
		}
		for _, allowed := range values {
			if value == strings.ToLower(allowed) {
				return true
			}
		}
		return false
	}
}

// newValidator returns a validator with the custom rules used by the config tags
func newValidator() *validator.Validate {
	validate := validator.New()

	_ = validate.RegisterValidation("loglevel", oneOf("debug", "info", "warn", "error", "fatal", "panic"))
	_ = validate.RegisterValidation("logformat", oneOf("console", "text", "json"))
	_ = validate.RegisterValidation("mode", oneOf(ModeOnetime, ModeAutomated))
	_ = validate.RegisterValidation("normalizer", oneOf(NormalizerNone, NormalizerHTML, NormalizerAuto))
	_ = validate.RegisterValidation("offsetcommit", oneOf(OffsetCommitBeforeDispatch, OffsetCommitAfterDispatch))
	_ = validate.RegisterValidation("parsemode", oneOf(ParseModeHTML))

	return validate
}

// ValidateConfig performs validation on the GlobalConfig structure.
func ValidateConfig(cfg *GlobalConfig) error {
	err := newValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("configuration validation error: %w", err)
	}

	var validationErrorMessages []string
	for _, e := range errs {
		msg := fmt.Sprintf("Validation failed for '%s': rule '%s'", strings.TrimPrefix(e.Namespace(), "GlobalConfig."), e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		if e.Value() != nil && e.Value() != "" {
			msg += fmt.Sprintf(", actual: '%v'", e.Value())
		}
		validationErrorMessages = append(validationErrorMessages, msg)
	}
	return fmt.Errorf("configuration validation failed: %w:\n  %s", common.ErrInvalidConfiguration, strings.Join(validationErrorMessages, "\n  "))
}
