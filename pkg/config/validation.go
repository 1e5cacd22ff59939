package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate checks the configuration against the struct-level validation
// tags plus a few cross-field rules the tags cannot express.
//
// Validation does not normalize values; normalization (log level casing,
// defaults) belongs to ApplyDefaults.
func Validate(cfg *Config) error {
	validate := validator.New()

	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return fmt.Errorf("invalid configuration: %s", formatValidationErrors(fieldErrs))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Telemetry endpoint is only meaningful (and required) when enabled.
	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return fmt.Errorf("invalid configuration: telemetry is enabled but endpoint is empty")
	}

	// An admin password hash without a known format can never authenticate.
	if cfg.Admin.PasswordHash != "" && cfg.Admin.PasswordFormat == "" {
		return fmt.Errorf("invalid configuration: admin password_hash is set but password_format is empty")
	}

	return nil
}

// formatValidationErrors renders validator errors as one readable line per
// failed field, e.g. "Config.Logging.Level failed on 'oneof'".
func formatValidationErrors(errs validator.ValidationErrors) string {
	messages := make([]string, 0, len(errs))
	for _, fieldErr := range errs {
		msg := fmt.Sprintf("%s failed on '%s'", fieldErr.Namespace(), fieldErr.Tag())
		if fieldErr.Param() != "" {
			msg += fmt.Sprintf(" (param: %s)", fieldErr.Param())
		}
		messages = append(messages, msg)
	}
	return strings.Join(messages, "; ")
}
