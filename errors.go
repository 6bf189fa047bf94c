// File: twconfig/errors.go
package twconfig

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigNotFound is returned when the configuration file does not exist.
	// Builder treats it as non-fatal.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrUnknownFormat is returned when a file format cannot be determined.
	ErrUnknownFormat = errors.New("unknown configuration format")

	// ErrCLIParse wraps failures while parsing command-line overrides.
	ErrCLIParse = errors.New("failed to parse command-line overrides")
)

// ConfigurationError reports a structural or schema mismatch in a configuration
// document. Field is the dot path of the offending field, e.g.
// "pluginOptions.daisyui.themes" or "content[1]".
type ConfigurationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "configuration error: " + e.Message
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// fieldError is shorthand for building a ConfigurationError.
func fieldError(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
