package config

import "fmt"

// ConfigError marks a malformed pipeline definition: empty axes, duplicate
// names, bad references, unparsable expressions. It is always detected
// before any step executes, and the CLI maps it to exit code 2.
type ConfigError struct {
	Msg string
	Err error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

// Unwrap exposes the underlying cause, if any.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError builds a ConfigError from a format string.
func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// WrapConfigError attaches a cause to a ConfigError message.
func WrapConfigError(err error, format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...), Err: err}
}
