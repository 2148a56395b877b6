package utils

import (
	"errors"
	"strings"
)

// UnknownValue is stored for optional device metadata the client did not send.
const UnknownValue = "Unknown"

// ValidationError represents a missing or malformed request field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Required returns a ValidationError when value is blank.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: field + " required"}
	}
	return nil
}

// OrUnknown trims value and falls back to UnknownValue when nothing is left.
func OrUnknown(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return UnknownValue
	}
	return value
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
