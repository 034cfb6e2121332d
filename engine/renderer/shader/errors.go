package shader

import (
	"errors"
	"fmt"
)

// ErrNotBuilt is returned when a pipeline or bind group is requested from a
// shader before Build has succeeded.
var ErrNotBuilt = errors.New("shader has not been built")

// ParseError reports a malformed shader description, naming the offending
// field and value so load-time failures are directly actionable.
type ParseError struct {
	// Field is the description field that failed validation.
	Field string

	// Value is the offending value as it appeared in the description.
	Value string

	// Reason describes what was expected.
	Reason string
}

func (e *ParseError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("shader description: field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("shader description: field %q has invalid value %q: %s", e.Field, e.Value, e.Reason)
}

// parseErr builds a ParseError for an invalid enum keyword or malformed field.
func parseErr(field, value, reason string) *ParseError {
	return &ParseError{Field: field, Value: value, Reason: reason}
}
