package serializer

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnsupportedOperation marks a call the serializer variant does not
	// allow, e.g. create on an update-only serializer. It is an integration bug.
	ErrUnsupportedOperation = fmt.Errorf("serializer: %w", errors.ErrUnsupported)

	// ErrUnknownEntity is returned for entity names missing from the registry.
	ErrUnknownEntity = errors.New("serializer: unknown entity")

	// ErrNotValidated is returned when saving before a successful Validate.
	ErrNotValidated = errors.New("serializer: call Validate before Save")
)

// ValidationError carries user-facing messages keyed by field name.
// Object-level messages live under NonFieldErrors.
type ValidationError struct {
	Fields map[string][]string
}

const NonFieldErrors = "non_field_errors"

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 1 {
		return fmt.Sprintf("validation failed: %s: %s", keys[0], strings.Join(e.Fields[keys[0]], "; "))
	}
	return fmt.Sprintf("validation failed: %d fields", len(keys))
}

// Add appends msg to field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// First returns the first message in field order, for single-line envelopes.
func (e *ValidationError) First() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if len(e.Fields[k]) > 0 {
			return e.Fields[k][0]
		}
	}
	return "validation failed"
}

func (e *ValidationError) empty() bool { return e == nil || len(e.Fields) == 0 }

// NewValidationError builds a single-field error.
func NewValidationError(field, msg string) *ValidationError {
	ve := &ValidationError{}
	ve.Add(field, msg)
	return ve
}
