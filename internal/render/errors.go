package render

import (
	"fmt"

	oerrors "github.com/catalogbridge/ckan2csw/internal/errors"
)

// MissingFieldError reports a record field a template declared required.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("required field %q is missing or empty", e.Field)
}

func (e *MissingFieldError) Unwrap() error {
	return oerrors.ErrValidation
}

// JSONParseError reports template output that could not be read back as a
// canonical model even after lenient cleanup.
type JSONParseError struct {
	Template string
	Offset   int64
	Cause    error
}

func (e *JSONParseError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("template %s produced invalid JSON at offset %d: %v", e.Template, e.Offset, e.Cause)
	}
	return fmt.Sprintf("template %s produced invalid JSON: %v", e.Template, e.Cause)
}

func (e *JSONParseError) Unwrap() []error {
	return []error{oerrors.ErrParse, e.Cause}
}
