package codelist

import (
	"fmt"

	oerrors "github.com/catalogbridge/ckan2csw/internal/errors"
)

// MappingNotFoundError reports a codelist table that could not be loaded.
type MappingNotFoundError struct {
	Value    any
	Codelist string
	Cause    error
}

func (e *MappingNotFoundError) Error() string {
	msg := fmt.Sprintf("codelist %q not found while resolving %v", e.Codelist, e.Value)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap lets errors.Is match ErrNotFound.
func (e *MappingNotFoundError) Unwrap() []error {
	if e.Cause != nil {
		return []error{oerrors.ErrNotFound, e.Cause}
	}
	return []error{oerrors.ErrNotFound}
}
