package cmd

import (
	"errors"

	oerrors "github.com/catalogbridge/ckan2csw/internal/errors"
)

// ExitError wraps an error with an exit code.
type ExitError struct {
	Code int
	Err  error

	// Printed is set when the command already reported Err to the user.
	Printed bool
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return ExitCodeName(e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given error and exit code.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{Err: err, Code: code}
}

// ExitCodeFromError determines the appropriate exit code for an error.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch {
	case errors.Is(err, oerrors.ErrConfig):
		return ExitConfigError
	case errors.Is(err, oerrors.ErrConnectivity):
		return ExitConnectivityError
	case errors.Is(err, oerrors.ErrValidation), errors.Is(err, oerrors.ErrParse):
		return ExitValidationError
	case errors.Is(err, oerrors.ErrNotFound):
		return ExitNotFound
	default:
		return ExitGeneralError
	}
}

// exitError wraps err with the exit code its sentinel maps to. nil stays nil.
func exitError(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	return NewExitError(err, ExitCodeFromError(err))
}
