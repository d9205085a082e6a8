package extract

import (
	"fmt"

	oerrors "github.com/catalogbridge/ckan2csw/internal/errors"
)

// DateParseError reports a non-empty timestamp that is not ISO-8601.
type DateParseError struct {
	Value string
	Cause error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("cannot parse timestamp %q", e.Value)
}

func (e *DateParseError) Unwrap() []error {
	return []error{oerrors.ErrParse, e.Cause}
}

// InvalidDateStringError reports a recognized date marker whose structure is
// malformed.
type InvalidDateStringError struct {
	Value any
}

func (e *InvalidDateStringError) Error() string {
	return fmt.Sprintf("invalid datestring: %v", e.Value)
}

func (e *InvalidDateStringError) Unwrap() error {
	return oerrors.ErrParse
}

// XMLParseError reports input that is not well-formed XML.
type XMLParseError struct {
	Cause error
}

func (e *XMLParseError) Error() string {
	if e.Cause == nil {
		return "malformed XML"
	}
	return "malformed XML: " + e.Cause.Error()
}

func (e *XMLParseError) Unwrap() []error {
	if e.Cause == nil {
		return []error{oerrors.ErrParse}
	}
	return []error{oerrors.ErrParse, e.Cause}
}
