package pipeline

import (
	"fmt"
)

// RecordError is a per-record failure. It never aborts a run.
type RecordError struct {
	// Name is the record's slug, empty when the record had none.
	Name string

	// DCATType is the record's inferred category.
	DCATType string

	// Stage names the step that failed: "adapt", "canonical", "document"
	// or "index".
	Stage string

	// Cause is the underlying error.
	Cause error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %q (%s) failed at %s: %v", e.Name, e.DCATType, e.Stage, e.Cause)
}

func (e *RecordError) Unwrap() error {
	return e.Cause
}
