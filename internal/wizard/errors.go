package wizard

import (
	"errors"
	"fmt"
)

// ErrStepLimitExceeded is returned when the wizard keeps offering a next step past the configured maximum.
var ErrStepLimitExceeded = errors.New("step limit exceeded")

// ValidationError means the site rejected an answer after advancing. It is not retried.
type ValidationError struct {
	Step    int
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("step %d: application rejected an answer", e.Step)
	}
	return fmt.Sprintf("step %d: application rejected an answer: %s", e.Step, e.Message)
}

// StructuralError means the document did not have a shape the wizard relies on.
type StructuralError struct {
	Step        int
	Expectation string
	Cause       error
}

func (e *StructuralError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("step %d: expected %s: %v", e.Step, e.Expectation, e.Cause)
	}
	return fmt.Sprintf("step %d: expected %s", e.Step, e.Expectation)
}

func (e *StructuralError) Unwrap() error {
	return e.Cause
}

// FieldError wraps a classification or resolution failure of one field.
type FieldError struct {
	Step  int
	Label string
	Cause error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("step %d: field %q: %v", e.Step, e.Label, e.Cause)
}

func (e *FieldError) Unwrap() error {
	return e.Cause
}
