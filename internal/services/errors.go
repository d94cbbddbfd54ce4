package services

import (
	"errors"
	"fmt"
	"strings"
)

// Marker errors used to classify failures across the pipeline. Callers match
// with errors.Is to decide whether a failure is retryable or terminal.
var (
	// ErrValidation indicates invalid input or configuration; retrying the
	// same input will not help.
	ErrValidation = errors.New("validation error")

	// ErrExternalTool indicates an external binary or service failed.
	ErrExternalTool = errors.New("external tool error")

	// ErrTimeout indicates an operation exceeded its deadline.
	ErrTimeout = errors.New("timeout")

	// ErrTransient indicates a temporary failure that may succeed on retry.
	ErrTransient = errors.New("transient error")

	// ErrNotFound indicates a requested record or resource does not exist.
	ErrNotFound = errors.New("not found")
)

// Error carries classification and provenance for a pipeline failure.
type Error struct {
	Marker    error
	Step      string
	Operation string
	Message   string
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Step != "" {
		b.WriteString(e.Step)
		b.WriteString(": ")
	}
	if e.Operation != "" {
		b.WriteString(e.Operation)
		b.WriteString(": ")
	}
	if e.Message != "" {
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		if e.Message != "" {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	if b.Len() == 0 && e.Marker != nil {
		return e.Marker.Error()
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	var errs []error
	if e.Marker != nil {
		errs = append(errs, e.Marker)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Wrap builds a classified error. marker should be one of the package marker
// errors; step and operation identify where the failure happened.
func Wrap(marker error, step, operation, message string, err error) error {
	if marker == nil && err == nil {
		return nil
	}
	return &Error{
		Marker:    marker,
		Step:      step,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// Wrapf is Wrap with a formatted message and no wrapped cause.
func Wrapf(marker error, step, operation, format string, args ...any) error {
	return Wrap(marker, step, operation, fmt.Sprintf(format, args...), nil)
}

// IsRetryable reports whether err should be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrTimeout)
}
