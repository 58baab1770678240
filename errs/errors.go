// Package errs defines the error taxonomy shared by all fluxmesh components.
//
// Every error returned by the library wraps exactly one of the sentinel
// values below so callers can classify failures with errors.Is.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration reports an invalid construction parameter. It is never retried.
	ErrConfiguration = errors.New("configuration error")
	// ErrValidation reports a malformed input; the target structure is left unmodified.
	ErrValidation = errors.New("validation error")
	// ErrExecution reports a failure raised by a work item's own logic.
	ErrExecution = errors.New("execution error")
	// ErrLookup reports a reference to a nonexistent identifier, source or structure.
	ErrLookup = errors.New("lookup error")
)

// Configuration returns an ErrConfiguration formatted error
func Configuration(format string, args ...interface{}) error {
	return wrap(ErrConfiguration, format, args...)
}

// Validation returns an ErrValidation formatted error
func Validation(format string, args ...interface{}) error {
	return wrap(ErrValidation, format, args...)
}

// Lookup returns an ErrLookup formatted error
func Lookup(format string, args ...interface{}) error {
	return wrap(ErrLookup, format, args...)
}

// Execution wraps cause as ErrExecution, cause stays reachable via errors.Is/As.
func Execution(cause error) error {
	if cause == nil {
		return nil
	}
	if errors.Is(cause, ErrExecution) {
		return cause
	}
	return &executionError{cause: cause}
}

func wrap(kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

type executionError struct {
	cause error
}

func (e *executionError) Error() string {
	return ErrExecution.Error() + ": " + e.cause.Error()
}

func (e *executionError) Unwrap() []error {
	return []error{ErrExecution, e.cause}
}

// TypeError is returned when an item violates a collection type constraint.
type TypeError struct {
	Item     interface{}
	Expected []string
	Strict   bool
}

func (e *TypeError) Error() string {
	mode := "subtype of"
	if e.Strict {
		mode = "exactly"
	}
	return fmt.Sprintf("%v: invalid item type %T, expected %v [%v]", ErrValidation, e.Item, mode, strings.Join(e.Expected, ", "))
}

// Unwrap classifies TypeError as a validation error
func (e *TypeError) Unwrap() error {
	return ErrValidation
}
