package dispatch

import (
	"errors"
	"fmt"
)

// ValidationError marks malformed input. The run fails before any
// planning occurs and nothing may be committed.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return "invalid input: " + e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

// TransientError marks a retryable boundary failure, such as a broker or
// remote planner that could not be reached. The inputs are untouched, so
// the caller may retry the whole computation, but must never partially
// apply a commit.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *TransientError) Unwrap() error { return e.Err }

// IsValidation reports whether err stems from malformed input.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsTransient reports whether err is retryable.
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

func invalidf(format string, args ...any) error {
	return &ValidationError{Err: fmt.Errorf(format, args...)}
}
