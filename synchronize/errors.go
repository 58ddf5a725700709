package synchronize

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTimeout is matched (via errors.Is) by every *TimeoutError.
	ErrTimeout = errors.New("timed out waiting for condition")

	// ErrNotSatisfied stands in for a retryable failure that carried no error.
	ErrNotSatisfied = errors.New("condition not satisfied")

	// ErrFailed stands in for a fatal failure that carried no error.
	ErrFailed = errors.New("condition failed")

	// ErrInvalidWait is returned for a negative maximum wait.
	ErrInvalidWait = errors.New("invalid maximum wait")

	// ErrNoChecks is returned (fatally) by Any when it has nothing to check.
	ErrNoChecks = errors.New("no checks given")
)

// TimeoutError is returned when a condition was still unsatisfied once the
// maximum wait had elapsed.
type TimeoutError struct {
	// Description is what was being waited for, as given by WithDescription.
	Description string
	// MaxWait is the configured maximum wait.
	MaxWait time.Duration
	// Elapsed is the time between the first attempt and giving up.
	Elapsed time.Duration
	// Attempts is the number of times the action ran.
	Attempts uint64
	// Last is the retryable error from the final attempt.
	Last error
}

func (e *TimeoutError) Error() string {
	what := e.Description
	if what == "" {
		what = "condition"
	}

	msg := fmt.Sprintf("timed out after %s waiting for %s (%d attempts)", e.MaxWait, what, e.Attempts)
	if e.Last != nil {
		msg += ": " + e.Last.Error()
	}

	return msg
}

// Unwrap exposes both ErrTimeout and the last retryable error.
func (e *TimeoutError) Unwrap() []error {
	if e.Last == nil {
		return []error{ErrTimeout}
	}

	return []error{ErrTimeout, e.Last}
}
