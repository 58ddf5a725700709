package synchronize

import (
	"context"
	"errors"
)

type resultKind int

const (
	kindRetry resultKind = iota
	kindDone
	kindFail
)

// Result is the tagged outcome of a single action invocation: success with a
// value, a retryable failure, or a fatal failure. The zero Result is a
// retryable failure.
type Result[T any] struct {
	kind  resultKind
	value T
	err   error
}

// Action is a condition evaluated once per attempt.
type Action[T any] func(ctx context.Context) Result[T]

// Done reports success with value v.
func Done[T any](v T) Result[T] {
	return Result[T]{kind: kindDone, value: v}
}

// Retry reports that the condition is not satisfied yet. err describes what
// is missing; a nil err becomes ErrNotSatisfied.
func Retry[T any](err error) Result[T] {
	return Result[T]{kind: kindRetry, err: err}
}

// Fail reports a failure that retrying cannot fix. The loop stops and returns
// err unchanged.
func Fail[T any](err error) Result[T] {
	return Result[T]{kind: kindFail, err: err}
}

// FromError classifies a conventional (value, error) pair: nil is success, an
// error marked with Fatal is fatal, anything else is retryable.
func FromError[T any](v T, err error) Result[T] {
	switch {
	case err == nil:
		return Done(v)
	case IsFatal(err):
		return Fail[T](err)
	default:
		return Retry[T](err)
	}
}

// normalize fills in defaults and promotes retryable results that carry a
// fatal-marked error (for example one returned by a nested Synchronize).
func (r Result[T]) normalize() Result[T] {
	switch r.kind {
	case kindDone:
		return r
	case kindFail:
		if r.err == nil {
			r.err = ErrFailed
		}

		return r
	default:
		if r.err == nil {
			r.err = ErrNotSatisfied
		}

		if IsFatal(r.err) {
			r.kind = kindFail
		}

		return r
	}
}

// fatalError marks an error as non-retryable.
type fatalError struct {
	err error
}

func (e *fatalError) Error() string {
	return e.err.Error()
}

func (e *fatalError) Unwrap() error {
	return e.err
}

// Fatal marks err as non-retryable. A Check returning it stops the loop
// immediately; the outermost Synchronize strips the mark again, so callers
// receive the original error. Returns nil if err is nil.
//
// Example:
//
//	if resp.StatusCode == http.StatusUnauthorized {
//	    return synchronize.Fatal(errBadCredentials) // waiting won't help
//	}
func Fatal(err error) error {
	if err == nil {
		return nil
	}

	var f *fatalError
	if errors.As(err, &f) {
		return err
	}

	return &fatalError{err: err}
}

// IsFatal reports whether err, or anything it wraps, was marked with Fatal.
func IsFatal(err error) bool {
	var f *fatalError

	return errors.As(err, &f)
}

// unwrapFatal removes a top-level Fatal mark. Marks buried under further
// wrapping are left alone so the wrapping context is not lost.
func unwrapFatal(err error) error {
	if f, ok := err.(*fatalError); ok { //nolint:errorlint // only the outermost mark is stripped
		return f.err
	}

	return err
}
