// Package eventually runs a block of testify assertions inside one
// synchronization window, so several dependent assertions share a single
// deadline instead of each polling on its own.
//
//	eventually.Require(t, 20*time.Second, func(r *require.Assertions) {
//	    body, err := fetchStatus()
//	    r.NoError(err)
//	    r.Contains(body, "ready")
//	})
//
// Failures inside the block are recorded, not reported: only when the window
// times out is the test failed, with the messages from the last attempt.
package eventually

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/amp-labs/amp-sync/synchronize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ErrAssertionsFailed is matched by every *AssertionError.
var ErrAssertionsFailed = errors.New("assertions failed")

// AssertionError holds the assertion messages recorded during one attempt.
type AssertionError struct {
	Messages []string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s:\n%s", ErrAssertionsFailed, strings.Join(e.Messages, "\n"))
}

func (e *AssertionError) Is(target error) bool {
	return target == ErrAssertionsFailed //nolint:errorlint,err113
}

// failNow is the panic value used to unwind a block after require fails.
type failNow struct{}

// recorder collects assertion failures in place of a real testing.T.
type recorder struct {
	messages []string
}

func (r *recorder) Errorf(format string, args ...any) {
	r.messages = append(r.messages, strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (r *recorder) FailNow() {
	panic(failNow{})
}

func (r *recorder) Helper() {}

func (r *recorder) err() error {
	if len(r.messages) == 0 {
		return nil
	}

	return &AssertionError{Messages: r.messages}
}

// capture runs block against a fresh recorder and returns its failures.
func capture(block func(rec *recorder)) (err error) {
	rec := &recorder{}

	defer func() {
		if p := recover(); p != nil {
			if _, ok := p.(failNow); !ok {
				panic(p)
			}
		}

		err = rec.err()
	}()

	block(rec)

	return nil
}

// RequireCheck adapts a block of require assertions into a synchronize.Check.
// It can be composed with other checks or run inside an outer window.
func RequireCheck(block func(ctx context.Context, r *require.Assertions)) synchronize.Check {
	return func(ctx context.Context) error {
		return capture(func(rec *recorder) {
			block(ctx, require.New(rec))
		})
	}
}

// AssertCheck is RequireCheck for assert-style blocks: every assertion in the
// block runs on each attempt, even after one has failed.
func AssertCheck(block func(ctx context.Context, a *assert.Assertions)) synchronize.Check {
	return func(ctx context.Context) error {
		return capture(func(rec *recorder) {
			block(ctx, assert.New(rec))
		})
	}
}

// Require retries block until all of its assertions pass within maxWait. On
// timeout the test is stopped with t.Fatalf.
func Require(t testing.TB, maxWait time.Duration, block func(r *require.Assertions), opts ...synchronize.Option) {
	t.Helper()

	err := synchronize.Do(t.Context(), RequireCheck(func(_ context.Context, r *require.Assertions) {
		block(r)
	}), maxWait, opts...)
	if err != nil {
		t.Fatalf("%v", err)
	}
}

// Assert retries block until all of its assertions pass within maxWait. On
// timeout the test is marked failed with t.Errorf and false is returned.
func Assert(t testing.TB, maxWait time.Duration, block func(a *assert.Assertions), opts ...synchronize.Option) bool {
	t.Helper()

	err := synchronize.Do(t.Context(), AssertCheck(func(_ context.Context, a *assert.Assertions) {
		block(a)
	}), maxWait, opts...)
	if err != nil {
		t.Errorf("%v", err)

		return false
	}

	return true
}
