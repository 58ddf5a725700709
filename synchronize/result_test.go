package synchronize

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	t.Parallel()

	res := FromError(7, nil)
	assert.Equal(t, kindDone, res.kind)
	assert.Equal(t, 7, res.value)

	res = FromError(0, errNotYet)
	assert.Equal(t, kindRetry, res.kind)
	assert.Equal(t, errNotYet, res.err) //nolint:testifylint

	res = FromError(0, Fatal(errBoom))
	assert.Equal(t, kindFail, res.kind)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ErrNotSatisfied, Result[int]{}.normalize().err) //nolint:testifylint
	assert.Equal(t, ErrFailed, Fail[int](nil).normalize().err)      //nolint:testifylint

	// A retryable result carrying a fatal-marked error is promoted.
	assert.Equal(t, kindFail, Retry[int](Fatal(errBoom)).normalize().kind)
}

func TestFatal(t *testing.T) {
	t.Parallel()

	require.NoError(t, Fatal(nil))

	err := Fatal(errBoom)
	assert.True(t, IsFatal(err))
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, "boom", err.Error())

	// Idempotent.
	assert.Same(t, err, Fatal(err))

	wrapped := fmt.Errorf("probe: %w", err)
	assert.True(t, IsFatal(wrapped))
	assert.Same(t, wrapped, Fatal(wrapped))
	assert.False(t, IsFatal(errBoom))
}

func TestUnwrapFatal(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errBoom, unwrapFatal(Fatal(errBoom))) //nolint:testifylint

	wrapped := fmt.Errorf("probe: %w", Fatal(errBoom))
	assert.Equal(t, wrapped, unwrapFatal(wrapped), "buried marks keep their wrapping") //nolint:testifylint
	assert.Equal(t, errNotYet, unwrapFatal(errNotYet))                                 //nolint:testifylint
}

func TestState(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "waiting", Waiting.String())
	assert.Equal(t, "succeeded", Succeeded.String())
	assert.Equal(t, "timed_out", TimedOut.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", State(99).String())

	assert.False(t, Waiting.Terminal())
	assert.True(t, Succeeded.Terminal())
	assert.True(t, TimedOut.Terminal())
	assert.True(t, Failed.Terminal())
}

func TestTimeoutError_Message(t *testing.T) {
	t.Parallel()

	err := &TimeoutError{MaxWait: 0, Attempts: 1}
	assert.Equal(t, "timed out after 0s waiting for condition (1 attempts)", err.Error())
	require.ErrorIs(t, err, ErrTimeout)
}
