package backoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithoutJitter(t *testing.T) {
	t.Parallel()

	delay := 500 * time.Millisecond

	for range 100 {
		assert.Equal(t, delay, WithoutJitter.Apply(delay), "WithoutJitter should always return exact delay")
	}
}

func TestZeroJitter(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Second, Jitter(0).Apply(time.Second))
}

func TestFullJitter(t *testing.T) {
	t.Parallel()

	delay := 1 * time.Second
	results := make(map[time.Duration]bool)

	for range 100 {
		result := FullJitter.Apply(delay)
		results[result] = true

		assert.GreaterOrEqual(t, result, time.Duration(0))
		assert.LessOrEqual(t, result, delay)
	}

	assert.Greater(t, len(results), 10, "FullJitter should produce varied results")
}

func TestEqualJitter(t *testing.T) {
	t.Parallel()

	delay := 1 * time.Second

	for range 100 {
		result := EqualJitter.Apply(delay)

		assert.GreaterOrEqual(t, result, delay/2)
		assert.LessOrEqual(t, result, delay)
	}
}

func TestJitter_ZeroDelay(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Duration(0), FullJitter.Apply(0))
}
