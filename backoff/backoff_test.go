package backoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConstant_Delay(t *testing.T) {
	t.Parallel()

	b := Constant(500 * time.Millisecond)

	for attempt := range uint(10) {
		assert.Equal(t, 500*time.Millisecond, b.Delay(attempt))
	}
}

func TestConstant_NegativeIsZero(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Duration(0), Constant(-time.Second).Delay(0))
}

func TestExpBackoff_Delay(t *testing.T) {
	t.Parallel()

	backoff := ExpBackoff{
		Base:   100 * time.Millisecond,
		Max:    2 * time.Second,
		Factor: 2.0,
	}

	tests := []struct {
		name     string
		attempt  uint
		expected time.Duration
	}{
		{"first attempt", 0, 100 * time.Millisecond},
		{"second attempt", 1, 200 * time.Millisecond},
		{"third attempt", 2, 400 * time.Millisecond},
		{"fifth attempt", 4, 1600 * time.Millisecond},
		{"sixth attempt (hits max)", 5, 2 * time.Second},
		{"tenth attempt (still capped)", 10, 2 * time.Second},
		{"huge attempt (overflow capped)", 5000, 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, backoff.Delay(tt.attempt))
		})
	}
}

func TestExpBackoff_FactorBelowOne(t *testing.T) {
	t.Parallel()

	backoff := ExpBackoff{
		Base:   100 * time.Millisecond,
		Max:    time.Second,
		Factor: 0.5,
	}

	// Shrinking delays are clamped to Base.
	assert.Equal(t, 100*time.Millisecond, backoff.Delay(3))
}
