package backoff

import (
	"math/rand"
	"time"
)

// Jitter is the share of a delay that gets randomized.
//   - 0.0 or negative: no jitter
//   - 0.5: half random, half deterministic
//   - 1.0: anywhere between 0 and the delay
type Jitter float64

// EqualJitter keeps half of the delay fixed: delay/2 + random(0, delay/2).
const EqualJitter Jitter = 0.5

// FullJitter picks a random delay in [0, delay).
const FullJitter Jitter = 1.0

// WithoutJitter returns the delay unchanged.
const WithoutJitter Jitter = -1.0

// Apply returns d randomized according to j.
func (j Jitter) Apply(d time.Duration) time.Duration {
	if j <= 0.0 || d <= 0 {
		return d
	}

	//nolint:gosec // G404: math/rand is sufficient for jitter
	r := rand.Float64() * float64(d)

	// jitter * random + (1 - jitter) * delay
	if j < 1.0 {
		r = float64(j)*r + float64(1.0-j)*float64(d)
	}

	return time.Duration(r)
}
