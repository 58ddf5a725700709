// Package backoff computes the waits a polling loop sleeps between attempts.
//
// A Backoff maps a zero-based attempt index to a delay, and a Jitter optionally
// randomizes that delay. The synchronize package defaults to a Constant interval
// with no jitter so that timing stays predictable in tests.
package backoff

import (
	"math"
	"time"
)

// Backoff calculates the delay to wait after a failed attempt.
type Backoff interface {
	// Delay returns the wait after the given attempt. The attempt parameter is
	// zero-indexed (0 is the wait after the first attempt).
	Delay(attempt uint) time.Duration
}

// Constant waits the same interval after every attempt.
//
// Example:
//
//	b := backoff.Constant(500 * time.Millisecond)
//	// Delays: 500ms, 500ms, 500ms, ...
type Constant time.Duration

// Delay returns the constant interval. Negative intervals are treated as zero.
func (c Constant) Delay(_ uint) time.Duration {
	if c < 0 {
		return 0
	}

	return time.Duration(c)
}

// ExpBackoff grows the delay exponentially: Base * Factor^attempt, capped at Max.
//
// Example:
//
//	b := backoff.ExpBackoff{
//	    Base:   100 * time.Millisecond,
//	    Max:    2 * time.Second,
//	    Factor: 2.0,
//	}
//	// Delays: 100ms, 200ms, 400ms, 800ms, 1.6s, 2s, 2s, ...
type ExpBackoff struct {
	// Base is the initial delay duration.
	Base time.Duration
	// Max is the maximum delay duration (cap).
	Max time.Duration
	// Factor is the multiplier applied to each successive delay.
	Factor float64
}

// Delay calculates the exponential backoff delay for the given attempt,
// clamped between Base and Max.
func (b ExpBackoff) Delay(attempt uint) time.Duration {
	f := float64(b.Base) * math.Pow(b.Factor, float64(attempt))

	// Overflow past the int64 range lands on Max.
	if math.IsInf(f, 0) || f > float64(math.MaxInt64) {
		return b.Max
	}

	d := time.Duration(f)
	if d < b.Base {
		return b.Base
	} else if d > b.Max {
		return b.Max
	}

	return d
}
