package synchronize

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
)

type contextKey string

const (
	windowKey  contextKey = "window"
	attemptKey contextKey = "attempt"
)

// window is the retry window owned by the outermost Synchronize call. It is
// carried by the context handed to actions, so nested calls can find it.
type window struct {
	id       uuid.UUID
	start    time.Time
	deadline time.Time
	attempts *atomic.Uint64
}

func newWindow(start time.Time, maxWait time.Duration) *window {
	return &window{
		id:       uuid.New(),
		start:    start,
		deadline: start.Add(maxWait),
		attempts: atomic.NewUint64(0),
	}
}

// attemptDeadline bounds an attempt starting at now. An attempt that starts
// at (or past) the window deadline still gets grace to run.
func (w *window) attemptDeadline(now time.Time, grace time.Duration) time.Time {
	if floor := now.Add(grace); floor.After(w.deadline) {
		return floor
	}

	return w.deadline
}

func withWindow(ctx context.Context, w *window) context.Context {
	return context.WithValue(ctx, windowKey, w)
}

func windowFrom(ctx context.Context) (*window, bool) {
	if ctx == nil {
		return nil, false
	}

	w, ok := ctx.Value(windowKey).(*window)

	return w, ok && w != nil
}

func withAttempt(ctx context.Context, attempt uint) context.Context {
	return context.WithValue(ctx, attemptKey, attempt)
}

// Active reports whether ctx belongs to a running synchronization. Synchronize
// calls made with such a context delegate to the outer retry loop.
func Active(ctx context.Context) bool {
	_, ok := windowFrom(ctx)

	return ok
}

// Deadline returns the deadline of the active synchronization, if any.
func Deadline(ctx context.Context) (time.Time, bool) {
	w, ok := windowFrom(ctx)
	if !ok {
		return time.Time{}, false
	}

	return w.deadline, true
}

// Attempt returns the zero-based attempt number of the active
// synchronization. Returns 0 outside of one.
//
// Example:
//
//	err := synchronize.Do(ctx, func(ctx context.Context) error {
//	    logger.Get(ctx).Debug("probing", "attempt", synchronize.Attempt(ctx))
//	    return probe(ctx)
//	}, time.Minute)
func Attempt(ctx context.Context) uint {
	if ctx == nil {
		return 0
	}

	attempt, _ := ctx.Value(attemptKey).(uint)

	return attempt
}
