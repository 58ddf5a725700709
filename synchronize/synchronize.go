package synchronize

import (
	"context"
	"fmt"
	"time"

	"github.com/amp-labs/amp-sync/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const spanName = "synchronize"

// Synchronize invokes action until it returns Done, returns Fail, or maxWait
// has elapsed since the first attempt.
//
//   - Done: the value is returned immediately.
//   - Fail: the error is returned unchanged, without further attempts.
//   - Retry: once maxWait has elapsed a *TimeoutError is returned; otherwise
//     the call sleeps for the backoff delay (never past the deadline) and
//     tries again.
//
// The deadline is fixed when the call starts. The context handed to action
// expires at that deadline (see WithAttemptGrace), so a blocked attempt is
// cut off and counted as a retryable failure. If ctx already carries an
// active synchronization, no new window is opened: action runs exactly once
// and its outcome is handed back to the outer loop (a retryable failure as a
// plain error, a fatal failure as a Fatal-marked one).
//
// A zero maxWait means a single attempt. Cancelling ctx interrupts the wait
// between attempts and returns ctx.Err().
func Synchronize[T any](ctx context.Context, action Action[T], maxWait time.Duration, opts ...Option) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	o := newOptions(opts)

	if _, ok := windowFrom(ctx); ok {
		return delegate(ctx, o, action)
	}

	if maxWait < 0 {
		var zero T

		return zero, fmt.Errorf("%w: %s", ErrInvalidWait, maxWait)
	}

	return run(ctx, o, action, maxWait)
}

// Do is Synchronize for checks that only report an error. A nil error means
// the condition holds, an error marked with Fatal stops immediately and any
// other error is retried.
func Do(ctx context.Context, check Check, maxWait time.Duration, opts ...Option) error {
	_, err := Synchronize(ctx, func(ctx context.Context) Result[struct{}] {
		return FromError(struct{}{}, check(ctx))
	}, maxWait, opts...)

	return err
}

// delegate runs action once on behalf of an enclosing synchronization.
func delegate[T any](ctx context.Context, o *options, action Action[T]) (T, error) {
	var zero T

	res := action(ctx).normalize()

	switch res.kind {
	case kindDone:
		return res.value, nil
	case kindFail:
		return zero, Fatal(res.err)
	default:
		if o.description != "" {
			return zero, fmt.Errorf("%s: %w", o.description, res.err)
		}

		return zero, res.err
	}
}

// run owns the retry loop for the outermost synchronization.
//
//nolint:funlen
func run[T any](ctx context.Context, o *options, action Action[T], maxWait time.Duration) (value T, err error) {
	start := time.Now()
	win := newWindow(start, maxWait)
	state := Waiting

	ctx = withWindow(ctx, win)
	ctx = logger.With(ctx, "sync_id", win.id.String())

	if o.description != "" {
		ctx = logger.With(ctx, "description", o.description)
	}

	ctx, span := o.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("sync.id", win.id.String()),
			attribute.String("sync.description", o.description),
			attribute.Int64("sync.max_wait_ms", maxWait.Milliseconds()),
		))

	defer func() {
		elapsed := time.Since(start)
		observe(state, elapsed)

		span.SetAttributes(
			attribute.Int64("sync.attempts", int64(win.attempts.Load())), //nolint:gosec
			attribute.String("sync.state", state.String()),
		)

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		span.End()
	}()

	for attempt := uint(0); ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			state = Failed

			return value, ctxErr
		}

		win.attempts.Inc()
		attemptsCounter.Inc()

		attemptCtx, cancel := context.WithDeadline(withAttempt(ctx, attempt),
			win.attemptDeadline(time.Now(), o.grace))
		res := action(attemptCtx).normalize()

		cancel()

		switch res.kind {
		case kindDone:
			state = Succeeded

			logger.Get(ctx).Debug("condition satisfied",
				"attempt", attempt, "elapsed", time.Since(start))

			return res.value, nil
		case kindFail:
			state = Failed

			logger.Get(ctx).Debug("condition failed",
				"attempt", attempt, "elapsed", time.Since(start), "error", res.err)

			return value, unwrapFatal(res.err)
		}

		elapsed := time.Since(start)
		if elapsed >= maxWait {
			state = TimedOut

			timeoutErr := &TimeoutError{
				Description: o.description,
				MaxWait:     maxWait,
				Elapsed:     elapsed,
				Attempts:    win.attempts.Load(),
				Last:        res.err,
			}

			logger.Get(ctx).Warn("timed out waiting for condition",
				"attempts", timeoutErr.Attempts, "elapsed", elapsed, "error", res.err)

			return value, timeoutErr
		}

		delay := o.jitter.Apply(o.backoff.Delay(attempt))
		if remaining := maxWait - elapsed; delay > remaining {
			delay = remaining
		}

		logger.Get(ctx).Debug("condition not satisfied, retrying",
			"attempt", attempt, "elapsed", elapsed, "delay", delay, "error", res.err)

		timer := time.NewTimer(delay)

		select {
		case <-ctx.Done():
			timer.Stop()

			state = Failed

			return value, ctx.Err()
		case <-timer.C:
		}
	}
}
