package synchronize

import (
	"time"

	"github.com/amp-labs/amp-sync/backoff"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultInterval is the wait between attempts unless WithBackoff says otherwise.
	DefaultInterval = 500 * time.Millisecond

	// DefaultAttemptGrace is how long an attempt may run once the window
	// deadline has passed.
	DefaultAttemptGrace = 100 * time.Millisecond

	tracerName = "github.com/amp-labs/amp-sync/synchronize"
)

// Option configures a single Synchronize or Do call.
type Option func(*options)

type options struct {
	backoff     backoff.Backoff
	jitter      backoff.Jitter
	description string
	tracer      trace.Tracer
	grace       time.Duration
}

func newOptions(opts []Option) *options {
	o := &options{
		backoff: backoff.Constant(DefaultInterval),
		jitter:  backoff.WithoutJitter,
		grace:   DefaultAttemptGrace,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	if o.backoff == nil {
		o.backoff = backoff.Constant(DefaultInterval)
	}

	if o.grace < 0 {
		o.grace = 0
	}

	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}

	return o
}

// WithBackoff sets the strategy for the wait between attempts.
//
// Example:
//
//	synchronize.Do(ctx, check, time.Minute, synchronize.WithBackoff(backoff.ExpBackoff{
//	    Base:   50 * time.Millisecond,
//	    Max:    2 * time.Second,
//	    Factor: 2,
//	}))
func WithBackoff(b backoff.Backoff) Option {
	return func(o *options) {
		o.backoff = b
	}
}

// WithInterval is shorthand for WithBackoff(backoff.Constant(d)).
func WithInterval(d time.Duration) Option {
	return WithBackoff(backoff.Constant(d))
}

// WithJitter randomizes the wait between attempts. The default is no jitter.
func WithJitter(j backoff.Jitter) Option {
	return func(o *options) {
		o.jitter = j
	}
}

// WithDescription names what is being waited for. It shows up in logs, spans
// and the TimeoutError message.
func WithDescription(description string) Option {
	return func(o *options) {
		o.description = description
	}
}

// WithTracer sets the tracer used for the synchronize span. The default is
// the global otel tracer provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// WithAttemptGrace sets how long an attempt may still run when it starts at
// the window deadline, as the final attempt usually does. Every attempt's
// context is cancelled at max(deadline, attempt start + grace).
func WithAttemptGrace(grace time.Duration) Option {
	return func(o *options) {
		o.grace = grace
	}
}
