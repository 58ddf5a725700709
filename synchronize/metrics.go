package synchronize

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// attemptsCounter counts action invocations made by outermost synchronizations.
// Nested calls are counted through their enclosing attempt.
//
// Metric name: amp_synchronize_attempts_total
var attemptsCounter = promauto.NewCounter( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Namespace: "amp",
		Subsystem: "synchronize",
		Name:      "attempts_total",
		Help:      "Total number of condition evaluations",
	},
)

// resultsCounter counts finished synchronizations by terminal state.
//
// Metric name: amp_synchronize_results_total
// Labels:
//   - state: succeeded, timed_out or failed
//
// Example PromQL query:
//
//	sum by (state) (rate(amp_synchronize_results_total[5m]))
var resultsCounter = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Namespace: "amp",
		Subsystem: "synchronize",
		Name:      "results_total",
		Help:      "Total number of finished synchronizations by terminal state",
	},
	[]string{"state"},
)

// durationHistogram tracks how long synchronizations took.
//
// Metric name: amp_synchronize_duration_seconds
var durationHistogram = promauto.NewHistogramVec( //nolint:gochecknoglobals
	prometheus.HistogramOpts{
		Namespace: "amp",
		Subsystem: "synchronize",
		Name:      "duration_seconds",
		Help:      "Time from first attempt to terminal state",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
	},
	[]string{"state"},
)

func observe(state State, elapsed time.Duration) {
	resultsCounter.WithLabelValues(state.String()).Inc()
	durationHistogram.WithLabelValues(state.String()).Observe(elapsed.Seconds())
}
