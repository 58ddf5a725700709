package synchronize

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amp-labs/amp-sync/envutil"
)

// DefaultMaxWait is used when SYNC_MAX_WAIT is not set.
const DefaultMaxWait = 20 * time.Second

var errNegativeDuration = errors.New("duration must not be negative")

// Config holds environment-driven defaults for callers that don't pick their
// own wait and interval.
type Config struct {
	MaxWait  time.Duration
	Interval time.Duration
}

func nonNegative(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%w: %s", errNegativeDuration, d)
	}

	return nil
}

// LoadConfig reads SYNC_MAX_WAIT (default 20s) and SYNC_INTERVAL (default
// 500ms).
func LoadConfig(ctx context.Context) (Config, error) {
	maxWait, err := envutil.Duration(ctx, "SYNC_MAX_WAIT",
		envutil.Default(DefaultMaxWait),
		envutil.Validate(nonNegative)).
		Value()
	if err != nil {
		return Config{}, err
	}

	interval, err := envutil.Duration(ctx, "SYNC_INTERVAL",
		envutil.Default(DefaultInterval),
		envutil.Validate(nonNegative)).
		Value()
	if err != nil {
		return Config{}, err
	}

	return Config{
		MaxWait:  maxWait,
		Interval: interval,
	}, nil
}

// Options converts the config into call options.
func (c Config) Options() []Option {
	return []Option{WithInterval(c.Interval)}
}
