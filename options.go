package channels

import "log/slog"

// Logger is the minimal logging surface used by [Merger] in
// suppressed-failure mode. *slog.Logger satisfies it.
type Logger interface {
	Error(msg string, args ...any)
}

type mergerConfig struct {
	suppress bool
	log      Logger
}

func defaultMergerConfig() mergerConfig {
	return mergerConfig{log: slog.Default()}
}

// MergerOption configures a [Merger].
type MergerOption func(*mergerConfig)

// WithSuppressedFailures makes the merger log and drop a failing
// source instead of aborting the whole merge. The failing source is
// not retried; its remaining values are lost.
func WithSuppressedFailures() MergerOption {
	return func(c *mergerConfig) {
		c.suppress = true
	}
}

// WithLogger sets the logger used for suppressed failures.
// slog.Default() is used by default.
func WithLogger(l Logger) MergerOption {
	return func(c *mergerConfig) {
		if l != nil {
			c.log = l
		}
	}
}

type limiterConfig[T any] struct {
	predicate func(T) bool
}

// LimiterOption configures a [Limiter].
type LimiterOption[T any] func(*limiterConfig[T])

// WithPredicate exempts values from the cooldown: only values for
// which pred is true are delayed. Exempt values are forwarded
// immediately and do not advance the cooldown window.
func WithPredicate[T any](pred func(T) bool) LimiterOption[T] {
	return func(c *limiterConfig[T]) {
		c.predicate = pred
	}
}
