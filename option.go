package redo

import (
	"errors"
	"time"

	"go.uber.org/zap"
)

type Option func(r *Retrier)

// WithAttempts sets the total number of tries before giving up. Default is five.
func WithAttempts(n int) Option {
	return func(r *Retrier) {
		r.backoff.Attempts = n
	}
}

// WithSleeptime sets the base delay before scaling and jitter. Default is one minute.
func WithSleeptime(d time.Duration) Option {
	return func(r *Retrier) {
		r.backoff.Sleeptime = d
	}
}

// WithMaxSleeptime sets the hard ceiling on any single delay. Default is five minutes.
func WithMaxSleeptime(d time.Duration) Option {
	return func(r *Retrier) {
		r.backoff.MaxSleeptime = d
	}
}

// WithSleepscale sets the multiplier applied to the base delay after each attempt.
func WithSleepscale(s float64) Option {
	return func(r *Retrier) {
		r.backoff.Sleepscale = s
	}
}

// WithJitter sets the bound of the symmetric random noise added to each delay.
// The jitter must not exceed the sleeptime.
func WithJitter(d time.Duration) Option {
	return func(r *Retrier) {
		r.backoff.Jitter = d
	}
}

// WithRetryIf sets the predicate deciding whether a failure is retried.
// Failures it rejects propagate immediately. By default every failure is
// retried, except those marked with NonRetryable.
func WithRetryIf(pred func(error) bool) Option {
	return func(r *Retrier) {
		r.retryIf = pred
	}
}

// WithRetryableErrors restricts retries to failures matching one of targets,
// per errors.Is. Any other failure propagates immediately.
func WithRetryableErrors(targets ...error) Option {
	return func(r *Retrier) {
		r.retryIf = func(err error) bool {
			for _, target := range targets {
				if errors.Is(err, target) {
					return true
				}
			}
			return false
		}
	}
}

// WithCleanup sets a callback invoked once after each caught retryable
// failure, before the next attempt.
func WithCleanup(fn func()) Option {
	return func(r *Retrier) {
		r.cleanup = fn
	}
}

// WithLogger sets the logger for attempt, backoff and give-up events.
// The default logger discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Retrier) {
		r.logger = logger
	}
}

// WithRandomFunc sets the random function used to draw jitter offsets.
func WithRandomFunc(rf RandomFunc) Option {
	return func(r *Retrier) {
		r.rf = rf
	}
}

// WithName overrides the action name reported in log events. By default the
// name is derived from the action function itself.
func WithName(name string) Option {
	return func(r *Retrier) {
		r.name = name
	}
}

// WithAttemptFields attaches extra fields to per-attempt log events. Action
// arguments are never logged unless the caller opts in through these fields,
// since they may be sensitive.
func WithAttemptFields(fields ...zap.Field) Option {
	return func(r *Retrier) {
		r.attemptFields = fields
	}
}
