package redo

import (
	"context"
	"fmt"
	"math/rand/v2"
	"reflect"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

// RandomFunc represents a function that returns a random number in the half
// open interval [0,n).
type RandomFunc func(n int64) int64

// defaultRandomFunc draws from the shared math/rand/v2 source, which is safe
// for concurrent use.
func defaultRandomFunc(n int64) int64 {
	return rand.Int64N(n)
}

// Retrier repeatedly invokes actions until one succeeds or the configured
// number of attempts runs out, sleeping a growing, jittered delay between
// tries. A Retrier is immutable after New and safe for concurrent use as
// long as its cleanup callback is.
type Retrier struct {
	backoff       BackoffConfig
	retryIf       func(error) bool
	cleanup       func()
	rf            RandomFunc
	logger        *zap.Logger
	name          string
	attemptFields []zap.Field
}

// New creates a new retrier with the default configuration, then applies
// options and validates the result.
func New(opts ...Option) (*Retrier, error) {
	r := &Retrier{
		backoff: DefaultBackoff(),
		rf:      defaultRandomFunc,
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		o(r)
	}

	if r.rf == nil {
		return nil, fmt.Errorf("%w: random function cannot be nil", ErrInvalidConfig)
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if err := r.backoff.Validate(); err != nil {
		return nil, err
	}

	return r, nil
}

// Do invokes action once per backoff slot until it succeeds.
//
// A failure accepted by the retryable predicate is recorded, triggers the
// cleanup callback if one is configured and another attempt follows, and is
// swallowed until attempts run out, at which point the most recent failure is
// returned wrapped (transparent to errors.Is and errors.As). A failure the
// predicate rejects, or one marked with NonRetryable, propagates immediately.
//
// Cancellation of ctx is honored between attempts and during backoff sleeps
// and surfaces as the wrapped context error, never as a retryable failure.
func (r *Retrier) Do(ctx context.Context, action func(context.Context) error) error {
	if action == nil {
		return fmt.Errorf("%w: action cannot be nil", ErrInvalidConfig)
	}

	name := r.name
	if name == "" {
		name = funcName(action)
	}

	if r.backoff.MaxSleeptime < r.backoff.Sleeptime {
		r.logger.Warn("max sleeptime is below sleeptime, every delay will be clamped",
			zap.Duration("sleeptime", r.backoff.Sleeptime),
			zap.Duration("max_sleeptime", r.backoff.MaxSleeptime),
		)
	}

	var lastErr error
	attempted := 0

	for i := range slots(ctx, r.backoff, r.rf, r.logger) {
		n := i + 1
		attempted = n

		fields := []zap.Field{
			zap.String("action", name),
			zap.Int("attempt", n),
			zap.Int("attempts", r.backoff.Attempts),
		}
		r.logger.Debug("calling action", append(fields, r.attemptFields...)...)

		err := action(ctx)
		if err == nil {
			return nil
		}
		if IsNonRetryable(err) || (r.retryIf != nil && !r.retryIf(err)) {
			return err
		}

		lastErr = err
		r.logger.Info("caught retryable failure", append(fields, zap.Error(err))...)

		if n < r.backoff.Attempts && r.cleanup != nil {
			r.cleanup()
		}
	}

	switch {
	case attempted == 0:
		return fmt.Errorf("%w: no attempts configured (attempts=%d)", ErrInvalidConfig, r.backoff.Attempts)
	case attempted < r.backoff.Attempts:
		// the backoff sleep was interrupted
		return fmt.Errorf("retry canceled during backoff after attempt %d: %w", attempted, ctx.Err())
	}

	r.logger.Warn("giving up",
		zap.String("action", name),
		zap.Int("attempts", r.backoff.Attempts),
		zap.Error(lastErr),
	)

	return fmt.Errorf("giving up after attempt %d: %w", attempted, lastErr)
}

// DoWithResult invokes action under r and returns its value on success.
func DoWithResult[T any](ctx context.Context, r *Retrier, action func(context.Context) (T, error)) (T, error) {
	var result T

	if action == nil {
		return result, fmt.Errorf("%w: action cannot be nil", ErrInvalidConfig)
	}

	err := r.Do(ctx, func(ctx context.Context) error {
		var innerErr error
		result, innerErr = action(ctx)
		return innerErr
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return result, nil
}

// Retry invokes action under a retrier built from opts. It is a convenience
// for one-off calls; construct a Retrier to reuse a policy.
func Retry(ctx context.Context, action func(context.Context) error, opts ...Option) error {
	r, err := New(opts...)
	if err != nil {
		return err
	}

	return r.Do(ctx, action)
}

// funcName resolves a short name for the action, for log events.
func funcName(fn any) string {
	f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if f == nil {
		return "action"
	}

	name := f.Name()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}

	return name
}
