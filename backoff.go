package redo

import (
	"context"
	"fmt"
	"iter"
	"time"

	"go.uber.org/zap"
)

// Default backoff configuration values
const (
	DefaultAttempts     = 5
	DefaultSleeptime    = time.Second * 60
	DefaultMaxSleeptime = time.Second * 300
	DefaultSleepscale   = 1.5
	DefaultJitter       = time.Second * 1
)

// BackoffConfig describes a finite sequence of attempt slots and the delays
// slept between them.
type BackoffConfig struct {
	// Attempts is the total number of slots produced.
	Attempts int
	// Sleeptime is the base delay before scaling and jitter are applied.
	Sleeptime time.Duration
	// MaxSleeptime is the ceiling on any single delay.
	MaxSleeptime time.Duration
	// Sleepscale multiplies the base delay after each slot.
	Sleepscale float64
	// Jitter bounds the symmetric random noise added to each delay.
	Jitter time.Duration
}

// DefaultBackoff returns the default backoff configuration.
func DefaultBackoff() BackoffConfig {
	return BackoffConfig{
		Attempts:     DefaultAttempts,
		Sleeptime:    DefaultSleeptime,
		MaxSleeptime: DefaultMaxSleeptime,
		Sleepscale:   DefaultSleepscale,
		Jitter:       DefaultJitter,
	}
}

// Validate checks the configuration for invalid values
func (c BackoffConfig) Validate() error {
	if c.Sleeptime < 0 {
		return fmt.Errorf("%w: sleeptime must not be negative", ErrInvalidConfig)
	}
	if c.MaxSleeptime < 0 {
		return fmt.Errorf("%w: max sleeptime must not be negative", ErrInvalidConfig)
	}
	if c.Sleepscale < 1 {
		return fmt.Errorf("%w: sleepscale must be at least one", ErrInvalidConfig)
	}
	if c.Jitter < 0 {
		return fmt.Errorf("%w: jitter must not be negative", ErrInvalidConfig)
	}
	if c.Jitter > c.Sleeptime {
		return fmt.Errorf("%w: jitter (%s) must not exceed sleeptime (%s)", ErrInvalidConfig, c.Jitter, c.Sleeptime)
	}

	return nil
}

// sleep is swapped in tests to observe backoff timing without waiting.
var sleep = sleepWithContext

// Slots returns a lazy sequence of attempt slots, numbered 0..Attempts-1.
//
// Pulling the next slot blocks for the current jittered delay; no delay runs
// before the first slot, after the last slot, or once the consumer stops
// iterating. The sequence ends early if ctx is canceled during a delay. It is
// not restartable mid-iteration; call Slots again for a fresh sequence.
//
// A non-positive Attempts yields an empty sequence. Sleep timing events are
// discarded; use SlotsWithLogger to observe them.
func Slots(ctx context.Context, cfg BackoffConfig) (iter.Seq[int], error) {
	return SlotsWithLogger(ctx, cfg, nil)
}

// SlotsWithLogger is Slots with the "backoff sleep" debug events reported to
// logger. A nil logger discards them.
func SlotsWithLogger(ctx context.Context, cfg BackoffConfig, logger *zap.Logger) (iter.Seq[int], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return slots(ctx, cfg, defaultRandomFunc, logger), nil
}

// slots assumes cfg has been validated. The slept amount is the jittered base
// clamped to MaxSleeptime; the base for the next round is the pre-jitter base,
// scaled and then clamped. Swapping that order changes long-run delay growth.
func slots(ctx context.Context, cfg BackoffConfig, rf RandomFunc, logger *zap.Logger) iter.Seq[int] {
	return func(yield func(int) bool) {
		base := cfg.Sleeptime

		for i := 0; i < cfg.Attempts; i++ {
			if !yield(i) {
				return
			}
			if i == cfg.Attempts-1 {
				return
			}

			d := base + jitterOffset(rf, cfg.Jitter)
			if d > cfg.MaxSleeptime {
				d = cfg.MaxSleeptime
			}
			if d < 0 {
				d = 0
			}

			logger.Debug("backoff sleep",
				zap.Duration("sleep", d),
				zap.Int("attempt", i+1),
				zap.Int("attempts", cfg.Attempts),
			)

			if err := sleep(ctx, d); err != nil {
				return
			}

			base = time.Duration(float64(base) * cfg.Sleepscale)
			if base > cfg.MaxSleeptime {
				base = cfg.MaxSleeptime
			}
		}
	}
}

// jitterOffset draws a uniform offset in [-jitter, +jitter], inclusive on
// both ends.
func jitterOffset(rf RandomFunc, jitter time.Duration) time.Duration {
	if jitter <= 0 {
		return 0
	}

	return time.Duration(rf(2*int64(jitter)+1)) - jitter
}

// sleepWithContext blocks for d, returning early with the context error if
// ctx is canceled first.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
