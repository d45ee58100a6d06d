package locking

import (
	"context"
	"os"
	"time"

	"github.com/mutxcli/mutx/pkg/random"
	"github.com/mutxcli/mutx/pkg/timeutil"
)

// Kind identifies one of the acquisition strategies.
type Kind int

const (
	// Wait blocks indefinitely (subject to ctx) until the lock is acquired.
	Wait Kind = iota
	// NoWait makes a single non-blocking attempt and fails immediately if
	// the lock is held.
	NoWait
	// Timeout polls with exponential backoff and jitter until the lock is
	// acquired or Duration elapses.
	Timeout
)

// Strategy selects how Acquire behaves when a lock is contended.
type Strategy struct {
	Kind Kind

	// Duration bounds a Timeout strategy's total wait. Unused otherwise.
	Duration time.Duration

	// MaxPollInterval caps the backoff between polling attempts for a
	// Timeout strategy. If zero, DefaultMaxPollInterval is used.
	MaxPollInterval time.Duration
}

const (
	// DefaultMaxPollInterval is the backoff ceiling used when a Timeout
	// strategy doesn't specify one.
	DefaultMaxPollInterval = 1000 * time.Millisecond

	initialBackoff    = 10 * time.Millisecond
	backoffMultiplier = 1.5
	jitterMax         = 100 * time.Millisecond
)

// WaitStrategy returns the blocking strategy.
func WaitStrategy() Strategy {
	return Strategy{Kind: Wait}
}

// NoWaitStrategy returns the single-attempt, non-blocking strategy.
func NoWaitStrategy() Strategy {
	return Strategy{Kind: NoWait}
}

// TimeoutStrategy returns a strategy that polls for up to duration, backing
// off exponentially between attempts up to maxPollInterval (or
// DefaultMaxPollInterval if maxPollInterval is zero).
func TimeoutStrategy(duration, maxPollInterval time.Duration) Strategy {
	if maxPollInterval <= 0 {
		maxPollInterval = DefaultMaxPollInterval
	}
	return Strategy{Kind: Timeout, Duration: duration, MaxPollInterval: maxPollInterval}
}

// Acquire opens the lock file at path (rejecting a symlinked path unless
// followSymlink is true) and acquires it according to strategy. On success
// it returns a held Locker that the caller must Unlock and Close. On
// failure no file descriptor is leaked.
//
// ctx governs cancellation of Wait and Timeout strategies; NoWait is a
// single non-blocking syscall and ignores ctx beyond an initial check.
func Acquire(ctx context.Context, path string, permissions os.FileMode, followSymlink bool, strategy Strategy) (*Locker, error) {
	if err := ctx.Err(); err != nil {
		return nil, &CanceledError{Path: path, Cause: err}
	}

	locker, err := NewLocker(path, permissions, followSymlink)
	if err != nil {
		return nil, err
	}

	switch strategy.Kind {
	case NoWait:
		if err := locker.Lock(false); err != nil {
			locker.Close()
			return nil, err
		}
		return locker, nil

	case Wait:
		if err := acquireBlocking(ctx, locker); err != nil {
			locker.Close()
			return nil, err
		}
		return locker, nil

	case Timeout:
		if err := acquireWithTimeout(ctx, locker, strategy); err != nil {
			locker.Close()
			return nil, err
		}
		return locker, nil

	default:
		locker.Close()
		return nil, &CreationFailedError{Path: path, Cause: context.DeadlineExceeded}
	}
}

// acquireBlocking runs the blocking lock call on a separate goroutine so
// that ctx cancellation can still return control to the caller. After a
// cancellation nothing waits on the goroutine: its result, even a
// successful acquisition, is dropped without an Unlock, and Acquire closes
// the descriptor.
func acquireBlocking(ctx context.Context, locker *Locker) error {
	done := make(chan error, 1)
	go func() {
		done <- locker.Lock(true)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return &CanceledError{Path: locker.Path(), Cause: ctx.Err()}
	}
}

// acquireWithTimeout polls locker with exponential backoff and jitter until
// it is acquired, strategy.Duration elapses, or ctx is canceled.
func acquireWithTimeout(ctx context.Context, locker *Locker, strategy Strategy) error {
	deadline := time.Now().Add(strategy.Duration)
	backoff := initialBackoff

	for {
		err := locker.Lock(false)
		if err == nil {
			return nil
		}
		if _, busy := err.(*BusyError); !busy {
			return err
		}

		if !time.Now().Before(deadline) {
			return &TimeoutError{Path: locker.Path(), Duration: strategy.Duration}
		}

		sleep := backoff
		if sleep > strategy.MaxPollInterval {
			sleep = strategy.MaxPollInterval
		}
		jitter, jerr := random.Jitter(jitterMax)
		if jerr == nil {
			sleep += jitter
		}
		if remaining := time.Until(deadline); sleep > remaining {
			sleep = remaining
		}
		if sleep < 0 {
			sleep = 0
		}

		timer := time.NewTimer(sleep)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timeutil.StopAndDrainTimer(timer)
			return &CanceledError{Path: locker.Path(), Cause: ctx.Err()}
		}

		backoff = time.Duration(float64(backoff) * backoffMultiplier)
	}
}
