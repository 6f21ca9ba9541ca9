package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/social-capital/internal/service"
	"github.com/mattn/go-sqlite3"
)

// ErrMaxRetries wraps the last error once every attempt has hit lock contention.
var ErrMaxRetries = errors.New("max retries exceeded")

// DefaultStorageRetry covers a few seconds of SQLite lock contention from a
// second capital process writing to the same database.
var DefaultStorageRetry = service.RetryOptions{
	MaxAttempts:  5,
	InitialDelay: 50 * time.Millisecond,
	MaxDelay:     2 * time.Second,
	Multiplier:   2.0,
}

// IsRetryable reports whether err is SQLite lock contention (SQLITE_BUSY or
// SQLITE_LOCKED). Every other failure is permanent for a local database.
func IsRetryable(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
}

// WithRetry runs operation until it succeeds, fails permanently, or runs out
// of attempts, backing off exponentially between lock-contention failures.
// Zero-valued options fall back to DefaultStorageRetry.
func WithRetry(ctx context.Context, operation func() error, opts service.RetryOptions) error {
	opts = withRetryDefaults(opts)
	delay := opts.InitialDelay

	for attempt := 1; ; attempt++ {
		err := operation()
		if err == nil || !IsRetryable(err) {
			return err
		}
		if attempt >= opts.MaxAttempts {
			return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, attempt, err)
		}

		LogWarn("Database busy, retrying", Fields{
			"attempt": attempt,
			"delay":   delay,
			"error":   err,
		})

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay = min(time.Duration(float64(delay)*opts.Multiplier), opts.MaxDelay)
	}
}

func withRetryDefaults(opts service.RetryOptions) service.RetryOptions {
	def := DefaultStorageRetry
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = def.MaxAttempts
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = def.InitialDelay
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = def.MaxDelay
	}
	if opts.Multiplier <= 0 {
		opts.Multiplier = def.Multiplier
	}
	return opts
}
