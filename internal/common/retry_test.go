package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/Veraticus/social-capital/internal/service"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastRetry = service.RetryOptions{
	MaxAttempts:  3,
	InitialDelay: time.Millisecond,
	MaxDelay:     2 * time.Millisecond,
	Multiplier:   2,
}

func TestWithRetry(t *testing.T) {
	busy := sqlite3.Error{Code: sqlite3.ErrBusy}
	permanent := errors.New("constraint failed")

	tests := []struct {
		wantErr      error
		failures     []error
		name         string
		wantAttempts int
	}{
		{
			name:         "succeeds first time",
			wantAttempts: 1,
		},
		{
			name:         "retries busy then succeeds",
			failures:     []error{busy, fmt.Errorf("wrapped: %w", busy)},
			wantAttempts: 3,
		},
		{
			name:         "permanent error is not retried",
			failures:     []error{permanent},
			wantErr:      permanent,
			wantAttempts: 1,
		},
		{
			name:         "gives up after max attempts",
			failures:     []error{busy, busy, busy},
			wantErr:      ErrMaxRetries,
			wantAttempts: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := WithRetry(context.Background(), func() error {
				attempts++
				if attempts <= len(tt.failures) {
					return tt.failures[attempts-1]
				}
				return nil
			}, fastRetry)

			assert.Equal(t, tt.wantAttempts, attempts)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWithRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, func() error { return sqlite3.Error{Code: sqlite3.ErrBusy} }, service.RetryOptions{
		MaxAttempts:  5,
		InitialDelay: time.Second,
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithRetryDefaults(t *testing.T) {
	assert.Equal(t, DefaultStorageRetry, withRetryDefaults(service.RetryOptions{}))

	custom := withRetryDefaults(service.RetryOptions{MaxAttempts: 2})
	assert.Equal(t, 2, custom.MaxAttempts)
	assert.Equal(t, DefaultStorageRetry.InitialDelay, custom.InitialDelay)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "sqlite busy", err: sqlite3.Error{Code: sqlite3.ErrBusy}, want: true},
		{name: "sqlite locked", err: sqlite3.Error{Code: sqlite3.ErrLocked}, want: true},
		{name: "sqlite constraint", err: sqlite3.Error{Code: sqlite3.ErrConstraint}, want: false},
		{name: "wrapped locked", err: fmt.Errorf("save contact: %w", sqlite3.Error{Code: sqlite3.ErrLocked}), want: true},
		{name: "deadline", err: context.DeadlineExceeded, want: false},
		{name: "plain", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestUserError(t *testing.T) {
	inner := errors.New("disk full")
	err := NewUserError("could not save contact", inner)

	assert.Equal(t, "could not save contact: disk full", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "bare", NewUserError("bare", nil).Error())
}

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	require.NoError(t, SetupLoggerTo(&buf, slog.LevelInfo, "json"))
	LogInfo("contact saved", Fields{"id": "c1"})
	LogDebug("hidden", nil)
	assert.Contains(t, buf.String(), `"msg":"contact saved"`)
	assert.Contains(t, buf.String(), `"id":"c1"`)
	assert.NotContains(t, buf.String(), "hidden")

	assert.ErrorIs(t, SetupLoggerTo(&buf, slog.LevelInfo, "xml"), ErrInvalidConfig)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLevel("loud")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
