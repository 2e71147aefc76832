package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoffSucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return Transient(errors.New("rate limited"))
		}
		return nil
	}, 5, time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoffExhaustsAttempts(t *testing.T) {
	attempts := 0
	cause := errors.New("service unavailable")
	err := RetryWithBackoff(context.Background(), func() error {
		attempts++
		return Transient(cause)
	}, 3, time.Millisecond)

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoffDoesNotRetryNonTransient(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), func() error {
		attempts++
		return ErrEmptyFile
	}, 5, time.Millisecond)

	assert.ErrorIs(t, err, ErrEmptyFile)
	assert.Equal(t, 1, attempts, "input errors must not be retried")
}

func TestRetryWithBackoffHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Transient(errors.New("timeout"))
	}, 3, time.Millisecond)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryWithBackoffRejectsInvalidAttempts(t *testing.T) {
	err := RetryWithBackoff(context.Background(), func() error { return nil }, 0, time.Millisecond)
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(errors.New("plain")))
	assert.True(t, IsTransient(Transient(errors.New("plain"))))
	assert.False(t, IsTransient(nil))

	// Marking survives further wrapping.
	wrapped := Transient(errors.New("inner"))
	assert.True(t, IsTransient(errors.Join(errors.New("outer"), wrapped)))
}
