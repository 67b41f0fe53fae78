package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() *Config {
	return &Config{
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		JitterFactor:   0.1,
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		return nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsRetries(t *testing.T) {
	wantErr := errors.New("persistent")

	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		return wantErr
	}, nil)

	require.ErrorIs(t, err, wantErr)
	// One initial attempt plus MaxRetries retries.
	assert.Equal(t, 4, calls)
}

func TestDoShouldRetryShortCircuits(t *testing.T) {
	fatal := errors.New("fatal")

	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		return fatal
	}, &Options{
		ShouldRetry: func(err error) bool { return !errors.Is(err, fatal) },
	})

	require.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestDoOnRetryCallback(t *testing.T) {
	var attempts []int
	err := Do(context.Background(), fastConfig(), func() error {
		return errors.New("transient")
	}, &Options{
		OnRetry: func(attempt int, err error, delay time.Duration) {
			attempts = append(attempts, attempt)
			assert.Error(t, err)
			assert.Greater(t, delay, time.Duration(0))
		},
	})

	assert.Error(t, err)
	assert.Equal(t, []int{1, 2, 3}, attempts)
}

func TestDoContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, fastConfig(), func() error {
		calls++
		return errors.New("never retried")
	}, nil)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}

func TestDoContextCancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := Do(ctx, &Config{
		MaxRetries:     10,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     time.Second,
	}, func() error {
		calls++
		cancel()
		return errors.New("transient")
	}, nil)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDelayGrowsAndCaps(t *testing.T) {
	cfg := &Config{
		InitialBackoff: time.Second,
		MaxBackoff:     2 * time.Second,
		JitterFactor:   0.5,
	}

	assert.GreaterOrEqual(t, Delay(0, cfg), time.Second)

	// By the twentieth attempt the exponent dwarfs the cap.
	assert.Equal(t, 2*time.Second, Delay(20, cfg))
}

func TestConfigNormDefaults(t *testing.T) {
	var cfg *Config
	got := cfg.norm()

	assert.Equal(t, DefaultMaxRetries, got.MaxRetries)
	assert.Equal(t, DefaultInitialBackoff, got.InitialBackoff)
	assert.Equal(t, DefaultMaxBackoff, got.MaxBackoff)
	assert.Equal(t, DefaultJitterFactor, got.JitterFactor)

	// Set fields survive, jitter above 1 is clamped.
	got = (&Config{MaxRetries: 7, JitterFactor: 4}).norm()
	assert.Equal(t, 7, got.MaxRetries)
	assert.Equal(t, 1.0, got.JitterFactor)
	assert.Equal(t, DefaultInitialBackoff, got.InitialBackoff)
}
