// Package retry runs an operation repeatedly with exponentially
// growing, jittered delays until it succeeds or the attempt budget
// runs out.
package retry

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// Defaults applied for unset Config fields.
const (
	DefaultMaxRetries     = 3
	DefaultInitialBackoff = 100 * time.Millisecond
	DefaultMaxBackoff     = 30 * time.Second
	DefaultJitterFactor   = 0.25
)

// Config bounds the retry loop. A nil pointer or a zero field means
// the package default for that field.
type Config struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration

	// MaxBackoff caps the grown delay.
	MaxBackoff time.Duration

	// JitterFactor is the share of random spread added to each delay,
	// between 0 and 1.
	JitterFactor float64
}

// norm fills unset fields with defaults and clamps the jitter.
func (c *Config) norm() Config {
	out := Config{
		MaxRetries:     DefaultMaxRetries,
		InitialBackoff: DefaultInitialBackoff,
		MaxBackoff:     DefaultMaxBackoff,
		JitterFactor:   DefaultJitterFactor,
	}
	if c == nil {
		return out
	}
	if c.MaxRetries > 0 {
		out.MaxRetries = c.MaxRetries
	}
	if c.InitialBackoff > 0 {
		out.InitialBackoff = c.InitialBackoff
	}
	if c.MaxBackoff > 0 {
		out.MaxBackoff = c.MaxBackoff
	}
	if c.JitterFactor > 0 {
		out.JitterFactor = math.Min(c.JitterFactor, 1)
	}
	return out
}

// Options tune how Do reacts to a failed attempt.
type Options struct {
	// ShouldRetry filters errors worth another attempt. nil retries
	// every error.
	ShouldRetry func(error) bool

	// OnRetry observes each upcoming retry together with the delay
	// chosen for it. attempt counts retries starting at 1.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Do runs fn until it succeeds, ShouldRetry rules the error out, the
// retry budget is spent, or ctx ends. The most recent error is
// returned; a context error takes precedence over it.
func Do(ctx context.Context, cfg *Config, fn func() error, opts *Options) error {
	c := cfg.norm()

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		if opts != nil && opts.ShouldRetry != nil && !opts.ShouldRetry(err) {
			return err
		}
		if attempt == c.MaxRetries {
			return err
		}

		delay := Delay(attempt, &c)
		if opts != nil && opts.OnRetry != nil {
			opts.OnRetry(attempt+1, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Delay computes the pause before retry number attempt+1: the initial
// backoff doubled per attempt, widened by the jitter share so
// concurrent callers spread out, capped at the configured maximum.
func Delay(attempt int, cfg *Config) time.Duration {
	c := cfg.norm()

	d := float64(c.InitialBackoff) * math.Pow(2, float64(attempt))
	//nolint:gosec // G404: retry timing is not security-sensitive
	d += d * c.JitterFactor * rand.Float64()

	if ceiling := float64(c.MaxBackoff); d > ceiling {
		d = ceiling
	}
	return time.Duration(d)
}
