// Package util provides small shared helpers: backoff timing with jitter
// and context-aware waiting.
package util

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"time"
)

// --------------------------------------------------------------------------------
// Constants

const (
	// DefaultMinWait is the minimum wait duration when the base is invalid or zero.
	DefaultMinWait = time.Millisecond
	// DefaultMaxWait is the default maximum wait time if unspecified.
	DefaultMaxWait = 30 * time.Second
	// DefaultJitterFactor is the default fraction of wait time used for jitter.
	DefaultJitterFactor = 0.5
	// maxSafeShift caps the exponent so the backoff shift cannot overflow int64.
	maxSafeShift = 62
)

// --------------------------------------------------------------------------------
// Utility Functions

// Wait sleeps for an exponentially increasing delay based on the 1-based
// attempt number, capped at maxWait, with random jitter added on top.
//
// The delay is min(maxWait, base * 2^(attempt-1)) plus up to
// jitterFactor * delay of jitter. It returns ctx.Err() if the context is
// cancelled before the delay elapses.
func Wait(ctx context.Context, attempt uint, base, maxWait time.Duration, jitterFactor float64) error {
	if base <= 0 {
		base = DefaultMinWait
	}

	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}

	if jitterFactor < 0 || jitterFactor > 1 {
		jitterFactor = DefaultJitterFactor
	}

	attempt = max(attempt, 1)

	wait := backoff(attempt, base, maxWait)

	var jitter time.Duration

	if jitterFactor > 0 {
		maxJitter := time.Duration(float64(wait) * jitterFactor)

		j, err := rand.Int(rand.Reader, big.NewInt(int64(maxJitter)))
		if err != nil {
			return fmt.Errorf("failed to generate jitter: %w", err)
		}

		jitter = time.Duration(j.Int64())
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait + jitter):
		return nil
	}
}

// --------------------------------------------------------------------------------
// Helper Functions

// backoff computes the exponential delay for an attempt, clamped to maxWait.
func backoff(attempt uint, base, maxWait time.Duration) time.Duration {
	shift := attempt - 1
	if shift > maxSafeShift {
		return maxWait
	}

	if maxShifted := math.MaxInt64 / base; maxShifted < 1<<shift {
		return maxWait
	}

	return min(base*(1<<shift), maxWait)
}
