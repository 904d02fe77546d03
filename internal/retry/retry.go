package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Do runs op, retrying errors the predicate accepts up to maxRetries extra
// attempts spaced by the given policy. A nil predicate retries every error.
func Do(ctx context.Context, policy backoff.BackOff, maxRetries uint64, retryable func(error) bool, op func() error) error {
	b := backoff.WithContext(backoff.WithMaxRetries(policy, maxRetries), ctx)
	return backoff.Retry(func() error {
		err := op()
		if err != nil && retryable != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b)
}

// Incremental doubles the delay between attempts, starting at initial.
func Incremental(initial time.Duration) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	b.RandomizationFactor = 0
	b.Multiplier = 2
	return b
}

// Fixed waits the same interval between every attempt.
func Fixed(interval time.Duration) backoff.BackOff {
	return backoff.NewConstantBackOff(interval)
}
