package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy is a bounded-attempt retry policy shared by all network call sites:
// search backend queries, liveness probes, careers-page fetches and AI calls.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Jitter is the randomization factor applied to each delay, 0 disables it.
	Jitter float64
}

// Default returns the policy used when a component does not configure its own.
func Default() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Second, Jitter: 0.2}
}

// Do runs op, retrying failed attempts with exponential backoff until the
// attempt budget is spent or the context is done. The last error is returned.
func (p Policy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	base := backoff.NewExponentialBackOff()
	if p.BaseDelay > 0 {
		base.InitialInterval = p.BaseDelay
	}
	base.RandomizationFactor = p.Jitter
	base.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(base, uint64(attempts-1)), ctx)
	return backoff.Retry(op, b)
}

// Permanent marks err as not worth retrying. Policy.Do returns it immediately.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
