package providers

import (
	"context"
	"infcheck/internal/structures"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy retries an operation a bounded number of times with linear
// backoff (delay, 2*delay, ...). It is meant for idempotent reads and the
// authentication handshake only; destructive writes must never be wrapped.
type RetryPolicy struct {
	maxAttempts int
	delay       time.Duration
}

func NewRetryPolicy(conf *structures.Config) RetryPolicy {
	return RetryPolicy{
		maxAttempts: conf.Retry.MaxAttempts,
		delay:       conf.Retry.Backoff,
	}
}

// Do runs op until it succeeds, returns an error classified permanent, or the
// attempt budget is spent.
func (p RetryPolicy) Do(ctx context.Context, op func() error, permanent func(error) bool) error {
	bo := backoff.WithContext(
		backoff.WithMaxRetries(&linearBackOff{delay: p.delay}, uint64(max(p.maxAttempts-1, 0))),
		ctx,
	)
	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if permanent != nil && permanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}, bo)
}

// linearBackOff grows the wait by the initial delay on every attempt.
type linearBackOff struct {
	delay time.Duration
	next  time.Duration
}

func (l *linearBackOff) NextBackOff() time.Duration {
	if l.next == 0 {
		l.next = l.delay
	}
	d := l.next
	l.next += l.delay
	return d
}

func (l *linearBackOff) Reset() {
	l.next = 0
}
