// Package retry wraps the fixed-delay, unbounded retry policy used for
// database connections.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Notify is called after each failed attempt with the error and the wait
// before the next attempt.
type Notify func(err error, next time.Duration)

// Forever calls op until it returns nil, sleeping delay between attempts.
// There is no attempt limit; it returns an error only when ctx is done.
func Forever(ctx context.Context, delay time.Duration, op func(context.Context) error, notify Notify) error {
	b := backoff.WithContext(backoff.NewConstantBackOff(delay), ctx)
	return backoff.RetryNotify(func() error {
		return op(ctx)
	}, b, backoff.Notify(notify))
}
