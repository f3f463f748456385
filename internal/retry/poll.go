package retry

import (
	"context"
	"errors"
	"time"
)

var ErrExhausted = errors.New("retry: attempts exhausted")

// Poll calls fetch up to maxAttempts times, sleeping delay between attempts,
// until it reports done. The zero value of T and the last error are returned
// when every attempt fails. Replaces the ad hoc fetch-sleep-retry loops for
// eventually consistent reads.
func Poll[T any](
	ctx context.Context,
	maxAttempts int,
	delay time.Duration,
	fetch func(ctx context.Context) (T, bool, error),
) (T, error) {

	var zero T
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}

		v, done, err := fetch(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		if done {
			return v, nil
		}
	}

	if lastErr != nil {
		return zero, lastErr
	}
	return zero, ErrExhausted
}
