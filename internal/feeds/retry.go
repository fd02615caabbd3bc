package feeds

import (
	"context"
	"math"
	"time"
)

// retryWithBackoff runs op up to attempts times, sleeping
// base * multiplier^attempt between failures. Cancelling the context aborts
// the wait between attempts; the final error is the last one op returned.
func retryWithBackoff[T any](ctx context.Context, attempts int, base time.Duration, multiplier float64, op func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for i := 0; i < attempts; i++ {
		v, err := op()
		if err == nil {
			return v, nil
		}
		lastErr = err

		if i == attempts-1 {
			break
		}

		backoff := time.Duration(float64(base) * math.Pow(multiplier, float64(i)))
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}

	return zero, lastErr
}
