package providers

import (
	"context"
	"errors"
	"time"
)

// maxRetries is the retry budget beyond the initial attempt.
const maxRetries = 2

// backoffBase is the first backoff delay; later delays double it. Variable so
// tests can shrink it.
var backoffBase = time.Second

// retryWithBackoff runs fn up to maxRetries+1 times, backing off
// exponentially between attempts. Only retryable provider errors are
// reattempted; Unauthorized and MalformedResponse propagate immediately since
// retrying cannot fix them.
func retryWithBackoff(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		var pe *Error
		if !errors.As(lastErr, &pe) || !pe.retryable() {
			return lastErr
		}

		if attempt < maxRetries {
			backoff := backoffBase << uint(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return lastErr
}
