package graph

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/obonovai/graphonauts/internal/types"
)

const baseRetryDelay = 100 * time.Millisecond

// connectWithRetry runs dial up to attempts times with exponential backoff capped at
// maxDelay. The final failure is wrapped as a ConnectionError.
func connectWithRetry(ctx context.Context, backend Backend, attempts int, maxDelay time.Duration, dial func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if lastErr = dial(ctx); lastErr == nil {
			return nil
		}

		if ctx.Err() != nil {
			return types.WrapError(ErrCodeGraphConnectionFailed,
				fmt.Sprintf("%s: connection attempt cancelled", backend), ctx.Err())
		}
		if attempt == attempts-1 {
			break
		}

		// baseRetryDelay * 2^attempt
		delay := baseRetryDelay * time.Duration(math.Pow(2, float64(attempt)))
		if maxDelay > 0 && delay > maxDelay {
			delay = maxDelay
		}
		if err := sleep(ctx, delay); err != nil {
			return types.WrapError(ErrCodeGraphConnectionFailed,
				fmt.Sprintf("%s: connection attempt cancelled", backend), err)
		}
	}

	return types.WrapError(ErrCodeGraphConnectionFailed,
		fmt.Sprintf("%s: failed to connect after %d attempts", backend, attempts), lastErr)
}
