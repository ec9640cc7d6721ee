package reason

import (
	"context"
	"log/slog"
	"time"
)

// WithTimeout returns a Middleware that applies a per-call timeout.
// A zero timeout disables it.
func WithTimeout(timeout time.Duration) Middleware {
	return func(next Invoker) Invoker {
		return func(ctx context.Context, req Request) (*Response, error) {
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			return next(ctx, req)
		}
	}
}

// WithRetry returns a Middleware that retries failed calls with exponential
// backoff. It respects context cancellation between retries. Retry policy
// lives here, at the capability client, never in the orchestrator.
//
// Parameters:
//   - maxRetries: maximum number of retry attempts (0 = no retry)
//   - baseBackoff: initial wait between retries, doubled each attempt
//   - logger: used to log retry attempts (may be nil for silent retries)
func WithRetry(maxRetries int, baseBackoff time.Duration, logger *slog.Logger) Middleware {
	return func(next Invoker) Invoker {
		return func(ctx context.Context, req Request) (*Response, error) {
			var lastErr error
			for attempt := 0; attempt <= maxRetries; attempt++ {
				resp, err := next(ctx, req)
				if err == nil {
					return resp, nil
				}
				lastErr = err

				// Don't retry if context is done.
				if ctx.Err() != nil {
					return nil, lastErr
				}

				// Don't retry on circuit open — it won't help.
				if _, ok := err.(*ErrCircuitOpen); ok {
					return nil, err
				}

				if attempt < maxRetries {
					wait := baseBackoff * (1 << uint(attempt))
					if logger != nil {
						logger.WarnContext(ctx, "retrying reasoning call",
							"attempt", attempt+1,
							"max_retries", maxRetries,
							"backoff_ms", wait.Milliseconds(),
							"error", err)
					}
					select {
					case <-ctx.Done():
						return nil, lastErr
					case <-time.After(wait):
					}
				}
			}
			return nil, lastErr
		}
	}
}

// WithBreaker returns a Middleware that guards the endpoint with a circuit
// breaker shared across all agents of a pipeline instance.
func WithBreaker(cb *CircuitBreaker) Middleware {
	return func(next Invoker) Invoker {
		return func(ctx context.Context, req Request) (*Response, error) {
			if !cb.Allow() {
				return nil, &ErrCircuitOpen{}
			}
			resp, err := next(ctx, req)
			if err != nil {
				cb.RecordFailure()
				return nil, err
			}
			cb.RecordSuccess()
			return resp, nil
		}
	}
}
