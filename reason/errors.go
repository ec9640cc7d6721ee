package reason

import "fmt"

// ErrInvoke is returned when the reasoning endpoint rejects a call or
// returns a non-success status.
type ErrInvoke struct {
	Status int
	Body   string
	Cause  error
}

func (e *ErrInvoke) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("reason: invoke failed: %v", e.Cause)
	}
	return fmt.Sprintf("reason: invoke failed: status %d: %s", e.Status, e.Body)
}

func (e *ErrInvoke) Unwrap() error { return e.Cause }

// ErrRateLimited is returned on HTTP 429. Retry middleware backs off on it;
// callers above the client treat it as a transient analysis failure.
type ErrRateLimited struct {
	RetryAfter string
}

func (e *ErrRateLimited) Error() string {
	if e.RetryAfter != "" {
		return fmt.Sprintf("reason: rate limited (retry after %s)", e.RetryAfter)
	}
	return "reason: rate limited"
}

// ErrCircuitOpen is returned when the circuit breaker rejects a call without
// attempting the endpoint.
type ErrCircuitOpen struct{}

func (e *ErrCircuitOpen) Error() string { return "reason: circuit open" }

// ErrEmptyResponse is returned when the endpoint answers successfully but
// carries no usable text.
type ErrEmptyResponse struct {
	Model string
}

func (e *ErrEmptyResponse) Error() string {
	return fmt.Sprintf("reason: empty response from model %s", e.Model)
}
