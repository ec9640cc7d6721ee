package reason

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain answer", "plain answer"},
		{"<think>internal reasoning</think>the answer", "the answer"},
		{"```json\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"<think>x</think>```\npayload\n```", "payload"},
	}
	for _, tt := range tests {
		if got := CleanText(tt.in); got != tt.want {
			t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHTTPClientInvoke(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sekret" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model":"test-model","choices":[{"message":{"content":"<think>hm</think>ok"},"finish_reason":"stop"}],"usage":{"total_tokens":42}}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(HTTPConfig{Endpoint: srv.URL, Model: "test-model", APIKey: "sekret"})
	resp, err := client.Invoke(context.Background(), Request{System: "sys", Prompt: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text != "ok" {
		t.Fatalf("expected cleaned text, got %q", resp.Text)
	}
	if resp.TokensUsed != 42 {
		t.Fatalf("expected 42 tokens, got %d", resp.TokensUsed)
	}
}

func TestHTTPClientRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewHTTPClient(HTTPConfig{Endpoint: srv.URL})
	_, err := client.Invoke(context.Background(), Request{Prompt: "hi"})
	var limited *ErrRateLimited
	if !errors.As(err, &limited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if limited.RetryAfter != "7" {
		t.Fatalf("expected Retry-After passthrough, got %q", limited.RetryAfter)
	}
}

func TestHTTPClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewHTTPClient(HTTPConfig{Endpoint: srv.URL})
	_, err := client.Invoke(context.Background(), Request{Prompt: "hi"})
	var invoke *ErrInvoke
	if !errors.As(err, &invoke) {
		t.Fatalf("expected ErrInvoke, got %v", err)
	}
	if invoke.Status != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", invoke.Status)
	}
}

func TestWithRetryEventualSuccess(t *testing.T) {
	calls := 0
	inv := Chain(func(_ context.Context, _ Request) (*Response, error) {
		calls++
		if calls < 3 {
			return nil, &ErrInvoke{Status: 503, Body: "unavailable"}
		}
		return &Response{Text: "done"}, nil
	}, WithRetry(3, time.Millisecond, nil))

	resp, err := inv(context.Background(), Request{})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text != "done" || calls != 3 {
		t.Fatalf("expected success on third call, got %q after %d calls", resp.Text, calls)
	}
}

func TestWithRetryGivesUp(t *testing.T) {
	calls := 0
	inv := Chain(func(_ context.Context, _ Request) (*Response, error) {
		calls++
		return nil, &ErrInvoke{Status: 500, Body: "boom"}
	}, WithRetry(2, time.Millisecond, nil))

	if _, err := inv(context.Background(), Request{}); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls (1 + 2 retries), got %d", calls)
	}
}

func TestWithRetrySkipsCircuitOpen(t *testing.T) {
	calls := 0
	inv := Chain(func(_ context.Context, _ Request) (*Response, error) {
		calls++
		return nil, &ErrCircuitOpen{}
	}, WithRetry(5, time.Millisecond, nil))

	if _, err := inv(context.Background(), Request{}); err == nil {
		t.Fatal("expected circuit-open error")
	}
	if calls != 1 {
		t.Fatalf("circuit open must not be retried, got %d calls", calls)
	}
}

func TestWithTimeout(t *testing.T) {
	inv := Chain(func(ctx context.Context, _ Request) (*Response, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
			return &Response{Text: "late"}, nil
		}
	}, WithTimeout(10*time.Millisecond))

	if _, err := inv(context.Background(), Request{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestBreakerOpensAndRecovers(t *testing.T) {
	clock := time.Unix(1000, 0)
	cb := NewCircuitBreaker(
		WithBreakerThreshold(2),
		WithBreakerResetTimeout(30*time.Second),
		WithBreakerHalfOpenMax(1),
		WithBreakerClock(func() time.Time { return clock }),
	)

	if !cb.Allow() {
		t.Fatal("breaker must start closed")
	}
	cb.RecordFailure()
	cb.RecordFailure()
	if cb.Allow() {
		t.Fatal("breaker must open after threshold failures")
	}

	// Before the reset timeout: still open.
	clock = clock.Add(10 * time.Second)
	if cb.Allow() {
		t.Fatal("breaker must stay open before reset timeout")
	}

	// After the reset timeout: half-open probe allowed.
	clock = clock.Add(30 * time.Second)
	if !cb.Allow() {
		t.Fatal("breaker must allow a probe after reset timeout")
	}
	if cb.State() != BreakerHalfOpen {
		t.Fatalf("expected half-open, got %v", cb.State())
	}

	cb.RecordSuccess()
	if cb.State() != BreakerClosed {
		t.Fatalf("expected closed after probe success, got %v", cb.State())
	}
}

func TestWithBreakerRejectsWhenOpen(t *testing.T) {
	cb := NewCircuitBreaker(WithBreakerThreshold(1))
	calls := 0
	inv := Chain(func(_ context.Context, _ Request) (*Response, error) {
		calls++
		return nil, &ErrInvoke{Status: 500}
	}, WithBreaker(cb))

	inv(context.Background(), Request{}) // trips the breaker
	_, err := inv(context.Background(), Request{})
	var open *ErrCircuitOpen
	if !errors.As(err, &open) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("open breaker must not call through, got %d calls", calls)
	}
}
