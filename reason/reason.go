// Package reason provides the client for the external reasoning capability
// that agents invoke. The capability is opaque: given a system prompt and a
// user prompt it returns text, and it may fail or time out.
//
// The Invoker func type is the transport-agnostic contract; HTTPClient is
// the production implementation. Retry, timeout and circuit-breaking are
// middleware around an Invoker, so the orchestration layer above never
// retries (per-run latency stays bounded).
//
//	client := reason.NewHTTPClient(reason.HTTPConfig{Endpoint: url, Model: m})
//	invoke := reason.Chain(client.Invoke,
//		reason.WithRetry(2, 500*time.Millisecond, logger),
//		reason.WithTimeout(60*time.Second),
//	)
package reason

import (
	"context"
	"regexp"
	"strings"
)

// Request is one reasoning invocation.
type Request struct {
	System      string  // system prompt (analytical lens)
	Prompt      string  // user prompt (contract text + instructions)
	MaxTokens   int     // response budget; 0 uses the client default
	Temperature float32 // sampling temperature
}

// Response is the reasoning capability's reply.
type Response struct {
	Text       string `json:"text"`
	Model      string `json:"model"`
	TokensUsed int    `json:"tokens_used"`
}

// Invoker is the transport-agnostic reasoning call: request in, response out.
// Both production clients and test fakes implement this signature.
type Invoker func(ctx context.Context, req Request) (*Response, error)

// Middleware wraps an Invoker with cross-cutting behaviour.
type Middleware func(Invoker) Invoker

// Chain applies middlewares to an Invoker, first middleware outermost.
func Chain(inv Invoker, mws ...Middleware) Invoker {
	for i := len(mws) - 1; i >= 0; i-- {
		inv = mws[i](inv)
	}
	return inv
}

// thinkRe matches chain-of-thought blocks some models emit before the answer.
var thinkRe = regexp.MustCompile(`(?s)<think>.*?</think>\s*`)

// fenceRe matches a markdown code fence wrapper around the whole response.
var fenceRe = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*\\n?(.*?)\\n?```\\s*$")

// CleanText strips <think> blocks and a wrapping code fence from a model
// response, returning the payload the caller actually asked for.
func CleanText(text string) string {
	text = strings.TrimSpace(thinkRe.ReplaceAllString(text, ""))
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}
	return text
}
