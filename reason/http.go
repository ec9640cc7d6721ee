package reason

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// maxResponseBody caps the amount of response data read from the endpoint
// to prevent memory exhaustion (10 MiB).
const maxResponseBody int64 = 10 << 20

// HTTPConfig configures the HTTP reasoning client.
type HTTPConfig struct {
	// Endpoint is the base URL of an OpenAI-compatible server
	// (e.g. "http://vllm-host:8000"). "/v1/chat/completions" is appended.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// Model name sent with every request.
	Model string `json:"model" yaml:"model"`

	// APIKey, when set, is sent as a bearer token.
	APIKey string `json:"-" yaml:"-"`

	// Timeout is the whole-call HTTP timeout (default: 120s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxTokens is the default response budget when a request leaves it zero.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *HTTPConfig) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 120 * time.Second
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 1200
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// HTTPClient invokes an OpenAI-compatible chat completions endpoint.
type HTTPClient struct {
	cfg    HTTPConfig
	client *http.Client
}

// NewHTTPClient creates a client for the configured endpoint.
func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	cfg.defaults()
	return &HTTPClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float32       `json:"temperature"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Invoke sends one chat completion request. It satisfies the Invoker
// signature; wrap it with middleware before handing it to agents.
func (c *HTTPClient) Invoke(ctx context.Context, req Request) (*Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.cfg.MaxTokens
	}

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, &ErrInvoke{Cause: fmt.Errorf("marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.Endpoint+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, &ErrInvoke{Cause: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &ErrInvoke{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))
		return nil, &ErrRateLimited{RetryAfter: resp.Header.Get("Retry-After")}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
		return nil, &ErrInvoke{Status: resp.StatusCode, Body: string(raw)}
	}

	var parsed chatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&parsed); err != nil {
		return nil, &ErrInvoke{Cause: fmt.Errorf("decode response: %w", err)}
	}
	if len(parsed.Choices) == 0 {
		return nil, &ErrEmptyResponse{Model: parsed.Model}
	}

	text := CleanText(parsed.Choices[0].Message.Content)
	if text == "" {
		return nil, &ErrEmptyResponse{Model: parsed.Model}
	}

	c.cfg.Logger.DebugContext(ctx, "reasoning call complete",
		"model", parsed.Model,
		"tokens", parsed.Usage.TotalTokens,
		"duration_ms", time.Since(start).Milliseconds())

	return &Response{
		Text:       text,
		Model:      parsed.Model,
		TokensUsed: parsed.Usage.TotalTokens,
	}, nil
}
