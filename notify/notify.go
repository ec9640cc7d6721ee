// Package notify delivers finished analysis reports to an external webhook.
// Delivery is best effort: a failed notification is logged and dropped, it
// never fails the analysis that produced the report.
package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hazyhaar/pacta/pipeline"
)

// Config configures the webhook notifier.
type Config struct {
	// URL receives a POST with the full report JSON. Empty disables
	// notification entirely.
	URL string `json:"url" yaml:"url"`

	// Secret, when set, signs the payload with HMAC-SHA256. The hex digest
	// is sent as "X-Signature-256: sha256=<hex>" so receivers can verify
	// authenticity.
	Secret string `json:"secret" yaml:"secret"`

	// Timeout bounds one delivery attempt (default: 15s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Notifier posts reports to the configured webhook.
type Notifier struct {
	cfg    Config
	client *http.Client
}

// New creates a Notifier. A nil-URL notifier is valid and does nothing.
func New(cfg Config) *Notifier {
	cfg.defaults()
	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Enabled reports whether a webhook URL is configured.
func (n *Notifier) Enabled() bool { return n.cfg.URL != "" }

// Notify posts the report to the webhook. Errors are returned for the
// caller to log; they carry no obligation to retry or abort.
func (n *Notifier) Notify(ctx context.Context, r *pipeline.Report) error {
	if !n.Enabled() {
		return nil
	}

	body, err := pipeline.Export(r)
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.cfg.Secret != "" {
		mac := hmac.New(sha256.New, []byte(n.cfg.Secret))
		mac.Write(body)
		req.Header.Set("X-Signature-256", "sha256="+hex.EncodeToString(mac.Sum(nil)))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: POST %s: %w", n.cfg.URL, err)
	}
	resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("notify: webhook returned %d", resp.StatusCode)
	}

	n.cfg.Logger.DebugContext(ctx, "report delivered", "report_id", r.ID, "status", resp.StatusCode)
	return nil
}
