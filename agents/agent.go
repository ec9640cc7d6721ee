// Package agents defines the polymorphic analysis contract over contract
// documents and its four variants: Structure, Legal, Negotiation and
// Management. All variants share one implementation that differs only in
// its system prompt; the orchestrator treats them interchangeably.
package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hazyhaar/pacta/intake"
	"github.com/hazyhaar/pacta/reason"
)

// Agent is one independent analytical lens over a contract document.
// Implementations must not mutate the Document.
type Agent interface {
	Kind() Kind
	Analyze(ctx context.Context, doc *intake.Document) ([]Finding, error)
}

// Config configures the LLM-backed agents.
type Config struct {
	// MaxTextChars truncates the contract text sent to the reasoning
	// capability (default: 24000). Hints are appended after the text.
	MaxTextChars int `json:"max_text_chars" yaml:"max_text_chars"`

	// MaxTokens is the per-call response budget (0 = client default).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Temperature for the reasoning calls. Low by default: findings should
	// be reproducible, not creative.
	Temperature float32 `json:"temperature" yaml:"temperature"`

	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.MaxTextChars <= 0 {
		c.MaxTextChars = 24000
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// llmAgent is the shared implementation behind all four kinds.
type llmAgent struct {
	kind   Kind
	system string
	invoke reason.Invoker
	cfg    Config
}

// New creates an agent of the given kind backed by the invoker.
func New(kind Kind, invoke reason.Invoker, cfg Config) (Agent, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("agents: unknown kind %q", kind)
	}
	cfg.defaults()
	return &llmAgent{
		kind:   kind,
		system: systemPrompt(kind),
		invoke: invoke,
		cfg:    cfg,
	}, nil
}

// All creates the four canonical agents in their fixed order, sharing one
// invoker and configuration.
func All(invoke reason.Invoker, cfg Config) []Agent {
	out := make([]Agent, 0, len(Kinds()))
	for _, k := range Kinds() {
		a, _ := New(k, invoke, cfg) // canonical kinds never fail
		out = append(out, a)
	}
	return out
}

func (a *llmAgent) Kind() Kind { return a.kind }

// Analyze sends the document to the reasoning capability and parses the
// response into validated findings. Reasoning failures and unparseable
// output surface as ErrAnalysis; out-of-domain findings as
// ErrMalformedFinding.
func (a *llmAgent) Analyze(ctx context.Context, doc *intake.Document) ([]Finding, error) {
	resp, err := a.invoke(ctx, reason.Request{
		System:      a.system,
		Prompt:      a.buildPrompt(doc),
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
	})
	if err != nil {
		// Propagate context errors as-is so the orchestrator can tell a
		// timeout apart from an analysis failure.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ErrAnalysis{Kind: a.kind, Cause: err}
	}

	raw, err := parseFindings(resp.Text)
	if err != nil {
		return nil, &ErrAnalysis{Kind: a.kind, Cause: err}
	}

	findings := make([]Finding, 0, len(raw))
	for i, rf := range raw {
		f := Finding{
			Kind:        a.kind,
			Description: strings.TrimSpace(rf.Description),
			Severity:    Severity(strings.ToLower(strings.TrimSpace(rf.Severity))),
			Confidence:  rf.Confidence,
			Location:    strings.TrimSpace(rf.Location),
		}
		if err := f.Validate(); err != nil {
			return nil, &ErrMalformedFinding{Kind: a.kind, Index: i, Reason: err.Error()}
		}
		findings = append(findings, f)
	}

	a.cfg.Logger.DebugContext(ctx, "agent analysis complete",
		"kind", a.kind, "findings", len(findings), "model", resp.Model)
	return findings, nil
}

// buildPrompt assembles the user prompt: truncated contract text followed by
// the structural hints the intake produced.
func (a *llmAgent) buildPrompt(doc *intake.Document) string {
	text := doc.RawText
	truncated := false
	if len(text) > a.cfg.MaxTextChars {
		text = text[:a.cfg.MaxTextChars]
		truncated = true
	}

	var sb strings.Builder
	sb.WriteString("Contract")
	if doc.Title != "" {
		sb.WriteString(": ")
		sb.WriteString(doc.Title)
	}
	sb.WriteString("\n\n")
	sb.WriteString(text)
	if truncated {
		sb.WriteString("\n[text truncated]")
	}

	sb.WriteString(fmt.Sprintf("\n\nPages: %d", doc.Hints.PageCount))
	if headings := sectionOutline(doc.Hints.Sections); headings != "" {
		sb.WriteString("\nDetected sections: ")
		sb.WriteString(headings)
	}
	return sb.String()
}

// sectionOutline lists detected heading titles, capped to keep prompts lean.
func sectionOutline(sections []intake.Section) string {
	const maxHeadings = 40
	var titles []string
	for _, s := range sections {
		if s.Type == "heading" && s.Title != "" {
			titles = append(titles, s.Title)
			if len(titles) == maxHeadings {
				break
			}
		}
	}
	return strings.Join(titles, "; ")
}
