package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/pacta/agents"
	"github.com/hazyhaar/pacta/intake"
)

// OrchestratorConfig configures the fan-out.
type OrchestratorConfig struct {
	// AgentTimeout bounds each agent invocation (default: 90s). A timeout
	// cancels only that agent's in-flight call, never its siblings.
	AgentTimeout time.Duration `json:"agent_timeout" yaml:"agent_timeout"`

	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *OrchestratorConfig) defaults() {
	if c.AgentTimeout <= 0 {
		c.AgentTimeout = 90 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Orchestrator runs a set of agents against one document. Invocations are
// independent and isolated: one agent's failure or timeout never aborts or
// delays the others, and no retries happen at this layer.
type Orchestrator struct {
	cfg OrchestratorConfig
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	cfg.defaults()
	return &Orchestrator{cfg: cfg}
}

// Run invokes every agent concurrently and collects the outcomes. The
// returned map is total over the four canonical kinds: a kind with no
// configured agent yields a Failed result, never a missing key. Run returns
// only once every invocation has resolved.
func (o *Orchestrator) Run(ctx context.Context, doc *intake.Document, agentSet []agents.Agent) map[agents.Kind]AgentResult {
	results := make([]AgentResult, len(agents.Kinds()))

	byKind := make(map[agents.Kind]agents.Agent, len(agentSet))
	for _, a := range agentSet {
		byKind[a.Kind()] = a
	}

	g, gctx := errgroup.WithContext(ctx)
	// Full fan-out per document: one slot per canonical kind.
	g.SetLimit(len(agents.Kinds()))

	for i, kind := range agents.Kinds() {
		agent, ok := byKind[kind]
		if !ok {
			results[i] = AgentResult{
				Kind:     kind,
				Status:   StatusFailed,
				Findings: []agents.Finding{},
				Error:    "agent not configured",
			}
			continue
		}

		g.Go(func() error {
			results[i] = o.runOne(gctx, kind, agent, doc)
			return nil // failures are captured, never propagated past the join
		})
	}

	// Join barrier: the aggregator must never observe a partial result set.
	_ = g.Wait()

	out := make(map[agents.Kind]AgentResult, len(results))
	for _, res := range results {
		out[res.Kind] = res
	}
	return out
}

// runOne isolates a single agent invocation under its own timeout.
func (o *Orchestrator) runOne(ctx context.Context, kind agents.Kind, agent agents.Agent, doc *intake.Document) AgentResult {
	actx, cancel := context.WithTimeout(ctx, o.cfg.AgentTimeout)
	defer cancel()

	start := time.Now()
	findings, err := agent.Analyze(actx, doc)
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		status := StatusFailed
		if errors.Is(err, context.DeadlineExceeded) {
			status = StatusTimedOut
		}
		o.cfg.Logger.WarnContext(ctx, "agent run unsuccessful",
			"kind", kind, "status", status, "elapsed_ms", elapsed, "error", err)
		return AgentResult{
			Kind:      kind,
			Status:    status,
			Findings:  []agents.Finding{},
			Error:     err.Error(),
			ElapsedMs: elapsed,
		}
	}

	if findings == nil {
		findings = []agents.Finding{}
	}
	o.cfg.Logger.DebugContext(ctx, "agent run complete",
		"kind", kind, "findings", len(findings), "elapsed_ms", elapsed)
	return AgentResult{
		Kind:      kind,
		Status:    StatusSucceeded,
		Findings:  findings,
		ElapsedMs: elapsed,
	}
}
