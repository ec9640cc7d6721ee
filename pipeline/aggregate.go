package pipeline

import (
	"log/slog"
	"sort"
	"time"

	"github.com/hazyhaar/pacta/agents"
	"github.com/hazyhaar/pacta/idgen"
)

// AggregatorConfig configures risk aggregation. Weights and clock are
// explicit so pipeline instances stay independently configurable and
// deterministic under test.
type AggregatorConfig struct {
	// Weights per agent kind for the overall risk score. Missing or
	// non-positive entries default to 1.0 (equal weighting): no
	// domain-specific tuning is assumed out of the box.
	Weights map[agents.Kind]float64 `json:"weights" yaml:"weights"`

	// NewID generates report IDs (default: "rep_" + UUIDv7).
	NewID idgen.Generator `json:"-" yaml:"-"`

	// Now is the clock for generated_at (default: time.Now).
	Now func() time.Time `json:"-" yaml:"-"`

	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *AggregatorConfig) defaults() {
	if c.NewID == nil {
		c.NewID = idgen.Prefixed("rep_", idgen.UUIDv7())
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// weight returns the effective weight for a kind.
func (c *AggregatorConfig) weight(kind agents.Kind) float64 {
	if w, ok := c.Weights[kind]; ok && w > 0 {
		return w
	}
	return 1.0
}

// Aggregator normalizes per-agent outcomes onto one risk scale and resolves
// them into a Report. Pure apart from the report ID and timestamp: identical
// results always produce identical scores and ordering.
type Aggregator struct {
	cfg AggregatorConfig
}

// NewAggregator creates an Aggregator.
func NewAggregator(cfg AggregatorConfig) *Aggregator {
	cfg.defaults()
	return &Aggregator{cfg: cfg}
}

// Aggregate resolves a complete result set into a Report.
//
// Overall risk is the weight-normalized mean of per-agent risk over
// succeeded agents only, so partial failure never biases the score toward
// zero. Zero succeeded agents set AllFailed instead of fabricating a score.
func (a *Aggregator) Aggregate(contractName string, textChars int, results map[agents.Kind]AgentResult) *Report {
	report := &Report{
		ID:           a.cfg.NewID(),
		ContractName: contractName,
		TextChars:    textChars,
		PerAgent:     make(map[agents.Kind]AgentResult, len(agents.Kinds())),
		Merged:       []agents.Finding{},
		GeneratedAt:  a.cfg.Now().UnixMilli(),
	}

	// The per-agent map is total over the canonical kinds even if the
	// caller's map is not.
	for _, kind := range agents.Kinds() {
		res, ok := results[kind]
		if !ok {
			res = AgentResult{
				Kind:     kind,
				Status:   StatusFailed,
				Findings: []agents.Finding{},
				Error:    "no result recorded",
			}
		}
		report.PerAgent[kind] = res
	}

	var weightSum, riskSum float64
	succeeded := 0

	// Iterate in canonical order, never map order, so merged findings come
	// out identical regardless of the caller's key iteration.
	for _, kind := range agents.Kinds() {
		res := report.PerAgent[kind]
		if res.Status != StatusSucceeded {
			continue
		}
		succeeded++

		w := a.cfg.weight(kind)
		weightSum += w
		riskSum += w * agentRisk(res.Findings)

		report.Merged = append(report.Merged, res.Findings...)
	}

	if succeeded == 0 {
		report.AllFailed = true
	} else {
		risk := riskSum / weightSum
		report.OverallRisk = &risk
	}

	// Severity desc, confidence desc; the stable sort preserves the
	// canonical kind order (and original sequence) for ties.
	sort.SliceStable(report.Merged, func(i, j int) bool {
		fi, fj := report.Merged[i], report.Merged[j]
		if fi.Severity.Rank() != fj.Severity.Rank() {
			return fi.Severity.Rank() > fj.Severity.Rank()
		}
		return fi.Confidence > fj.Confidence
	})

	a.cfg.Logger.Debug("aggregation complete",
		"report_id", report.ID,
		"succeeded", succeeded,
		"findings", len(report.Merged),
		"all_failed", report.AllFailed)
	return report
}

// agentRisk derives one agent's risk as the confidence-weighted mean of its
// findings' severity scale. No findings means no risk observed: 0.
func agentRisk(findings []agents.Finding) float64 {
	var confSum, weighted float64
	for _, f := range findings {
		confSum += f.Confidence
		weighted += f.Confidence * f.Severity.Scale()
	}
	if confSum == 0 {
		return 0
	}
	return weighted / confSum
}
