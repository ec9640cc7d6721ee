// Package pipeline coordinates one full analysis pass: fan the document out
// to the agents, collect per-agent outcomes, and resolve them into a single
// deterministic Report.
package pipeline

import "github.com/hazyhaar/pacta/agents"

// Status is the outcome of one agent invocation.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusTimedOut  Status = "timed_out"
)

// AgentResult wraps one agent invocation: status plus findings or error
// detail. Findings are empty unless the status is succeeded.
type AgentResult struct {
	Kind      agents.Kind      `json:"agent_kind"`
	Status    Status           `json:"status"`
	Findings  []agents.Finding `json:"findings"`
	Error     string           `json:"error,omitempty"`
	ElapsedMs int64            `json:"elapsed_ms"`
}

// Report is the unified output of one analysis pass. Immutable once
// produced by the Aggregator.
type Report struct {
	ID           string `json:"id"`
	ContractName string `json:"contract_name,omitempty"`
	TextChars    int    `json:"text_chars"`

	// OverallRisk is nil when zero agents succeeded: an absent score is the
	// honest answer, 0 would misleadingly read as "no risk found".
	OverallRisk *float64 `json:"overall_risk_score,omitempty"`
	AllFailed   bool     `json:"all_failed"`

	// PerAgent always contains exactly the four canonical kinds.
	PerAgent map[agents.Kind]AgentResult `json:"per_agent_results"`

	// Merged is the union of all succeeded agents' findings, ordered by
	// severity desc, confidence desc, then canonical kind order.
	Merged []agents.Finding `json:"merged_findings"`

	// GeneratedAt is Unix milliseconds.
	GeneratedAt int64 `json:"generated_at"`
}

// Succeeded returns how many agents produced a successful result.
func (r *Report) Succeeded() int {
	n := 0
	for _, res := range r.PerAgent {
		if res.Status == StatusSucceeded {
			n++
		}
	}
	return n
}
