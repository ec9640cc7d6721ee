package pipeline

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/hazyhaar/pacta/agents"
	"github.com/hazyhaar/pacta/intake"
)

// testAgent is a scriptable agents.Agent.
type testAgent struct {
	kind agents.Kind
	fn   func(ctx context.Context, doc *intake.Document) ([]agents.Finding, error)
}

func (a *testAgent) Kind() agents.Kind { return a.kind }
func (a *testAgent) Analyze(ctx context.Context, doc *intake.Document) ([]agents.Finding, error) {
	return a.fn(ctx, doc)
}

func succeedWith(kind agents.Kind, findings ...agents.Finding) agents.Agent {
	return &testAgent{kind: kind, fn: func(_ context.Context, _ *intake.Document) ([]agents.Finding, error) {
		return findings, nil
	}}
}

func failWith(kind agents.Kind, err error) agents.Agent {
	return &testAgent{kind: kind, fn: func(_ context.Context, _ *intake.Document) ([]agents.Finding, error) {
		return nil, err
	}}
}

func hangUntilCancelled(kind agents.Kind) agents.Agent {
	return &testAgent{kind: kind, fn: func(ctx context.Context, _ *intake.Document) ([]agents.Finding, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
}

func finding(kind agents.Kind, sev agents.Severity, conf float64, desc string) agents.Finding {
	return agents.Finding{Kind: kind, Description: desc, Severity: sev, Confidence: conf}
}

var testDoc = &intake.Document{
	Name:    "contract.txt",
	Format:  intake.FormatTXT,
	RawText: "The parties agree.",
	Hints:   intake.Hints{PageCount: 1},
}

func fixedAggregator(weights map[agents.Kind]float64) *Aggregator {
	return NewAggregator(AggregatorConfig{
		Weights: weights,
		NewID:   func() string { return "rep_test" },
		Now:     func() time.Time { return time.UnixMilli(1700000000000) },
	})
}

func TestRunMapsAllFourKinds(t *testing.T) {
	orch := NewOrchestrator(OrchestratorConfig{AgentTimeout: 50 * time.Millisecond})

	agentSet := []agents.Agent{
		succeedWith(agents.KindStructure),
		failWith(agents.KindLegal, &agents.ErrAnalysis{Kind: agents.KindLegal, Cause: context.DeadlineExceeded}),
		hangUntilCancelled(agents.KindNegotiation),
		// Management deliberately absent.
	}

	results := orch.Run(context.Background(), testDoc, agentSet)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for _, kind := range agents.Kinds() {
		if _, ok := results[kind]; !ok {
			t.Fatalf("missing result for %s", kind)
		}
	}
	if results[agents.KindStructure].Status != StatusSucceeded {
		t.Errorf("Structure: %+v", results[agents.KindStructure])
	}
	if results[agents.KindNegotiation].Status != StatusTimedOut {
		t.Errorf("Negotiation should time out, got %+v", results[agents.KindNegotiation])
	}
	if res := results[agents.KindManagement]; res.Status != StatusFailed || res.Error != "agent not configured" {
		t.Errorf("Management should fail as unconfigured, got %+v", res)
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	// A hanging agent must not delay or abort its siblings' results.
	orch := NewOrchestrator(OrchestratorConfig{AgentTimeout: 30 * time.Millisecond})
	agentSet := []agents.Agent{
		succeedWith(agents.KindStructure, finding(agents.KindStructure, agents.SeverityLow, 0.5, "ok")),
		hangUntilCancelled(agents.KindLegal),
		succeedWith(agents.KindNegotiation),
		succeedWith(agents.KindManagement),
	}

	results := orch.Run(context.Background(), testDoc, agentSet)
	for _, kind := range []agents.Kind{agents.KindStructure, agents.KindNegotiation, agents.KindManagement} {
		if results[kind].Status != StatusSucceeded {
			t.Errorf("%s must succeed despite sibling timeout: %+v", kind, results[kind])
		}
	}
	if len(results[agents.KindStructure].Findings) != 1 {
		t.Errorf("findings lost: %+v", results[agents.KindStructure])
	}
}

func TestRunMalformedFindingBecomesFailed(t *testing.T) {
	orch := NewOrchestrator(OrchestratorConfig{})
	agentSet := []agents.Agent{
		failWith(agents.KindStructure, &agents.ErrMalformedFinding{Kind: agents.KindStructure, Reason: "confidence 1.01 outside [0,1]"}),
		succeedWith(agents.KindLegal),
		succeedWith(agents.KindNegotiation),
		succeedWith(agents.KindManagement),
	}

	results := orch.Run(context.Background(), testDoc, agentSet)
	res := results[agents.KindStructure]
	if res.Status != StatusFailed {
		t.Fatalf("malformed finding must fail the agent, got %s", res.Status)
	}
	if !strings.Contains(res.Error, "malformed finding") {
		t.Fatalf("error detail missing: %q", res.Error)
	}
	if len(res.Findings) != 0 {
		t.Fatal("failed agent must carry no findings")
	}
}

func TestAggregateAllSucceededEmpty(t *testing.T) {
	agg := fixedAggregator(nil)
	results := map[agents.Kind]AgentResult{}
	for _, k := range agents.Kinds() {
		results[k] = AgentResult{Kind: k, Status: StatusSucceeded, Findings: []agents.Finding{}}
	}

	report := agg.Aggregate("c", 10, results)
	if report.AllFailed {
		t.Fatal("all succeeded: AllFailed must be false")
	}
	if report.OverallRisk == nil || *report.OverallRisk != 0.0 {
		t.Fatalf("expected overall risk 0.0, got %v", report.OverallRisk)
	}
	if len(report.Merged) != 0 {
		t.Fatalf("expected no merged findings, got %d", len(report.Merged))
	}
}

func TestAggregateAllFailed(t *testing.T) {
	agg := fixedAggregator(nil)
	results := map[agents.Kind]AgentResult{}
	for _, k := range agents.Kinds() {
		results[k] = AgentResult{Kind: k, Status: StatusFailed, Error: "boom", Findings: []agents.Finding{}}
	}

	report := agg.Aggregate("c", 10, results)
	if !report.AllFailed {
		t.Fatal("expected AllFailed")
	}
	if report.OverallRisk != nil {
		t.Fatalf("no score may be fabricated, got %v", *report.OverallRisk)
	}
	if len(report.PerAgent) != 4 {
		t.Fatalf("per-agent map must stay total, got %d", len(report.PerAgent))
	}
}

func TestAggregatePartialFailureScenario(t *testing.T) {
	// Structure succeeds (1 high finding, confidence 0.9), Legal times out,
	// Negotiation succeeds empty, Management fails.
	agg := fixedAggregator(nil)
	results := map[agents.Kind]AgentResult{
		agents.KindStructure: {
			Kind:   agents.KindStructure,
			Status: StatusSucceeded,
			Findings: []agents.Finding{
				finding(agents.KindStructure, agents.SeverityHigh, 0.9, "missing signature block"),
			},
		},
		agents.KindLegal:       {Kind: agents.KindLegal, Status: StatusTimedOut, Error: "context deadline exceeded", Findings: []agents.Finding{}},
		agents.KindNegotiation: {Kind: agents.KindNegotiation, Status: StatusSucceeded, Findings: []agents.Finding{}},
		agents.KindManagement:  {Kind: agents.KindManagement, Status: StatusFailed, Error: "analysis failed", Findings: []agents.Finding{}},
	}

	report := agg.Aggregate("c", 10, results)
	if len(report.PerAgent) != 4 {
		t.Fatalf("expected 4 per-agent results, got %d", len(report.PerAgent))
	}
	if len(report.Merged) != 1 {
		t.Fatalf("expected exactly the Structure finding, got %d", len(report.Merged))
	}

	// Structure risk = (0.9 * 2/3) / 0.9 = 2/3; Negotiation risk = 0;
	// equal weights over the two succeeded agents → 1/3.
	want := (2.0 / 3.0) / 2.0
	if report.OverallRisk == nil {
		t.Fatal("expected a risk score")
	}
	if diff := *report.OverallRisk - want; diff > 1e-12 || diff < -1e-12 {
		t.Fatalf("expected overall %.6f, got %.6f", want, *report.OverallRisk)
	}
}

func TestAggregateWeightNormalization(t *testing.T) {
	// Legal carries triple weight; Structure all-critical, Legal all-low.
	agg := fixedAggregator(map[agents.Kind]float64{agents.KindLegal: 3})
	results := map[agents.Kind]AgentResult{
		agents.KindStructure: {Kind: agents.KindStructure, Status: StatusSucceeded,
			Findings: []agents.Finding{finding(agents.KindStructure, agents.SeverityCritical, 1.0, "a")}},
		agents.KindLegal: {Kind: agents.KindLegal, Status: StatusSucceeded,
			Findings: []agents.Finding{finding(agents.KindLegal, agents.SeverityLow, 1.0, "b")}},
		agents.KindNegotiation: {Kind: agents.KindNegotiation, Status: StatusFailed, Findings: []agents.Finding{}},
		agents.KindManagement:  {Kind: agents.KindManagement, Status: StatusFailed, Findings: []agents.Finding{}},
	}

	report := agg.Aggregate("c", 10, results)
	// (1*1.0 + 3*0.0) / (1+3) = 0.25 — failed agents contribute no weight.
	if report.OverallRisk == nil || *report.OverallRisk != 0.25 {
		t.Fatalf("expected 0.25, got %v", report.OverallRisk)
	}
}

func TestAggregateDeterministicOrdering(t *testing.T) {
	agg := fixedAggregator(nil)

	build := func() map[agents.Kind]AgentResult {
		return map[agents.Kind]AgentResult{
			agents.KindManagement: {Kind: agents.KindManagement, Status: StatusSucceeded,
				Findings: []agents.Finding{finding(agents.KindManagement, agents.SeverityHigh, 0.8, "m1")}},
			agents.KindStructure: {Kind: agents.KindStructure, Status: StatusSucceeded,
				Findings: []agents.Finding{
					finding(agents.KindStructure, agents.SeverityHigh, 0.8, "s1"),
					finding(agents.KindStructure, agents.SeverityCritical, 0.2, "s2"),
				}},
			agents.KindLegal: {Kind: agents.KindLegal, Status: StatusSucceeded,
				Findings: []agents.Finding{finding(agents.KindLegal, agents.SeverityHigh, 0.9, "l1")}},
			agents.KindNegotiation: {Kind: agents.KindNegotiation, Status: StatusSucceeded,
				Findings: []agents.Finding{finding(agents.KindNegotiation, agents.SeverityHigh, 0.8, "n1")}},
		}
	}

	first := agg.Aggregate("c", 10, build())
	for i := 0; i < 20; i++ {
		next := agg.Aggregate("c", 10, build())
		if diff := cmp.Diff(first, next); diff != "" {
			t.Fatalf("aggregation not deterministic (-first +next):\n%s", diff)
		}
	}

	// Critical first, then highs by confidence, kind order breaking the tie.
	wantOrder := []string{"s2", "l1", "s1", "n1", "m1"}
	for i, want := range wantOrder {
		if first.Merged[i].Description != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, first.Merged[i].Description)
		}
	}
}

func TestAggregateBoundaryConfidenceSorts(t *testing.T) {
	agg := fixedAggregator(nil)
	results := map[agents.Kind]AgentResult{
		agents.KindStructure: {Kind: agents.KindStructure, Status: StatusSucceeded,
			Findings: []agents.Finding{
				finding(agents.KindStructure, agents.SeverityMedium, 0.0, "zero"),
				finding(agents.KindStructure, agents.SeverityMedium, 1.0, "one"),
			}},
		agents.KindLegal:       {Kind: agents.KindLegal, Status: StatusSucceeded, Findings: []agents.Finding{}},
		agents.KindNegotiation: {Kind: agents.KindNegotiation, Status: StatusSucceeded, Findings: []agents.Finding{}},
		agents.KindManagement:  {Kind: agents.KindManagement, Status: StatusSucceeded, Findings: []agents.Finding{}},
	}

	report := agg.Aggregate("c", 10, results)
	if report.Merged[0].Description != "one" || report.Merged[1].Description != "zero" {
		t.Fatalf("boundary confidences must sort descending: %+v", report.Merged)
	}
}

func TestExportDecodeRoundTrip(t *testing.T) {
	agg := fixedAggregator(nil)

	sevs := []agents.Severity{agents.SeverityLow, agents.SeverityMedium, agents.SeverityHigh, agents.SeverityCritical}
	for _, n := range []int{0, 1, 7, 50} {
		results := map[agents.Kind]AgentResult{}
		for _, k := range agents.Kinds() {
			results[k] = AgentResult{Kind: k, Status: StatusSucceeded, Findings: []agents.Finding{}}
		}
		structure := results[agents.KindStructure]
		for i := 0; i < n; i++ {
			structure.Findings = append(structure.Findings,
				finding(agents.KindStructure, sevs[i%len(sevs)], float64(i%101)/100.0, "f"))
		}
		results[agents.KindStructure] = structure

		report := agg.Aggregate("roundtrip", 999, results)
		data, err := Export(report)
		if err != nil {
			t.Fatal(err)
		}
		decoded, err := Decode(data)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(report, decoded); diff != "" {
			t.Fatalf("round trip with %d findings not lossless (-orig +decoded):\n%s", n, diff)
		}
	}
}

func TestSaveFile(t *testing.T) {
	agg := fixedAggregator(nil)
	results := map[agents.Kind]AgentResult{}
	for _, k := range agents.Kinds() {
		results[k] = AgentResult{Kind: k, Status: StatusSucceeded, Findings: []agents.Finding{}}
	}
	report := agg.Aggregate("c", 1, results)

	dir := t.TempDir()
	path, err := SaveFile(dir, report)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(path, ".json") || !strings.Contains(path, report.ID) {
		t.Fatalf("unexpected path %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.ID != report.ID {
		t.Fatalf("saved report mismatch: %s vs %s", decoded.ID, report.ID)
	}
}
