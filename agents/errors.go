package agents

import "fmt"

// ErrAnalysis is returned when the reasoning capability errored, timed out
// upstream, or returned output that cannot be parsed as findings.
type ErrAnalysis struct {
	Kind  Kind
	Cause error
}

func (e *ErrAnalysis) Error() string {
	return fmt.Sprintf("agents: %s analysis failed: %v", e.Kind, e.Cause)
}

func (e *ErrAnalysis) Unwrap() error { return e.Cause }

// ErrMalformedFinding is returned when an agent's parsed output violates the
// finding contract (severity outside the four levels, confidence outside
// [0,1], empty description). The whole agent run is rejected.
type ErrMalformedFinding struct {
	Kind   Kind
	Index  int // position of the offending finding in the response
	Reason string
}

func (e *ErrMalformedFinding) Error() string {
	return fmt.Sprintf("agents: %s returned malformed finding #%d: %s", e.Kind, e.Index, e.Reason)
}
