package agents

import "fmt"

// Kind identifies one analytical lens over contract text.
type Kind string

// The four canonical agent kinds, in fixed order. The order is load-bearing:
// aggregation uses it to break sorting ties deterministically.
const (
	KindStructure   Kind = "Structure"
	KindLegal       Kind = "Legal"
	KindNegotiation Kind = "Negotiation"
	KindManagement  Kind = "Management"
)

// Kinds returns the canonical agent kinds in their fixed order.
func Kinds() []Kind {
	return []Kind{KindStructure, KindLegal, KindNegotiation, KindManagement}
}

// Rank returns the kind's position in the canonical order, or -1 for an
// unknown kind.
func (k Kind) Rank() int {
	switch k {
	case KindStructure:
		return 0
	case KindLegal:
		return 1
	case KindNegotiation:
		return 2
	case KindManagement:
		return 3
	}
	return -1
}

// Valid reports whether k is one of the four canonical kinds.
func (k Kind) Valid() bool { return k.Rank() >= 0 }

// Severity is the four-level ordinal for a finding.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns the severity's ordinal position (low=0 … critical=3),
// or -1 for an unknown value.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	}
	return -1
}

// Valid reports whether s is one of the four defined levels.
func (s Severity) Valid() bool { return s.Rank() >= 0 }

// Scale maps severity onto [0,1] for risk arithmetic:
// low=0, medium=1/3, high=2/3, critical=1.
func (s Severity) Scale() float64 {
	r := s.Rank()
	if r < 0 {
		return 0
	}
	return float64(r) / 3.0
}

// Finding is one discrete observation produced by an agent. Immutable.
type Finding struct {
	Kind        Kind     `json:"agent_kind"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Confidence  float64  `json:"confidence"`
	Location    string   `json:"location,omitempty"` // optional reference into the document
}

// Validate checks the finding against the contract domains. Out-of-domain
// values are a contract violation: rejected, never clamped, so agent bugs
// are not masked.
func (f *Finding) Validate() error {
	if !f.Kind.Valid() {
		return fmt.Errorf("unknown agent kind %q", f.Kind)
	}
	if f.Description == "" {
		return fmt.Errorf("empty description")
	}
	if !f.Severity.Valid() {
		return fmt.Errorf("unknown severity %q", f.Severity)
	}
	if f.Confidence < 0 || f.Confidence > 1 {
		return fmt.Errorf("confidence %g outside [0,1]", f.Confidence)
	}
	return nil
}
