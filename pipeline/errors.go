package pipeline

import "fmt"

// ErrSerialization is returned when a Report cannot be encoded or decoded.
// Encoding-level only: the Report itself remains valid and the export can
// be retried.
type ErrSerialization struct {
	Op    string // "export", "decode", "save"
	Cause error
}

func (e *ErrSerialization) Error() string {
	return fmt.Sprintf("pipeline: report %s failed: %v", e.Op, e.Cause)
}

func (e *ErrSerialization) Unwrap() error { return e.Cause }
