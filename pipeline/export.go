package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Export serializes a Report to JSON. Lossless and round-trippable: every
// field survives Decode, and merged findings keep their canonical order
// (encoding/json preserves slice order; map keys are emitted sorted, which
// is stable across runs).
func Export(r *Report) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, &ErrSerialization{Op: "export", Cause: err}
	}
	return data, nil
}

// Decode parses an exported report back into a Report.
func Decode(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, &ErrSerialization{Op: "decode", Cause: err}
	}
	return &r, nil
}

// SaveFile writes the exported report into dir with a timestamped filename
// derived from the report itself, so repeated saves of one report are
// idempotent. Returns the written path.
func SaveFile(dir string, r *Report) (string, error) {
	data, err := Export(r)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &ErrSerialization{Op: "save", Cause: err}
	}

	stamp := time.UnixMilli(r.GeneratedAt).UTC().Format("20060102T150405Z")
	path := filepath.Join(dir, fmt.Sprintf("analysis_%s_%s.json", stamp, r.ID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &ErrSerialization{Op: "save", Cause: err}
	}
	return path, nil
}
