package agents

import (
	"encoding/json"
	"fmt"
	"strings"
)

// rawFinding is the wire shape an agent's reasoning response must follow.
type rawFinding struct {
	Description string  `json:"description"`
	Severity    string  `json:"severity"`
	Confidence  float64 `json:"confidence"`
	Location    string  `json:"location"`
}

// parseFindings decodes a model response into raw findings. Accepts either a
// bare JSON array or an object wrapping it under "findings" — models drift
// between the two even when told not to.
func parseFindings(text string) ([]rawFinding, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty response")
	}

	var arr []rawFinding
	if err := json.Unmarshal([]byte(text), &arr); err == nil {
		return arr, nil
	}

	var wrapped struct {
		Findings []rawFinding `json:"findings"`
	}
	if err := json.Unmarshal([]byte(text), &wrapped); err == nil && wrapped.Findings != nil {
		return wrapped.Findings, nil
	}

	// Last resort: find the outermost array in surrounding prose.
	if start, end := strings.IndexByte(text, '['), strings.LastIndexByte(text, ']'); start >= 0 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &arr); err == nil {
			return arr, nil
		}
	}

	return nil, fmt.Errorf("response is not a findings array")
}
