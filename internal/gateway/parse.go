package gateway

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/cv-editor/internal/llm"
)

// ParseStructured decodes JSON from a model response that may carry code fences or prose.
// When the cleaned text does not decode, it retries with the span between the first
// opening bracket and the last matching closing bracket.
func ParseStructured(text string, into any) error {
	cleaned := llm.CleanJSONBlock(text)
	err := json.Unmarshal([]byte(cleaned), into)
	if err == nil {
		return nil
	}
	if span := bracketSpan(text); span != "" && span != cleaned {
		if spanErr := json.Unmarshal([]byte(span), into); spanErr == nil {
			return nil
		}
	}
	return fmt.Errorf("response is not JSON: %w", err)
}

func bracketSpan(text string) string {
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return ""
	}
	closer := "}"
	if text[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(text, closer)
	if end <= start {
		return ""
	}
	return text[start : end+1]
}

// SplitLines is the plain-text fallback for structured requests: one entry per
// non-blank line, trimmed.
func SplitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
