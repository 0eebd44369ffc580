package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Analysis is the structured output the model is asked for: intent flags
// plus the location it found in the query, if any.
type Analysis struct {
	NeedsWeather bool   `json:"needs_weather"`
	NeedsPlaces  bool   `json:"needs_places"`
	Location     string `json:"location"`
}

// Analyzer is the optional LLM collaborator. Implementations are
// best-effort: any error falls back to the heuristic path.
type Analyzer interface {
	// Analyze extracts intent flags and a candidate location from a query.
	Analyze(ctx context.Context, query string) (*Analysis, error)
}

// ParseAnalysis extracts the first JSON object embedded in free-form model
// output. Models wrap answers in prose or markdown fences at will, so we
// cut from the first '{' to the last '}' before unmarshalling.
func ParseAnalysis(content string) (*Analysis, error) {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object in model output")
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse model output: %w", err)
	}
	analysis.Location = strings.TrimSpace(analysis.Location)
	return &analysis, nil
}
