package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrParse indicates no well-formed JSON object could be located in the model
// output.
var ErrParse = errors.New("no parseable JSON object in model output")

// ParseResult extracts a Result from arbitrary model output. Models frequently
// wrap their JSON in commentary or markdown fences, so the candidate object is
// the span between the first '{' and the last '}'. Score defaults to 1 when
// missing or non-numeric and is clamped to [1,5]; summary and improvement
// default to empty strings and are trimmed.
func ParseResult(raw string) (Result, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return Result{}, ErrParse
	}

	var payload struct {
		Score       any `json:"score"`
		Summary     any `json:"summary"`
		Improvement any `json:"improvement"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrParse, err)
	}

	return Result{
		Score:       clampScore(coerceScore(payload.Score)),
		Summary:     coerceString(payload.Summary),
		Improvement: coerceString(payload.Improvement),
	}, nil
}

func coerceScore(value any) int {
	switch v := value.(type) {
	case float64:
		return int(v)
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return 1
}

func clampScore(score int) int {
	if score < 1 {
		return 1
	}
	if score > 5 {
		return 5
	}
	return score
}

func coerceString(value any) string {
	if text, ok := value.(string); ok {
		return strings.TrimSpace(text)
	}
	return ""
}
