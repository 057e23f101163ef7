package ai

import (
	"regexp"
	"strings"
)

const (
	summaryTokenLimit = 20

	improvementWeak   = "Be more specific and mention trade-offs or testing."
	improvementStrong = "Add a concrete example or metrics."
)

// keyTerms is the relevance vocabulary counted by the heuristic scorer.
var keyTerms = []string{
	"design", "trade-off", "complexity", "edge", "optimize", "test",
	"security", "performance", "scalability", "consistency", "retry", "idempotent",
}

var keyTermPatterns = compileKeyTerms()

// sentenceEnd marks the boundary of the first sentence: terminal punctuation
// followed by whitespace.
var sentenceEnd = regexp.MustCompile(`[.!?]\s`)

func compileKeyTerms() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(keyTerms))
	for _, term := range keyTerms {
		patterns = append(patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(term)+`\b`))
	}
	return patterns
}

// HeuristicScore grades an answer using length and keyword-density rules. It is
// a total, deterministic function: identical input always yields an identical
// Result, with no external dependency.
func HeuristicScore(text string) Result {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Result{
			Score:       1,
			Summary:     "No answer provided.",
			Improvement: "Provide an answer with key ideas.",
		}
	}

	length := len(strings.Fields(trimmed))
	hits := 0
	for _, pattern := range keyTermPatterns {
		if pattern.MatchString(trimmed) {
			hits++
		}
	}

	score := 1
	switch {
	case length >= 80 && hits >= 2:
		score = 5
	case length >= 50 && hits >= 1:
		score = 4
	case length >= 25:
		score = 3
	case length >= 10:
		score = 2
	}

	improvement := improvementWeak
	if score >= 4 {
		improvement = improvementStrong
	}

	return Result{
		Score:       score,
		Summary:     summarize(trimmed),
		Improvement: improvement,
	}
}

// summarize takes the first sentence and caps it at summaryTokenLimit tokens,
// appending an ellipsis when truncated.
func summarize(text string) string {
	sentence := text
	if loc := sentenceEnd.FindStringIndex(text); loc != nil {
		sentence = text[:loc[0]+1]
	}

	tokens := strings.Fields(sentence)
	if len(tokens) > summaryTokenLimit {
		return strings.Join(tokens[:summaryTokenLimit], " ") + "..."
	}
	return strings.Join(tokens, " ")
}
