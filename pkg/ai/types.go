package ai

import "context"

// Result is the structured quality assessment produced for a single answer.
// Score is always within [1,5]; Summary and Improvement are never absent but
// may be empty strings.
type Result struct {
	Score       int    `json:"score"`
	Summary     string `json:"summary"`
	Improvement string `json:"improvement"`
}

// RemoteScorer produces a raw model completion for a candidate answer. The
// returned text is untrusted and must go through ParseResult before use.
type RemoteScorer interface {
	Complete(ctx context.Context, answer string) (string, error)
}
