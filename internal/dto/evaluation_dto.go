package dto

// EvaluateRequest carries a single free-text answer. The text may be a bare
// answer or an annotated transcript line ("Candidate says: ...").
type EvaluateRequest struct {
	Text string `json:"text"`
}

// EvaluationResponse is the structured quality assessment for one answer.
type EvaluationResponse struct {
	Score       int    `json:"score"`
	Summary     string `json:"summary"`
	Improvement string `json:"improvement"`
}

// CandidateIn identifies one candidate answer inside a ranking batch. The id
// is caller-supplied and may be absent.
type CandidateIn struct {
	ID   *string `json:"id,omitempty"`
	Text string  `json:"text"`
}

// RankRequest asks for a batch of candidates to be evaluated and ranked.
type RankRequest struct {
	Candidates []CandidateIn `json:"candidates" validate:"required,min=1"`
}

// RankedCandidate merges a candidate's identity and text with its evaluation.
type RankedCandidate struct {
	ID          *string `json:"id,omitempty"`
	Text        string  `json:"text"`
	Score       int     `json:"score"`
	Summary     string  `json:"summary"`
	Improvement string  `json:"improvement"`
}

// RankResponse lists candidates ordered best-first.
type RankResponse struct {
	Ranked []RankedCandidate `json:"ranked"`
}
