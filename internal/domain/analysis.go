package domain

import "context"

// Analysis is the structured breakdown of a feedback text produced by the LLM collaborator.
// Used by callers for dashboard enrichment, not by the clustering engine.
type Analysis struct {
	Category    string
	Urgency     string // low, medium, high
	Themes      []string
	ActionItems []string
}

// Analyzer produces a structured analysis of a feedback text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (Analysis, error)
}
