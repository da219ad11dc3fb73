package llm

import (
	"context"
	"errors"
)

// Client abstracts LLM providers for accessibility recommendations.
type Client interface {
	Recommend(ctx context.Context, input RecommendInput) (string, error)
}

// RecommendInput captures the audit results the prompt is built from.
type RecommendInput struct {
	URL        string
	TotalScore int
	Categories []CategoryIssues
}

// CategoryIssues is one checker category's outcome.
type CategoryIssues struct {
	Name   string
	Score  float64
	Issues []string
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// Recommend returns ErrNotImplemented.
func (PlaceholderClient) Recommend(ctx context.Context, input RecommendInput) (string, error) {
	_ = ctx
	_ = input
	return "", ErrNotImplemented
}
