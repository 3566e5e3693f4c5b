package domain

import "context"

// HistoryStore defines conversation persistence. Load returns (nil, nil)
// when no record exists for the user. Save is an idempotent upsert keyed by
// UserID; concurrent saves for the same user are last-write-wins.
type HistoryStore interface {
	Load(ctx context.Context, userID UserID) (*History, error)
	Save(ctx context.Context, h *History) error
}

// Generator defines how the core application talks to the LLM service.
// It receives the full ordered prompt context and returns a single model
// turn containing one text part.
type Generator interface {
	Generate(ctx context.Context, turns []Turn) (Turn, error)
}
