package embedding

import "context"

// Provider produces vector embeddings for semantic search. A nil vector with
// a nil error means "no embedding available" and callers must fall back to
// keyword scoring.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Disabled never yields a vector, forcing every consumer onto the keyword
// path.
// TODO: replace with a real provider once the embedding API quota is restored.
type Disabled struct{}

func (Disabled) Embed(context.Context, string) ([]float64, error) {
	return nil, nil
}
