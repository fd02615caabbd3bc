package search

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/rudratech/blog-aggregator/internal/embedding"
	"github.com/rudratech/blog-aggregator/internal/models"
)

// Posts with a lower cosine similarity than this are considered noise.
const minSimilarity = 0.3

// EmbeddingScorer ranks by cosine similarity over query and post vectors.
// The production provider never yields a vector, so every call currently
// lands on the keyword fallback; the seam stays in place for when embeddings
// come back.
type EmbeddingScorer struct {
	log      *slog.Logger
	provider embedding.Provider
	fallback Scorer
}

func NewEmbeddingScorer(provider embedding.Provider, fallback Scorer, log *slog.Logger) *EmbeddingScorer {
	return &EmbeddingScorer{log: log, provider: provider, fallback: fallback}
}

func (e *EmbeddingScorer) Search(ctx context.Context, query string, posts []models.Post, limit int) []Result {
	vector, err := e.provider.Embed(ctx, query)
	if err != nil {
		e.log.Warn("query embedding failed, using keyword search", slog.Any("err", err))
	}
	if vector == nil {
		return e.fallback.Search(ctx, query, posts, limit)
	}

	results := make([]Result, 0, len(posts))
	for _, post := range posts {
		if post.Embedding == nil {
			continue
		}
		if score := cosineSimilarity(vector, post.Embedding); score > minSimilarity {
			results = append(results, Result{Post: post, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// cosineSimilarity returns 0 for mismatched or zero-magnitude vectors.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
