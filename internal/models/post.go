package models

import "time"

// Source identifies which upstream feed a post came from.
type Source string

const (
	SourceMedium   Source = "Medium"
	SourceBlogspot Source = "Blogspot"
)

// Post is the canonical content unit shared by the whole pipeline.
// Link is the identity key after URL canonicalization.
type Post struct {
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Published time.Time `json:"published"`
	Content   string    `json:"content"`
	Summary   string    `json:"summary,omitempty"`
	Source    Source    `json:"source"`
	// Embedding is reserved for semantic search; the embedding provider is
	// disabled, so it is always nil and marshals as JSON null.
	Embedding []float64 `json:"embedding"`
}
