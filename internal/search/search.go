package search

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/rudratech/blog-aggregator/internal/config"
	"github.com/rudratech/blog-aggregator/internal/models"
)

// Result is a post with its ephemeral relevance score. Scores exist only on
// queried, ranked results and are never persisted.
type Result struct {
	models.Post
	Score float64 `json:"score"`
}

// Scorer ranks a read-only corpus of posts against a query.
type Scorer interface {
	Search(ctx context.Context, query string, posts []models.Post, limit int) []Result
}

var nonWord = regexp.MustCompile(`\W+`)

// KeywordScorer ranks posts by weighted word-boundary term matches across
// title, summary, and a bounded content prefix.
type KeywordScorer struct {
	log *slog.Logger
	cfg config.Search
}

func NewKeywordScorer(cfg config.Search, log *slog.Logger) *KeywordScorer {
	return &KeywordScorer{log: log, cfg: cfg}
}

func (k *KeywordScorer) Search(_ context.Context, query string, posts []models.Post, limit int) []Result {
	queryLower := strings.ToLower(strings.TrimSpace(query))
	if queryLower == "" {
		return nil
	}

	terms := k.terms(queryLower)
	if len(terms) == 0 {
		k.log.Warn("no valid search terms extracted", slog.String("query", query))
		return nil
	}

	patterns := make([]*regexp.Regexp, len(terms))
	for i, term := range terms {
		patterns[i] = wordBoundary(term)
	}
	phrase := wordBoundary(queryLower)

	if limit <= 0 {
		limit = k.cfg.ResultsLimit
	}

	results := make([]Result, 0, len(posts))
	for _, post := range posts {
		// Each field is case-folded independently so weights apply per field.
		title := strings.ToLower(post.Title)
		summary := strings.ToLower(post.Summary)
		content := strings.ToLower(runePrefix(post.Content, k.cfg.ContentPrefixLength))
		searchable := title + " " + summary + " " + content

		var score float64
		matched := 0
		for _, pattern := range patterns {
			titleHits := countMatches(pattern, title)
			summaryHits := countMatches(pattern, summary)
			contentHits := countMatches(pattern, content)

			score += float64(titleHits)*k.cfg.TitleWeight +
				float64(summaryHits)*k.cfg.SummaryWeight +
				float64(contentHits)

			if titleHits+summaryHits+contentHits > 0 {
				matched++
			}
		}

		// Multi-term queries where every term matched somewhere.
		if matched == len(terms) && len(terms) > 1 {
			score += k.cfg.TitleWeight
		}

		// A verbatim occurrence of the whole query outranks any single term.
		if phrase.MatchString(searchable) {
			score += k.cfg.TitleWeight * k.cfg.ExactMatchMultiplier
		}

		if score > 0 {
			results = append(results, Result{Post: post, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// terms splits the lowercased query into scoring terms. The minimum length
// admits two-letter acronyms like "AI" while excluding single-rune noise.
func (k *KeywordScorer) terms(queryLower string) []string {
	var terms []string
	for _, token := range strings.Fields(queryLower) {
		token = nonWord.ReplaceAllString(token, "")
		if utf8.RuneCountInString(token) >= k.cfg.MinTermLength {
			terms = append(terms, token)
		}
	}
	return terms
}

func wordBoundary(s string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(s) + `\b`)
}

func countMatches(pattern *regexp.Regexp, text string) int {
	return len(pattern.FindAllStringIndex(text, -1))
}

func runePrefix(s string, n int) string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
