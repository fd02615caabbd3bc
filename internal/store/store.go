package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/rudratech/blog-aggregator/internal/config"
	"github.com/rudratech/blog-aggregator/internal/dedupe"
	"github.com/rudratech/blog-aggregator/internal/embedding"
	"github.com/rudratech/blog-aggregator/internal/feeds"
	"github.com/rudratech/blog-aggregator/internal/models"
	"github.com/rudratech/blog-aggregator/internal/processing"
)

// ErrAllSourcesUnavailable is the only failure Posts surfaces to callers: a
// blocking refresh where every upstream feed failed and no cache exists to
// answer from.
var ErrAllSourcesUnavailable = errors.New("all blog sources are currently unavailable")

// How long one full ingestion pass may take, retries included.
const pipelineTimeout = 2 * time.Minute

// Store owns the merged, enriched post list. It is the only component that
// mutates cache state; everything else receives copies.
type Store struct {
	log          *slog.Logger
	sources      []feeds.Source
	embed        embedding.Provider
	content      config.Content
	ttl          time.Duration
	snapshotPath string
	prefixLen    int

	group singleflight.Group

	mu          sync.Mutex
	entries     []models.Post
	lastRefresh time.Time
}

func New(cfg config.Common, sources []feeds.Source, provider embedding.Provider, log *slog.Logger) *Store {
	return &Store{
		log:          log,
		sources:      sources,
		embed:        provider,
		content:      cfg.Content,
		ttl:          cfg.Cache.TTL,
		snapshotPath: cfg.Cache.SnapshotPath,
		prefixLen:    cfg.Search.ContentPrefixLength,
	}
}

// Posts returns the cached post list, refreshing it when stale, cold, or
// forced. A populated cache always answers immediately; staleness only
// triggers a background refresh. Concurrent refreshes collapse into a single
// in-flight pipeline run whose result every waiter shares.
func (s *Store) Posts(ctx context.Context, forceRefresh bool) ([]models.Post, error) {
	if !forceRefresh {
		s.mu.Lock()
		if s.entries != nil {
			posts := clone(s.entries)
			stale := time.Since(s.lastRefresh) >= s.ttl
			s.mu.Unlock()
			if stale {
				s.log.Info("cache is stale, refreshing in background")
				s.refreshInBackground()
			}
			return posts, nil
		}
		s.mu.Unlock()

		// Cold start: a readable snapshot answers immediately, even when old.
		if posts, at, err := s.loadSnapshot(); err == nil && len(posts) > 0 {
			s.log.Info("loaded posts from snapshot", slog.Int("count", len(posts)))
			s.mu.Lock()
			s.entries = posts
			s.lastRefresh = at
			s.mu.Unlock()
			if time.Since(at) >= s.ttl {
				s.log.Info("snapshot is stale, refreshing in background")
				s.refreshInBackground()
			}
			return clone(posts), nil
		}
	}

	// The refresh itself runs on its own bounded context; see runPipeline.
	return s.refresh()
}

// Clear drops the in-memory cache. The next call behaves as a cold miss.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = nil
	s.lastRefresh = time.Time{}
	s.mu.Unlock()
	s.log.Info("cache cleared")
}

// Stats reports the cached post count and the last refresh time.
func (s *Store) Stats() (int, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries), s.lastRefresh
}

func (s *Store) refresh() ([]models.Post, error) {
	v, err, _ := s.group.Do("refresh", func() (any, error) {
		return s.runPipeline()
	})
	if err != nil {
		return nil, err
	}
	return clone(v.([]models.Post)), nil
}

func (s *Store) refreshInBackground() {
	go func() {
		if _, err := s.refresh(); err != nil {
			s.log.Error("background refresh failed", slog.Any("err", err))
		}
	}()
}

// runPipeline executes one full ingestion pass: fan out to the feeds, dedupe,
// summarize, sort, persist, swap. It runs on its own bounded context so that
// fire-and-forget refreshes and the waiters sharing a singleflight result are
// not tied to whichever request happened to trigger it. On failure the cache
// is left untouched.
func (s *Store) runPipeline() ([]models.Post, error) {
	ctx, cancel := context.WithTimeout(context.Background(), pipelineTimeout)
	defer cancel()

	log := s.log.With(slog.String("refresh_id", uuid.NewString()))
	log.Info("starting refresh", slog.Int("sources", len(s.sources)))

	merged, err := s.fetchAll(ctx, log)
	if err != nil {
		return nil, err
	}

	unique := dedupe.Posts(merged)
	if len(unique) == 0 {
		return nil, ErrAllSourcesUnavailable
	}
	log.Info("deduplicated posts", slog.Int("before", len(merged)), slog.Int("after", len(unique)))

	// Summaries already generated for a link in the snapshot are reused.
	previous := s.snapshotByLink()

	for i := range unique {
		post := &unique[i]

		if prev, ok := previous[dedupe.CanonicalURL(post.Link)]; ok && prev.Summary != "" {
			post.Summary = prev.Summary
		} else {
			post.Summary = processing.GenerateSummary(post.Content, s.content.MaxSummaryLength, s.content.MinSentenceLength)
		}

		vector, err := s.embed.Embed(ctx, embeddingText(*post, s.prefixLen))
		if err != nil {
			log.Warn("embedding generation failed", slog.String("title", post.Title), slog.Any("err", err))
			vector = nil
		}
		post.Embedding = vector
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Published.After(unique[j].Published)
	})

	s.saveSnapshot(unique, log)

	s.mu.Lock()
	s.entries = unique
	s.lastRefresh = time.Now()
	s.mu.Unlock()

	log.Info("refresh complete", slog.Int("count", len(unique)))
	return unique, nil
}

// fetchAll fans out to every source concurrently and fans the results back
// in. One slow or failed source cannot stall the others: each branch fails or
// completes on its own request timeout. A failed source is logged and
// skipped; only total failure is an error.
func (s *Store) fetchAll(ctx context.Context, log *slog.Logger) ([]models.Post, error) {
	type result struct {
		name  string
		posts []models.Post
		err   error
	}

	ch := make(chan result, len(s.sources))
	for _, src := range s.sources {
		go func(src feeds.Source) {
			posts, err := src.Fetch(ctx)
			ch <- result{name: src.Name(), posts: posts, err: err}
		}(src)
	}

	var merged []models.Post
	var errs []error
	for range s.sources {
		res := <-ch
		if res.err != nil {
			log.Error("source fetch failed", slog.String("source", res.name), slog.Any("err", res.err))
			errs = append(errs, res.err)
			continue
		}
		merged = append(merged, res.posts...)
	}

	if len(errs) == len(s.sources) {
		return nil, fmt.Errorf("%w: %w", ErrAllSourcesUnavailable, errors.Join(errs...))
	}
	return merged, nil
}

func embeddingText(post models.Post, prefixLen int) string {
	content := post.Content
	if runes := []rune(content); prefixLen > 0 && len(runes) > prefixLen {
		content = string(runes[:prefixLen])
	}
	return strings.TrimSpace(post.Title + " " + post.Summary + " " + content)
}

func clone(posts []models.Post) []models.Post {
	out := make([]models.Post, len(posts))
	copy(out, posts)
	return out
}
