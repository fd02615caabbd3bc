package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/joho/godotenv/autoload"

	"github.com/rudratech/blog-aggregator/internal/config"
	"github.com/rudratech/blog-aggregator/internal/embedding"
	"github.com/rudratech/blog-aggregator/internal/feeds"
	"github.com/rudratech/blog-aggregator/internal/logger"
	"github.com/rudratech/blog-aggregator/internal/models"
	"github.com/rudratech/blog-aggregator/internal/search"
	"github.com/rudratech/blog-aggregator/internal/store"
)

func main() {
	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	provider := embedding.Disabled{}
	sources := []feeds.Source{
		feeds.NewBlogger(cfg.Feeds, cfg.Content, log),
		feeds.NewMedium(cfg.Feeds, cfg.Content, log),
	}
	posts := store.New(cfg.Common, sources, provider, log)
	scorer := search.NewEmbeddingScorer(provider, search.NewKeywordScorer(cfg.Search, log), log)

	srv := &server{log: log, cfg: cfg, store: posts, scorer: scorer}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)
	r.Get("/posts", srv.handlePosts)
	r.Post("/search", srv.handleSearch)
	r.Get("/revalidate", srv.handleRevalidateInfo)
	r.Post("/revalidate", srv.handleRevalidate)

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      3 * time.Minute, // a forced refresh waits on upstream feeds
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

// postProvider is the slice of the store the handlers need.
type postProvider interface {
	Posts(ctx context.Context, forceRefresh bool) ([]models.Post, error)
	Clear()
	Stats() (int, time.Time)
}

type server struct {
	log    *slog.Logger
	cfg    *config.API
	store  postProvider
	scorer search.Scorer
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// postResponse strips content and embedding before anything leaves the
// process.
type postResponse struct {
	Title     string        `json:"title"`
	Link      string        `json:"link"`
	Published time.Time     `json:"published"`
	Summary   string        `json:"summary"`
	Source    models.Source `json:"source"`
}

type searchResultResponse struct {
	postResponse
	Score float64 `json:"score"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, lastRefresh := s.store.Stats()

	payload := map[string]any{
		"status": "ok",
		"posts":  count,
	}
	if !lastRefresh.IsZero() {
		payload["lastRefresh"] = lastRefresh.UTC().Format(time.RFC3339)
	}

	writeJSON(w, http.StatusOK, payload)
}

func (s *server) handlePosts(w http.ResponseWriter, r *http.Request) {
	forceRefresh := r.URL.Query().Get("refresh") == "true"

	posts, err := s.store.Posts(r.Context(), forceRefresh)
	if err != nil {
		s.writePostsError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"posts":     toResponses(posts),
		"count":     len(posts),
		"cached":    !forceRefresh,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type searchRequest struct {
	Query string `json:"query"`
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request body must be JSON with a query field"})
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query is required and cannot be empty"})
		return
	}
	if len(query) > s.cfg.Search.QueryMaxLength {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query is too long"})
		return
	}

	posts, err := s.store.Posts(r.Context(), false)
	if err != nil {
		s.writePostsError(w, err)
		return
	}

	if len(posts) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"results": []searchResultResponse{},
			"count":   0,
			"query":   query,
			"message": "No posts available to search",
		})
		return
	}

	results := s.scorer.Search(r.Context(), query, posts, s.cfg.Search.ResultsLimit)

	cleaned := make([]searchResultResponse, 0, len(results))
	for _, res := range results {
		cleaned = append(cleaned, searchResultResponse{
			postResponse: toResponse(res.Post),
			Score:        res.Score,
		})
	}

	s.log.Info("search completed", slog.String("query", query), slog.Int("results", len(cleaned)))

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"results":   cleaned,
		"count":     len(cleaned),
		"query":     query,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *server) handleRevalidate(w http.ResponseWriter, r *http.Request) {
	s.store.Clear()

	posts, err := s.store.Posts(r.Context(), true)
	if err != nil {
		s.writePostsError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Cache revalidated successfully",
		"count":     len(posts),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *server) handleRevalidateInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Revalidation endpoint is available. Send a POST request to clear the cache.",
	})
}

func (s *server) writePostsError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrAllSourcesUnavailable) {
		s.log.Error("no content available", slog.Any("err", err))
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no content available: all blog sources are currently unavailable"})
		return
	}
	s.log.Error("fetch posts", slog.Any("err", err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to fetch posts"})
}

func toResponse(post models.Post) postResponse {
	return postResponse{
		Title:     post.Title,
		Link:      post.Link,
		Published: post.Published,
		Summary:   post.Summary,
		Source:    post.Source,
	}
}

func toResponses(posts []models.Post) []postResponse {
	out := make([]postResponse, 0, len(posts))
	for _, post := range posts {
		out = append(out, toResponse(post))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// nothing better to do
	}
}
