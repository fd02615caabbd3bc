package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Feeds configures the upstream blog sources and the shared fetch behaviour.
type Feeds struct {
	BloggerFeedURL    string
	BloggerMaxPosts   int
	MediumFeedURL     string
	MediumUsername    string
	UserAgent         string
	RequestTimeout    time.Duration
	RetryAttempts     int
	RetryBackoff      time.Duration
	BackoffMultiplier float64
}

// Content bounds the text normalizer and summarizer output.
type Content struct {
	MaxContentLength  int
	MaxSummaryLength  int
	MinSentenceLength int
}

// Cache configures the post cache and its durable snapshot.
type Cache struct {
	TTL          time.Duration
	SnapshotPath string
}

// Search holds the keyword scoring weights and limits.
type Search struct {
	TitleWeight          float64
	SummaryWeight        float64
	ExactMatchMultiplier float64
	MinTermLength        int
	ContentPrefixLength  int
	ResultsLimit         int
	QueryMaxLength       int
}

// Common is the pipeline configuration shared by every binary.
type Common struct {
	Feeds   Feeds
	Content Content
	Cache   Cache
	Search  Search
}

// API describes HTTP-layer configuration.
type API struct {
	Common
	BindAddr string
}

// Refresher configures the standalone refresh loop.
type Refresher struct {
	Common
	Interval time.Duration
}

func loadCommon() (Common, error) {
	c := Common{
		Feeds: Feeds{
			BloggerFeedURL:    getEnv("BLOGGER_FEED_URL", "https://rudra-tiwari-blogs.blogspot.com/feeds/posts/default"),
			BloggerMaxPosts:   getInt("BLOGGER_MAX_POSTS", 10),
			MediumFeedURL:     getEnv("MEDIUM_FEED_URL", "https://medium.com/feed"),
			MediumUsername:    getEnv("MEDIUM_USERNAME", "rudratech"),
			UserAgent:         getEnv("FETCH_USER_AGENT", "Mozilla/5.0 (compatible; BlogAggregator/3.0)"),
			RequestTimeout:    getDuration("FETCH_TIMEOUT", "10s"),
			RetryAttempts:     getInt("FETCH_RETRY_ATTEMPTS", 3),
			RetryBackoff:      getDuration("FETCH_RETRY_BACKOFF", "1s"),
			BackoffMultiplier: getFloat("FETCH_BACKOFF_MULTIPLIER", 2),
		},
		Content: Content{
			MaxContentLength:  getInt("CONTENT_MAX_LENGTH", 3000),
			MaxSummaryLength:  getInt("SUMMARY_MAX_LENGTH", 300),
			MinSentenceLength: getInt("SUMMARY_MIN_SENTENCE_LEN", 20),
		},
		Cache: Cache{
			TTL:          getDuration("CACHE_TTL", "30m"),
			SnapshotPath: getEnv("CACHE_FILE", "data/posts.json"),
		},
		Search: Search{
			TitleWeight:          getFloat("SEARCH_TITLE_WEIGHT", 5),
			SummaryWeight:        getFloat("SEARCH_SUMMARY_WEIGHT", 2),
			ExactMatchMultiplier: getFloat("SEARCH_EXACT_MATCH_MULTIPLIER", 2),
			MinTermLength:        getInt("SEARCH_MIN_TERM_LEN", 2),
			ContentPrefixLength:  getInt("SEARCH_CONTENT_PREFIX_LEN", 500),
			ResultsLimit:         getInt("SEARCH_RESULTS_LIMIT", 10),
			QueryMaxLength:       getInt("SEARCH_QUERY_MAX_LEN", 500),
		},
	}

	if c.Feeds.BloggerFeedURL == "" {
		return c, fmt.Errorf("BLOGGER_FEED_URL must not be empty")
	}
	if c.Feeds.MediumUsername == "" {
		return c, fmt.Errorf("MEDIUM_USERNAME must not be empty")
	}
	if c.Feeds.BloggerMaxPosts <= 0 {
		return c, fmt.Errorf("BLOGGER_MAX_POSTS must be positive")
	}
	if c.Feeds.RetryAttempts <= 0 {
		return c, fmt.Errorf("FETCH_RETRY_ATTEMPTS must be positive")
	}
	if c.Feeds.RequestTimeout <= 0 {
		return c, fmt.Errorf("FETCH_TIMEOUT must be positive")
	}
	if c.Feeds.BackoffMultiplier < 1 {
		return c, fmt.Errorf("FETCH_BACKOFF_MULTIPLIER cannot be below 1")
	}
	if c.Content.MaxContentLength <= 0 {
		return c, fmt.Errorf("CONTENT_MAX_LENGTH must be positive")
	}
	if c.Content.MaxSummaryLength <= 0 {
		return c, fmt.Errorf("SUMMARY_MAX_LENGTH must be positive")
	}
	if c.Cache.TTL <= 0 {
		return c, fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.Search.MinTermLength <= 0 {
		return c, fmt.Errorf("SEARCH_MIN_TERM_LEN must be positive")
	}
	if c.Search.ResultsLimit <= 0 {
		return c, fmt.Errorf("SEARCH_RESULTS_LIMIT must be positive")
	}
	if c.Search.SummaryWeight < 1 {
		return c, fmt.Errorf("SEARCH_SUMMARY_WEIGHT cannot be below 1")
	}
	if c.Search.TitleWeight < c.Search.SummaryWeight {
		return c, fmt.Errorf("SEARCH_TITLE_WEIGHT cannot be below SEARCH_SUMMARY_WEIGHT")
	}

	return c, nil
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	common, err := loadCommon()
	if err != nil {
		return nil, err
	}

	c := &API{
		Common:   common,
		BindAddr: getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
	}

	return c, nil
}

// LoadRefresher builds a Refresher config from environment variables.
// A zero REFRESH_INTERVAL means run a single refresh and exit.
func LoadRefresher() (*Refresher, error) {
	common, err := loadCommon()
	if err != nil {
		return nil, err
	}

	c := &Refresher{
		Common:   common,
		Interval: getDuration("REFRESH_INTERVAL", "0s"),
	}

	if c.Interval < 0 {
		return nil, fmt.Errorf("REFRESH_INTERVAL cannot be negative")
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}
