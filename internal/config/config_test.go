package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rudratech/blog-aggregator/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"BLOGGER_FEED_URL", "BLOGGER_MAX_POSTS", "MEDIUM_FEED_URL", "MEDIUM_USERNAME",
		"FETCH_USER_AGENT", "FETCH_TIMEOUT", "FETCH_RETRY_ATTEMPTS", "FETCH_RETRY_BACKOFF",
		"FETCH_BACKOFF_MULTIPLIER", "CONTENT_MAX_LENGTH", "SUMMARY_MAX_LENGTH",
		"SUMMARY_MIN_SENTENCE_LEN", "CACHE_TTL", "CACHE_FILE", "SEARCH_TITLE_WEIGHT",
		"SEARCH_SUMMARY_WEIGHT", "SEARCH_EXACT_MATCH_MULTIPLIER", "SEARCH_MIN_TERM_LEN",
		"SEARCH_CONTENT_PREFIX_LEN", "SEARCH_RESULTS_LIMIT", "SEARCH_QUERY_MAX_LEN",
		"API_BIND_ADDR", "REFRESH_INTERVAL",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoadAPIDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.LoadAPI()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:8080", cfg.BindAddr)
	require.Equal(t, 10, cfg.Feeds.BloggerMaxPosts)
	require.Equal(t, "rudratech", cfg.Feeds.MediumUsername)
	require.Equal(t, 10*time.Second, cfg.Feeds.RequestTimeout)
	require.Equal(t, 3, cfg.Feeds.RetryAttempts)
	require.Equal(t, time.Second, cfg.Feeds.RetryBackoff)
	require.Equal(t, 2.0, cfg.Feeds.BackoffMultiplier)
	require.Equal(t, 3000, cfg.Content.MaxContentLength)
	require.Equal(t, 300, cfg.Content.MaxSummaryLength)
	require.Equal(t, 20, cfg.Content.MinSentenceLength)
	require.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	require.Equal(t, "data/posts.json", cfg.Cache.SnapshotPath)
	require.Equal(t, 5.0, cfg.Search.TitleWeight)
	require.Equal(t, 2.0, cfg.Search.SummaryWeight)
	require.Equal(t, 2.0, cfg.Search.ExactMatchMultiplier)
	require.Equal(t, 2, cfg.Search.MinTermLength)
	require.Equal(t, 500, cfg.Search.ContentPrefixLength)
	require.Equal(t, 10, cfg.Search.ResultsLimit)
	require.Equal(t, 500, cfg.Search.QueryMaxLength)
}

func TestLoadAPIOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_BIND_ADDR", "127.0.0.1:9000")
	t.Setenv("CACHE_TTL", "5m")
	t.Setenv("BLOGGER_MAX_POSTS", "25")
	t.Setenv("SEARCH_TITLE_WEIGHT", "7.5")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:9000", cfg.BindAddr)
	require.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	require.Equal(t, 25, cfg.Feeds.BloggerMaxPosts)
	require.Equal(t, 7.5, cfg.Search.TitleWeight)
}

func TestLoadAPIInvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("BLOGGER_MAX_POSTS", "not-a-number")
	t.Setenv("CACHE_TTL", "soon")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)
	require.Equal(t, 10, cfg.Feeds.BloggerMaxPosts)
	require.Equal(t, 30*time.Minute, cfg.Cache.TTL)
}

func TestLoadAPIValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "negative max posts", key: "BLOGGER_MAX_POSTS", value: "-1"},
		{name: "zero retries", key: "FETCH_RETRY_ATTEMPTS", value: "0"},
		{name: "multiplier below one", key: "FETCH_BACKOFF_MULTIPLIER", value: "0.5"},
		{name: "zero content length", key: "CONTENT_MAX_LENGTH", value: "0"},
		{name: "zero results limit", key: "SEARCH_RESULTS_LIMIT", value: "0"},
		{name: "summary weight below one", key: "SEARCH_SUMMARY_WEIGHT", value: "0.5"},
		{name: "title weight below summary weight", key: "SEARCH_TITLE_WEIGHT", value: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := config.LoadAPI()
			require.Error(t, err)
		})
	}
}

func TestLoadRefresher(t *testing.T) {
	clearEnv(t)

	cfg, err := config.LoadRefresher()
	require.NoError(t, err)
	require.Equal(t, time.Duration(0), cfg.Interval)

	t.Setenv("REFRESH_INTERVAL", "15m")
	cfg, err = config.LoadRefresher()
	require.NoError(t, err)
	require.Equal(t, 15*time.Minute, cfg.Interval)

	t.Setenv("REFRESH_INTERVAL", "-1m")
	_, err = config.LoadRefresher()
	require.Error(t, err)
}
