package feeds

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/rudratech/blog-aggregator/internal/config"
	"github.com/rudratech/blog-aggregator/internal/models"
)

// Source is one upstream blog feed.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]models.Post, error)
}

// SourceError reports a feed whose fetch exhausted its retries.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// client is the HTTP and XML plumbing shared by the adapters. Each adapter
// owns its own instance so concurrent fetches never share a parser.
type client struct {
	http   *http.Client
	parser *gofeed.Parser
	cfg    config.Feeds
	log    *slog.Logger
}

func newClient(cfg config.Feeds, log *slog.Logger) *client {
	return &client{
		http:   &http.Client{Timeout: cfg.RequestTimeout},
		parser: gofeed.NewParser(),
		cfg:    cfg,
		log:    log,
	}
}

// fetchFeed GETs the URL with retry/backoff and parses the XML body. A body
// that fails to parse degrades to an empty feed rather than an error.
func (c *client) fetchFeed(ctx context.Context, name, url string) (*gofeed.Feed, error) {
	body, err := retryWithBackoff(ctx, c.cfg.RetryAttempts, c.cfg.RetryBackoff, c.cfg.BackoffMultiplier, func() (string, error) {
		return c.get(ctx, url)
	})
	if err != nil {
		return nil, &SourceError{Source: name, Err: err}
	}

	feed, err := c.parser.ParseString(body)
	if err != nil {
		c.log.Warn("unparseable feed, treating as empty", slog.Any("err", err))
		return &gofeed.Feed{}, nil
	}
	return feed, nil
}

func (c *client) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	res, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %s", res.Status)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func orUntitled(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Untitled"
	}
	return title
}

func publishedAt(item *gofeed.Item, fallback time.Time) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return fallback
}
