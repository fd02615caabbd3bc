package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rudratech/blog-aggregator/internal/config"
	"github.com/rudratech/blog-aggregator/internal/models"
	"github.com/rudratech/blog-aggregator/internal/processing"
)

// Medium reads the RSS 2.0 feed published for a fixed username.
type Medium struct {
	client        *client
	feedURL       string
	maxContentLen int
}

func NewMedium(cfg config.Feeds, content config.Content, log *slog.Logger) *Medium {
	return &Medium{
		client:        newClient(cfg, log.With("source", "medium")),
		feedURL:       fmt.Sprintf("%s/@%s", strings.TrimRight(cfg.MediumFeedURL, "/"), cfg.MediumUsername),
		maxContentLen: content.MaxContentLength,
	}
}

func (m *Medium) Name() string { return "Medium" }

func (m *Medium) Fetch(ctx context.Context) ([]models.Post, error) {
	feed, err := m.client.fetchFeed(ctx, m.Name(), m.feedURL)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	posts := make([]models.Post, 0, len(feed.Items))
	for _, item := range feed.Items {
		// RSS carries the body in content:encoded, which gofeed exposes as
		// Content; older items only have a description.
		body := item.Content
		if body == "" {
			body = item.Description
		}

		posts = append(posts, models.Post{
			Title:     orUntitled(item.Title),
			Link:      item.Link,
			Published: publishedAt(item, now),
			Content:   processing.ExtractReadableText(body, m.maxContentLen),
			Source:    models.SourceMedium,
		})
	}

	m.client.log.Info("fetched posts", slog.Int("count", len(posts)))
	return posts, nil
}
