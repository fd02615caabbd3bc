package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/rudratech/blog-aggregator/internal/config"
	"github.com/rudratech/blog-aggregator/internal/models"
	"github.com/rudratech/blog-aggregator/internal/processing"
)

// Blogger reads a Blogspot Atom feed.
type Blogger struct {
	client        *client
	feedURL       string
	maxPosts      int
	maxContentLen int
}

func NewBlogger(cfg config.Feeds, content config.Content, log *slog.Logger) *Blogger {
	return &Blogger{
		client:        newClient(cfg, log.With("source", "blogger")),
		feedURL:       cfg.BloggerFeedURL,
		maxPosts:      cfg.BloggerMaxPosts,
		maxContentLen: content.MaxContentLength,
	}
}

func (b *Blogger) Name() string { return "Blogger" }

// Fetch pulls and normalizes the most recent entries. Zero entries is not an
// error; only an exhausted fetch is.
func (b *Blogger) Fetch(ctx context.Context) ([]models.Post, error) {
	url := fmt.Sprintf("%s?max-results=%d", b.feedURL, b.maxPosts)

	feed, err := b.client.fetchFeed(ctx, b.Name(), url)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	posts := make([]models.Post, 0, len(feed.Items))
	for _, item := range feed.Items {
		posts = append(posts, models.Post{
			Title:     orUntitled(item.Title),
			Link:      alternateLink(item),
			Published: publishedAt(item, now),
			Content:   processing.ExtractReadableText(item.Content, b.maxContentLen),
			Source:    models.SourceBlogspot,
		})
	}

	b.client.log.Info("fetched posts", slog.Int("count", len(posts)))
	return posts, nil
}

// Atom entries can carry several <link> elements; gofeed resolves the
// rel=alternate one into item.Link. Fall back to the first raw link only when
// that resolution came up empty.
func alternateLink(item *gofeed.Item) string {
	if item.Link != "" {
		return item.Link
	}
	if len(item.Links) > 0 {
		return item.Links[0]
	}
	return ""
}
