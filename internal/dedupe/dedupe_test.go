package dedupe_test

import (
	"strings"
	"testing"

	"github.com/rudratech/blog-aggregator/internal/dedupe"
	"github.com/rudratech/blog-aggregator/internal/models"
	"github.com/stretchr/testify/require"
)

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "empty", raw: "", want: ""},
		{name: "already canonical", raw: "https://ex.com/a", want: "https://ex.com/a"},
		{name: "case folded", raw: "https://EX.com/A", want: "https://ex.com/a"},
		{name: "trailing slash", raw: "https://ex.com/a/", want: "https://ex.com/a"},
		{name: "query dropped", raw: "https://ex.com/a?utm_source=feed&ref=rss", want: "https://ex.com/a"},
		{name: "fragment dropped", raw: "https://ex.com/a#section-2", want: "https://ex.com/a"},
		{name: "all together", raw: "https://EX.com/a/?utm=1#top", want: "https://ex.com/a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, dedupe.CanonicalURL(tt.raw))
		})
	}
}

func TestCanonicalURLUnparseable(t *testing.T) {
	raw := "https://example.com/%zz Path"
	require.Equal(t, strings.ToLower(raw), dedupe.CanonicalURL(raw))
}

func TestCanonicalURLIdempotent(t *testing.T) {
	raws := []string{
		"https://EX.com/a/?utm=1",
		"http://medium.com/@user/post-abc123?source=rss",
		"https://example.com/%zz",
	}
	for _, raw := range raws {
		once := dedupe.CanonicalURL(raw)
		require.Equal(t, once, dedupe.CanonicalURL(once))
	}
}

func TestPostsPrefersLongerSummary(t *testing.T) {
	posts := []models.Post{
		{Title: "A", Link: "http://x.com/a?utm=1", Summary: "12345"},
		{Title: "A", Link: "http://x.com/a/", Summary: strings.Repeat("s", 50)},
		{Title: "B", Link: "http://x.com/b"},
	}

	got := dedupe.Posts(posts)
	require.Len(t, got, 2)
	require.Equal(t, strings.Repeat("s", 50), got[0].Summary)
	require.Equal(t, "B", got[1].Title)
}

func TestPostsContentBreaksSummaryTie(t *testing.T) {
	posts := []models.Post{
		{Title: "short", Link: "http://x.com/a", Content: "short"},
		{Title: "long", Link: "http://x.com/a/", Content: "much longer content here"},
	}

	got := dedupe.Posts(posts)
	require.Len(t, got, 1)
	require.Equal(t, "long", got[0].Title)
}

func TestPostsPreservesOrder(t *testing.T) {
	posts := []models.Post{
		{Title: "first", Link: "http://x.com/1"},
		{Title: "second", Link: "http://x.com/2"},
		{Title: "dup of first", Link: "http://x.com/1/"},
		{Title: "third", Link: "http://x.com/3"},
	}

	got := dedupe.Posts(posts)
	require.Len(t, got, 3)
	require.Equal(t, "http://x.com/1", got[0].Link)
	require.Equal(t, "second", got[1].Title)
	require.Equal(t, "third", got[2].Title)
}

func TestPostsIdempotent(t *testing.T) {
	posts := []models.Post{
		{Link: "http://x.com/a?q=1", Summary: "one"},
		{Link: "http://x.com/a", Summary: "longer one"},
		{Link: "http://x.com/b"},
	}

	once := dedupe.Posts(posts)
	require.Equal(t, once, dedupe.Posts(once))
}
