package dedupe

import (
	"net/url"
	"strings"

	"github.com/rudratech/blog-aggregator/internal/models"
)

// CanonicalURL reduces a link to its identity form: query string and fragment
// dropped, case folded, a single trailing slash removed. Strings that fail to
// parse canonicalize to their lowercased literal form.
func CanonicalURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}

	parsed.RawQuery = ""
	parsed.Fragment = ""
	return strings.TrimSuffix(strings.ToLower(parsed.String()), "/")
}

// Posts collapses posts sharing a canonical link. The more complete duplicate
// survives: the longer summary wins, with content length breaking the tie
// before summaries have been generated.
func Posts(posts []models.Post) []models.Post {
	seen := make(map[string]models.Post, len(posts))
	order := make([]string, 0, len(posts))

	for _, post := range posts {
		key := CanonicalURL(post.Link)
		existing, ok := seen[key]
		if !ok {
			seen[key] = post
			order = append(order, key)
			continue
		}
		if moreComplete(post, existing) {
			seen[key] = post
		}
	}

	out := make([]models.Post, 0, len(order))
	for _, key := range order {
		out = append(out, seen[key])
	}
	return out
}

func moreComplete(candidate, existing models.Post) bool {
	if len(candidate.Summary) != len(existing.Summary) {
		return len(candidate.Summary) > len(existing.Summary)
	}
	return len(candidate.Content) > len(existing.Content)
}
