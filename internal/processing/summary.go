package processing

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// SummaryPlaceholder is returned when there is no content to summarize.
const SummaryPlaceholder = "Click to read more..."

const maxSummarySentences = 3

var (
	sentenceSplit = regexp.MustCompile(`[.!?]\s+`)
	terminalPunct = regexp.MustCompile(`[.!?]$`)
)

// Boilerplate lead-ins that feeds prepend but that are not part of the post.
var leadInPrefixes = []string{
	"Continue reading on Medium",
	"Read more",
	"Click here",
	"Source:",
	"Originally published",
}

// GenerateSummary derives a short human-readable summary from normalized post
// content: the first few substantial sentences that fit inside maxLen runes.
func GenerateSummary(content string, maxLen, minSentenceLen int) string {
	cleaned := strings.TrimSpace(content)
	if cleaned == "" {
		return SummaryPlaceholder
	}

	for _, prefix := range leadInPrefixes {
		if len(cleaned) >= len(prefix) && strings.EqualFold(cleaned[:len(prefix)], prefix) {
			cleaned = strings.TrimSpace(cleaned[len(prefix):])
		}
	}

	var sentences []string
	for _, s := range sentenceSplit.Split(cleaned, -1) {
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) > minSentenceLen {
			sentences = append(sentences, s)
		}
	}

	// Nothing sentence-like survived (headers, fragments): hard cut instead.
	if len(sentences) == 0 {
		return hardCut(cleaned, maxLen) + "..."
	}

	var b strings.Builder
	for i := 0; i < len(sentences) && i < maxSummarySentences; i++ {
		if utf8.RuneCountInString(b.String())+utf8.RuneCountInString(sentences[i]) > maxLen {
			break
		}
		b.WriteString(sentences[i])
		b.WriteString(" ")
	}

	summary := strings.TrimSpace(b.String())
	if summary == "" {
		return hardCut(cleaned, maxLen) + "..."
	}
	if !terminalPunct.MatchString(summary) {
		summary += "..."
	}
	return summary
}

func hardCut(s string, n int) string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
