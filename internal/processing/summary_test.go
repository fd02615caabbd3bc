package processing_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rudratech/blog-aggregator/internal/processing"
	"github.com/stretchr/testify/require"
)

func TestGenerateSummaryEmpty(t *testing.T) {
	require.Equal(t, processing.SummaryPlaceholder, processing.GenerateSummary("", 300, 20))
	require.Equal(t, processing.SummaryPlaceholder, processing.GenerateSummary("   \n  ", 300, 20))
}

func TestGenerateSummaryStripsLeadIn(t *testing.T) {
	content := "Continue reading on Medium This article explains the basics of Go concurrency patterns. A second sentence carries more detail about channels."
	got := processing.GenerateSummary(content, 300, 20)

	require.True(t, strings.HasPrefix(got, "This article explains"), "got %q", got)
	require.NotContains(t, got, "Continue reading")
}

func TestGenerateSummaryBounded(t *testing.T) {
	content := strings.Repeat("This is a reasonably long sentence for tests. ", 50)
	got := processing.GenerateSummary(content, 300, 20)
	require.LessOrEqual(t, utf8.RuneCountInString(got), 303)
	require.NotEmpty(t, got)
}

func TestGenerateSummaryNoSubstantialSentences(t *testing.T) {
	got := processing.GenerateSummary("Short. Tiny. Words.", 300, 20)
	require.True(t, strings.HasSuffix(got, "..."), "got %q", got)
	require.LessOrEqual(t, utf8.RuneCountInString(got), 303)
}

func TestGenerateSummaryAddsEllipsisWithoutTerminalPunct(t *testing.T) {
	content := "This sentence is definitely long enough to survive filtering"
	got := processing.GenerateSummary(content, 300, 20)
	require.True(t, strings.HasSuffix(got, "..."), "got %q", got)
}

func TestGenerateSummaryKeepsTerminalPunct(t *testing.T) {
	content := "First substantial sentence about something interesting here. The closing sentence ends with a period as expected."
	got := processing.GenerateSummary(content, 300, 20)
	require.False(t, strings.HasSuffix(got, "...."), "got %q", got)
	require.True(t, strings.HasSuffix(got, "."), "got %q", got)
}

func TestGenerateSummaryAtMostThreeSentences(t *testing.T) {
	content := "Sentence number one is comfortably long enough! Sentence number two is comfortably long enough! Sentence number three is comfortably long enough! Sentence number four is comfortably long enough!"
	got := processing.GenerateSummary(content, 1000, 20)
	require.NotContains(t, got, "four")
}
