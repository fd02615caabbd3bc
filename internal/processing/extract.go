package processing

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	xhtml "golang.org/x/net/html"
)

var (
	multiNewline = regexp.MustCompile(`\n{3,}`)
	spaceRun     = regexp.MustCompile(`[ \t]+`)

	scriptBlock = regexp.MustCompile(`(?is)<script[^>]*>.*?</script\s*>|<style[^>]*>.*?</style\s*>`)
	openPara    = regexp.MustCompile(`(?i)<p[^>]*>`)
	closePara   = regexp.MustCompile(`(?i)</p\s*>`)
	lineBreak   = regexp.MustCompile(`(?i)<br\s*/?>`)
	openDiv     = regexp.MustCompile(`(?i)<div[^>]*>`)
	closeDiv    = regexp.MustCompile(`(?i)</div\s*>`)
	anyTag      = regexp.MustCompile(`<[^>]*>`)
)

// Feed HTML frequently arrives with these left over even after the parser
// has decoded entities once.
var residualEntities = strings.NewReplacer(
	"&nbsp;", " ",
	" ", " ",
)

// Containers that hold the actual article body, most specific first.
var contentSelectors = []string{"article", ".post-content", ".entry-content", "main", "body"}

// ExtractReadableText converts arbitrary feed HTML into clean, readable plain
// text bounded to maxLen runes. It never fails: input that cannot be parsed
// degrades to a best-effort tag-stripping fallback, and empty input yields an
// empty string.
func ExtractReadableText(rawHTML string, maxLen int) string {
	if rawHTML == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return fallbackExtract(rawHTML, maxLen)
	}

	doc.Find("script, style, nav, footer, header, aside, iframe, noscript, svg").Remove()

	// Inline breaks first, so they survive inside paragraphs.
	replaceWithText(doc, "br", func(*goquery.Selection) (string, bool) {
		return "\n", true
	})

	// Paragraph-level elements become double newlines.
	replaceWithText(doc, "p, div", func(s *goquery.Selection) (string, bool) {
		text := s.Text()
		if strings.TrimSpace(text) == "" {
			return "", false
		}
		return text + "\n\n", true
	})

	replaceWithText(doc, "h1, h2, h3, h4, h5, h6", func(s *goquery.Selection) (string, bool) {
		return "\n\n" + strings.TrimSpace(s.Text()) + "\n\n", true
	})

	replaceWithText(doc, "li", func(s *goquery.Selection) (string, bool) {
		return "• " + strings.TrimSpace(s.Text()) + "\n", true
	})

	replaceWithText(doc, "ul, ol", func(s *goquery.Selection) (string, bool) {
		return "\n" + s.Text() + "\n", true
	})

	replaceWithText(doc, "pre, code", func(s *goquery.Selection) (string, bool) {
		return "\n" + s.Text() + "\n", true
	})

	var text string
	for _, selector := range contentSelectors {
		if text = doc.Find(selector).First().Text(); text != "" {
			break
		}
	}

	return truncateAtParagraph(cleanWhitespace(text), maxLen)
}

// replaceWithText swaps every matched element for a plain text node. Elements
// already detached by an earlier replacement are skipped silently by goquery.
func replaceWithText(doc *goquery.Document, selector string, render func(*goquery.Selection) (string, bool)) {
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		text, ok := render(s)
		if !ok {
			return
		}
		s.ReplaceWithNodes(&xhtml.Node{Type: xhtml.TextNode, Data: text})
	})
}

// fallbackExtract is the degraded path for markup the parser rejects: regex
// tag stripping that still drops script/style bodies, decodes entities, and
// bounds the result.
func fallbackExtract(rawHTML string, maxLen int) string {
	text := scriptBlock.ReplaceAllString(rawHTML, " ")
	text = openPara.ReplaceAllString(text, "\n\n")
	text = closePara.ReplaceAllString(text, "")
	text = lineBreak.ReplaceAllString(text, "\n")
	text = openDiv.ReplaceAllString(text, "\n")
	text = closeDiv.ReplaceAllString(text, "")
	text = anyTag.ReplaceAllString(text, " ")
	return truncateAtParagraph(cleanWhitespace(text), maxLen)
}

func cleanWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = residualEntities.Replace(text)
	text = strings.Map(dropInvisible, text)
	text = spaceRun.ReplaceAllString(text, " ")
	text = multiNewline.ReplaceAllString(text, "\n\n")
	text = html.UnescapeString(text)
	return strings.TrimSpace(text)
}

func dropInvisible(r rune) rune {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\ufeff':
		return -1
	}
	return r
}

// truncateAtParagraph cuts text to maxLen runes, preferring the last
// paragraph break found in the final fifth of the limit, and marks the cut
// with an ellipsis.
func truncateAtParagraph(text string, maxLen int) string {
	runes := []rune(text)
	if maxLen <= 0 || len(runes) <= maxLen {
		return text
	}

	truncated := string(runes[:maxLen])
	if cut := strings.LastIndex(truncated, "\n\n"); cut >= 0 {
		if len([]rune(truncated[:cut])) > maxLen*4/5 {
			return strings.TrimSpace(truncated[:cut]) + "..."
		}
	}
	return strings.TrimSpace(truncated) + "..."
}
