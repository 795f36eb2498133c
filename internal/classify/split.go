package classify

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"briefdeck/internal/core"
)

const (
	maxHeadingRunes = 100
	maxHeadingWords = 14
)

var (
	headingNumber   = regexp.MustCompile(`^(?:\d{1,2}[.)]|[IVX]{1,4}\.)\s+`)
	terminalPunct   = regexp.MustCompile(`[.,;:!?"')\]]$`)
	listItemPrefix  = regexp.MustCompile(`^(?:[•*\-–]|\(?[a-z]\))\s*`)
	untitledArticle = "Overview"
)

// SplitArticles breaks plain document text into articles at heading lines. A heading is a
// short line with no terminal punctuation that starts with a capital letter or a number.
// Headings with no body text after them are discarded.
func SplitArticles(text string) []core.Article {
	var (
		articles []core.Article
		title    string
		body     []string
	)

	flush := func() {
		content := strings.TrimSpace(strings.Join(body, "\n"))
		if content != "" {
			if title == "" {
				title = untitledArticle
			}
			articles = append(articles, core.Article{Title: title, Content: content})
		}
		title, body = "", nil
	}

	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if isHeading(line) {
			flush()
			title = headingNumber.ReplaceAllString(line, "")
			continue
		}
		body = append(body, line)
	}
	flush()
	return articles
}

func isHeading(line string) bool {
	if utf8.RuneCountInString(line) > maxHeadingRunes {
		return false
	}
	if len(strings.Fields(line)) > maxHeadingWords {
		return false
	}
	if listItemPrefix.MatchString(line) || terminalPunct.MatchString(line) {
		return false
	}
	first, _ := utf8.DecodeRuneInString(headingNumber.ReplaceAllString(line, ""))
	return unicode.IsUpper(first) || unicode.IsDigit(first)
}

// Guidance renders classifications as the slide-budget block appended to the slides prompt.
func Guidance(classifications []core.Classification) string {
	if len(classifications) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("SLIDE BUDGET BY ARTICLE (critical: up to 2 slides, standard: 1 slide, minor: no dedicated slide, fold into a roundup slide):\n")
	for _, c := range classifications {
		fmt.Fprintf(&b, "- %q: %s, %s\n", c.Title, c.Tier, budgetLabel(c.Budget()))
	}
	return b.String()
}

func budgetLabel(n int) string {
	switch n {
	case 0:
		return "roundup only"
	case 1:
		return "1 slide"
	default:
		return fmt.Sprintf("up to %d slides", n)
	}
}
