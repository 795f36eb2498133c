// Package textclean repairs encoding artifacts in model output and extracted document text.
package textclean

import (
	"html"
	"regexp"
	"strings"
)

// Applied before html.UnescapeString picks up whatever entities are left.
var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&#8211;", "-",
	"&#8212;", "-",
	"&#8216;", "'",
	"&#8217;", "'",
	"&#8220;", `"`,
	"&#8221;", `"`,
	"&ndash;", "-",
	"&mdash;", "-",
	"&lsquo;", "'",
	"&rsquo;", "'",
	"&ldquo;", `"`,
	"&rdquo;", `"`,
	"&hellip;", "...",
)

var charReplacer = strings.NewReplacer(
	"‐", "-",
	"‑", "-",
	"‒", "-",
	"–", "-", // en dash
	"—", "-", // em dash
	"−", "-",
	"‘", "'",
	"’", "'",
	"‚", "'",
	"‛", "'",
	"“", `"`,
	"”", `"`,
	"„", `"`,
	"…", "...",
	"§", "Section",
	"®", "(R)",
	"©", "(C)",
	"™", "(TM)",
	"\u00a0", " ",
	"\u202f", " ",
	"\ufffd", " ",
)

var (
	zeroWidth = regexp.MustCompile(`[\x{200B}-\x{200D}\x{2060}\x{FEFF}]`)
	// General and supplemental punctuation blocks, except U+2022 which marks bullets.
	strayPunctuation = regexp.MustCompile(`[\x{2000}-\x{2021}\x{2023}-\x{206F}\x{2E00}-\x{2E7F}]`)
	controlChars     = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F-\x{9F}]`)
	allWhitespace    = regexp.MustCompile(`\s+`)
	inlineWhitespace = regexp.MustCompile(`[ \t]+`)
	blankLines       = regexp.MustCompile(`\n{3,}`)
)

// Clean normalizes a single-line text field: HTML entities decoded, smart punctuation folded
// to ASCII, zero-width and control characters removed, whitespace collapsed and trimmed.
func Clean(s string) string {
	s = normalize(s)
	s = allWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CleanNotes is Clean for speaker notes: line breaks survive so presenters can read them.
func CleanNotes(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = normalize(s)

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(inlineWhitespace.ReplaceAllString(line, " "))
	}
	s = strings.Join(lines, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// CleanAll applies Clean to every element, dropping the ones that end up empty.
func CleanAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if c := Clean(item); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// CleanItems is CleanAll for hierarchical lists: a leading indent of two or more spaces
// is preserved as exactly two spaces, since it marks a sub-item.
func CleanItems(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimLeft(item, " \t")
		indent := ""
		if len(item)-len(trimmed) >= 2 {
			indent = "  "
		}
		c := Clean(trimmed)
		if c == "" {
			continue
		}
		out = append(out, indent+c)
	}
	return out
}

func normalize(s string) string {
	if s == "" {
		return s
	}
	s = entityReplacer.Replace(s)
	s = html.UnescapeString(s)
	s = charReplacer.Replace(s)
	s = zeroWidth.ReplaceAllString(s, "")
	s = strayPunctuation.ReplaceAllString(s, " ")
	s = controlChars.ReplaceAllString(s, "")
	return s
}
