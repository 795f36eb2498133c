package normalize

import (
	"html"
	"regexp"
	"strings"

	"briefdeck/internal/slides"
)

var (
	// Opening tag of a slide container: class "slide" or any "<name>-slide" as the first token.
	slideMarker = regexp.MustCompile(`<div\s[^>]*?class="((?:[\w-]+-)?slide)(?:\s[^"]*)?"`)
	notesBlock  = regexp.MustCompile(`(?s)<(?:div|aside)[^>]*class="[^"]*\b(?:speaker-notes|notes)\b[^"]*"[^>]*>(.*?)</(?:div|aside)>`)
	notesMarkup = regexp.MustCompile(`(?i)<(?:p|ul|ol|li|strong)[\s>]`)
	sentence    = regexp.MustCompile(`[^.!?]+[.!?]*`)
)

// Container classes of slides that never carry notes.
var structuralClasses = map[string]bool{
	"slide":                true,
	"agenda-slide":         true,
	"transition-slide":     true,
	"transition-alt-slide": true,
	"thankyou-slide":       true,
	"thank-you-slide":      true,
}

// ExtractNotes scans slide HTML and returns one entry per non-structural slide container, in
// document order. An entry is empty when that slide has no notes block.
func ExtractNotes(source string) []string {
	markers := slideMarker.FindAllStringSubmatchIndex(source, -1)
	if len(markers) == 0 {
		return nil
	}

	var notes []string
	for i, m := range markers {
		class := source[m[2]:m[3]]
		if structuralClasses[class] {
			continue
		}
		end := len(source)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		segment := source[m[0]:end]

		var text string
		if found := notesBlock.FindStringSubmatch(segment); found != nil {
			text = strings.TrimSpace(found[1])
		}
		notes = append(notes, text)
	}
	return notes
}

// InjectNotes assigns extracted notes, in order, to the non-structural slides. Non-empty
// extracted notes replace whatever notes the slide already had.
func InjectNotes(deck []slides.Slide, notes []string) int {
	injected, next := 0, 0
	for _, s := range deck {
		if slides.IsStructural(s) {
			continue
		}
		if next >= len(notes) {
			break
		}
		if n := notes[next]; n != "" {
			s.Base().Notes = n
			injected++
		}
		next++
	}
	return injected
}

// Leading verbs that turn a notes sentence into a list item.
var actionVerbs = map[string]bool{
	"review": true, "update": true, "ensure": true, "confirm": true, "train": true,
	"audit": true, "post": true, "revise": true, "file": true, "submit": true,
	"notify": true, "document": true, "check": true, "verify": true, "prepare": true,
	"implement": true, "schedule": true, "communicate": true, "remind": true, "adopt": true,
	"assess": true, "evaluate": true, "monitor": true, "track": true, "identify": true,
	"discuss": true, "develop": true, "establish": true, "contact": true, "consult": true,
	"provide": true, "maintain": true, "create": true, "emphasize": true, "highlight": true,
	"ask": true, "explain": true, "mention": true, "note": true, "consider": true,
}

// FormatNotes gives unformatted notes paragraph and list markup. Notes that already contain
// markup are returned unchanged. Sentences led by an action verb become list items.
func FormatNotes(notes string) string {
	notes = strings.TrimSpace(notes)
	if notes == "" || notesMarkup.MatchString(notes) {
		return notes
	}

	var (
		b      strings.Builder
		inList bool
	)
	for _, raw := range sentence.FindAllString(notes, -1) {
		s := strings.Join(strings.Fields(raw), " ")
		if s == "" || strings.Trim(s, ".!? ") == "" {
			continue
		}
		escaped := html.EscapeString(s)
		if isActionSentence(s) {
			if !inList {
				b.WriteString("<ul>\n")
				inList = true
			}
			b.WriteString("<li>" + escaped + "</li>\n")
			continue
		}
		if inList {
			b.WriteString("</ul>\n")
			inList = false
		}
		b.WriteString("<p>" + escaped + "</p>\n")
	}
	if inList {
		b.WriteString("</ul>\n")
	}
	return strings.TrimSpace(b.String())
}

func isActionSentence(s string) bool {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return false
	}
	word := strings.ToLower(strings.Trim(fields[0], `"'(•-*:,`))
	return actionVerbs[word]
}
