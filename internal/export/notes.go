package export

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// NotesParagraphs flattens speaker-notes markup into plain paragraphs. List items get a
// bullet prefix. Notes without markup come back as their non-empty lines.
func NotesParagraphs(notes string) []string {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(notes))
	if err != nil {
		return plainLines(notes)
	}

	var out []string
	doc.Find("p, li").Each(func(_ int, s *goquery.Selection) {
		// Paragraphs nested in list items are read through the item.
		if goquery.NodeName(s) == "p" && s.ParentsFiltered("li").Length() > 0 {
			return
		}
		own := s.Clone()
		own.Find("ul, ol").Remove()
		text := collapse(own.Text())
		if text == "" {
			return
		}
		if goquery.NodeName(s) == "li" {
			text = "• " + text
		}
		out = append(out, text)
	})
	if len(out) == 0 {
		return plainLines(doc.Text())
	}
	return out
}

var allowedNoteTags = map[string]bool{
	"p": true, "ul": true, "ol": true, "li": true,
	"strong": true, "b": true, "em": true, "i": true, "br": true,
}

// SanitizeNotes rebuilds notes markup keeping only paragraph, list and emphasis tags.
// Attributes are dropped and all text is escaped.
func SanitizeNotes(notes string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(notes))
	if err != nil {
		return html.EscapeString(notes)
	}
	var b strings.Builder
	writeAllowed(&b, doc.Find("body").Contents())
	return strings.TrimSpace(b.String())
}

func writeAllowed(b *strings.Builder, sel *goquery.Selection) {
	sel.Each(func(_ int, s *goquery.Selection) {
		name := goquery.NodeName(s)
		switch {
		case name == "#text":
			b.WriteString(html.EscapeString(s.Text()))
		case name == "script" || name == "style" || name == "#comment":
		case name == "br":
			b.WriteString("<br>")
		case allowedNoteTags[name]:
			b.WriteString("<" + name + ">")
			writeAllowed(b, s.Contents())
			b.WriteString("</" + name + ">")
		default:
			writeAllowed(b, s.Contents())
		}
	})
}

func plainLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = collapse(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
