package normalize

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"briefdeck/internal/slides"
)

const slideContainers = "div.slide, div.agenda-slide, div.content-slide, div.table-slide, div.go-deeper-slide, " +
	"div.checklist-slide, div.textbox-slide, div.qotm-slide, div.transition-slide, div.transition-alt-slide, div.thankyou-slide"

const notesSelector = ".speaker-notes, .slide-notes, .notes"

// FromHTML extracts slides from preview HTML by the CSS class of each slide container. It
// is the fallback when the model's JSON cannot be used.
func FromHTML(source string) ([]slides.Slide, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("parse slide html: %w", err)
	}

	var out []slides.Slide
	doc.Find(slideContainers).Each(func(_ int, sel *goquery.Selection) {
		var s slides.Slide
		switch {
		case sel.HasClass("slide"):
			s = titleFromHTML(sel)
		case sel.HasClass("agenda-slide"):
			s = agendaFromHTML(sel)
		case sel.HasClass("table-slide"):
			s = tableFromHTML(sel, sel.Find(".content-title, .table-title").First())
		case sel.HasClass("checklist-slide"):
			s = checklistFromHTML(sel)
		case sel.HasClass("textbox-slide"):
			s = textboxFromHTML(sel)
		case sel.HasClass("qotm-slide"):
			s = qotmFromHTML(sel)
		case sel.HasClass("transition-slide"), sel.HasClass("transition-alt-slide"):
			title := text(sel.Find(".transition-title, .title").First())
			if title != "" {
				t := &slides.Transition{Common: slides.Common{Type: slides.KindTransition, Title: title}}
				if sel.HasClass("transition-alt-slide") {
					t.Type, t.Alt = slides.KindTransitionAlt, true
				}
				s = t
			}
		case sel.HasClass("thankyou-slide"):
			s = &slides.ThankYou{Common: slides.Common{Type: slides.KindThankYou}}
		default:
			s = contentFromHTML(sel)
		}
		if s != nil {
			out = append(out, s)
		}
	})
	return out, nil
}

func titleFromHTML(sel *goquery.Selection) slides.Slide {
	title := text(sel.Find(".title").First())
	if title == "" {
		title = "Presentation Title"
	}
	return &slides.Title{
		Common:         slides.Common{Type: slides.KindTitle, Title: title},
		BriefingHeader: text(sel.Find(".briefing-header").First()),
		Subtitle:       text(sel.Find(".subtitle").First()),
	}
}

func agendaFromHTML(sel *goquery.Selection) slides.Slide {
	var items []string
	sel.Find(".agenda-item").Each(func(_ int, li *goquery.Selection) {
		clone := li.Clone()
		clone.Find(".agenda-checkmark").Remove()
		item := strings.TrimSpace(strings.ReplaceAll(clone.Text(), "✓", ""))
		if item != "" {
			items = append(items, item)
		}
	})
	return &slides.Agenda{Common: slides.Common{Type: slides.KindAgenda, Title: "Agenda"}, Items: items}
}

func contentFromHTML(sel *goquery.Selection) slides.Slide {
	titleSel := sel.Find(".content-title").First()
	if sel.Find("table").Length() > 0 && sel.Find("p.content-paragraph").Length() == 0 {
		return tableFromHTML(sel, titleSel)
	}

	var content []string
	bullets := false
	sel.Find("p.content-paragraph, li").Each(func(_ int, item *goquery.Selection) {
		if item.Closest(notesSelector).Length() > 0 {
			return
		}
		line := text(item)
		if goquery.NodeName(item) == "li" {
			own := item.Clone()
			own.Find("ul, ol").Remove()
			line = text(own)
		}
		if line == "" {
			return
		}
		if goquery.NodeName(item) == "li" {
			if item.ParentsFiltered("li").Length() > 0 {
				line = "  - " + line
			} else {
				line = "• " + line
			}
			bullets = true
		}
		content = append(content, line)
	})
	if len(content) == 0 {
		return nil
	}

	title := text(titleSel)
	if title == "" {
		title = "Content Slide"
	}
	if sel.HasClass("go-deeper-slide") || strings.Contains(strings.ToLower(title), "go deeper") {
		return &slides.GoDeeper{Common: slides.Common{Type: slides.KindGoDeeper, Title: title}, Content: content}
	}
	return &slides.Content{Common: slides.Common{Type: slides.KindContent, Title: title}, Content: content, Bullets: bullets}
}

func checklistFromHTML(sel *goquery.Selection) slides.Slide {
	var content []string
	sel.Find(".checklist-content .checklist-item, .checklist-content .content-section-heading").Each(func(_ int, item *goquery.Selection) {
		if line := text(item); line != "" {
			content = append(content, line)
		}
	})
	var items []slides.ChecklistItem
	sel.Find(".checklist-list li").Each(func(_ int, li *goquery.Selection) {
		if line := text(li); line != "" {
			items = append(items, slides.ChecklistItem{Text: line, Checked: li.HasClass("checked")})
		}
	})
	if len(content) == 0 && len(items) == 0 {
		return nil
	}
	return &slides.Checklist{
		Common:             slides.Common{Type: slides.KindChecklist, Title: orDefault(text(sel.Find(".content-title").First()), "Checklist")},
		Content:            content,
		ChecklistHeading:   text(sel.Find(".checklist-content-heading").First()),
		ChecklistPanelText: text(sel.Find(".checklist-panel-content").First()),
		ChecklistItems:     items,
	}
}

func textboxFromHTML(sel *goquery.Selection) slides.Slide {
	var boxes []slides.Box
	sel.Find(".textbox").Each(func(_ int, box *goquery.Selection) {
		body := box.Find(".textbox-content-teal, .textbox-content-gray").First()
		color := slides.BoxGray
		if body.HasClass("textbox-content-teal") {
			color = slides.BoxTeal
		}
		header, content := text(box.Find(".textbox-header").First()), text(body)
		if header != "" || content != "" {
			boxes = append(boxes, slides.Box{Header: header, Content: content, Color: color})
		}
	})
	if len(boxes) == 0 {
		return nil
	}
	return &slides.Textbox{
		Common: slides.Common{Type: slides.KindTextbox, Title: orDefault(text(sel.Find(".content-title").First()), "Overview")},
		Boxes:  boxes,
	}
}

func qotmFromHTML(sel *goquery.Selection) slides.Slide {
	list := func(class string) []string {
		var out []string
		sel.Find(class + " li").Each(func(_ int, li *goquery.Selection) {
			if line := text(li); line != "" {
				out = append(out, line)
			}
		})
		return out
	}
	q := &slides.QOTM{
		Common:   slides.Common{Type: slides.KindQOTM, Title: orDefault(text(sel.Find(".content-title").First()), "Question of the Month")},
		Scenario: list(".qotm-scenario"),
		Rule:     list(".qotm-rule"),
		Action:   list(".qotm-action"),
	}
	if len(q.Scenario)+len(q.Rule)+len(q.Action) == 0 {
		return nil
	}
	return q
}

func tableFromHTML(sel, titleSel *goquery.Selection) slides.Slide {
	table := sel.Find("table").First()
	if table.Length() == 0 {
		return nil
	}

	var headers []string
	var rows [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, text(cell))
		})
		if len(cells) == 0 {
			return
		}
		if headers == nil {
			headers = cells
			return
		}
		rows = append(rows, fitRow(cells, len(headers)))
	})
	if len(headers) == 0 {
		return nil
	}

	title := text(titleSel)
	if title == "" {
		title = "Overview"
	}
	return &slides.Table{Common: slides.Common{Type: slides.KindTable, Title: title}, Headers: headers, Rows: rows}
}

func fitRow(cells []string, width int) []string {
	if len(cells) >= width {
		return cells[:width]
	}
	return append(cells, make([]string, width-len(cells))...)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func text(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}
