package layout

import (
	"regexp"
	"strings"

	"briefdeck/internal/slides"
	"briefdeck/internal/style"
)

const (
	headerBarHeight = 1.1
	bodyX           = 0.6
	bodyWidth       = 8.8
	bodyTop         = 1.4
	bodyFont        = 16
	subBulletFont   = 14
	itemGap         = 0.1
	bulletIndent    = 0.3
	subBulletIndent = 0.7
)

// sectionHeadings are the prefixes of unprefixed lines rendered as centered section headings.
var sectionHeadings = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^Background and Timeline`),
	regexp.MustCompile(`(?i)^What is changing and why`),
	regexp.MustCompile(`(?i)^What changed`),
	regexp.MustCompile(`(?i)^What's next`),
	regexp.MustCompile(`(?i)^Key Points`),
	regexp.MustCompile(`(?i)^Overview`),
	regexp.MustCompile(`(?i)^Court Decision`),
	regexp.MustCompile(`(?i)^Employer Impact`),
	regexp.MustCompile(`(?i)^What happened`),
	regexp.MustCompile(`(?i)^Timeline`),
	regexp.MustCompile(`(?i)^The Decision`),
}

type lineKind int

const (
	lineParagraph lineKind = iota
	lineHeading
	lineBullet
	lineSubBullet
)

// classifyLine reads the prefix convention: "• " bullet, "  -" sub-bullet, otherwise heading
// or paragraph. bulleted promotes plain paragraphs to bullets.
func classifyLine(line string, bulleted, headings bool) (lineKind, string) {
	switch {
	case strings.HasPrefix(line, "  "):
		text := strings.TrimLeft(strings.TrimSpace(line), "-–•*")
		return lineSubBullet, strings.TrimSpace(text)
	case strings.HasPrefix(line, "•"), strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
		return lineBullet, strings.TrimSpace(strings.TrimLeft(line, "•-* "))
	}
	text := strings.TrimSpace(line)
	if headings && isSectionHeading(text) {
		return lineHeading, strings.TrimSuffix(text, ":")
	}
	if bulleted {
		return lineBullet, text
	}
	return lineParagraph, text
}

func isSectionHeading(text string) bool {
	for _, p := range sectionHeadings {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// flow lays lines top to bottom from y, stopping at the first line that would cross
// SafeBottom. Lines that do not fit are recorded as dropped. It returns the next free Y.
func (r *renderer) flow(c *Canvas, lines []string, y float64, bulleted, headings bool, color string) float64 {
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		kind, text := classifyLine(line, bulleted, headings)
		if text == "" {
			continue
		}

		x, w, size := bodyX, bodyWidth, float64(bodyFont)
		switch kind {
		case lineBullet:
			x, w = bodyX+bulletIndent, bodyWidth-bulletIndent
		case lineSubBullet:
			x, w, size = bodyX+subBulletIndent, bodyWidth-subBulletIndent, subBulletFont
		}
		h := EstimateHeight(text, w, size)
		if y+h > SafeBottom {
			for _, rest := range lines[i:] {
				if strings.TrimSpace(rest) != "" {
					c.drop(strings.TrimSpace(rest))
				}
			}
			return y
		}

		switch kind {
		case lineHeading:
			c.Add(Shape{Kind: ShapeText, Role: "heading", X: x, Y: y, W: w, H: h, Text: text,
				Font: r.bold(size, r.e.brand.Color), Align: AlignCenter, VAlign: AlignTop})
		case lineBullet, lineSubBullet:
			glyph := "•"
			if kind == lineSubBullet {
				glyph = "-"
			}
			c.Add(Shape{Kind: ShapeText, Role: "bullet", X: x - 0.25, Y: y, W: 0.25, H: LineHeight(size), Text: glyph,
				Font: r.bold(size, r.e.brand.Color), Align: AlignLeft, VAlign: AlignTop})
			c.Add(Shape{Kind: ShapeText, Role: "body", X: x, Y: y, W: w, H: h, Text: text,
				Font: r.font(size, color), Align: AlignLeft, VAlign: AlignTop})
		default:
			c.Add(Shape{Kind: ShapeText, Role: "body", X: x, Y: y, W: w, H: h, Text: text,
				Font: r.font(size, color), Align: AlignLeft, VAlign: AlignTop})
		}
		y += h + itemGap
	}
	return y
}

func (r *renderer) VisitContent(s *slides.Content) {
	c := r.canvas(slides.KindContent, s.Title)
	r.header(c, s.Title)
	r.flow(c, s.Content, bodyTop, s.Bullets, true, ColorText)
	r.pageNumber(c, r.e.brand.Color)
	r.attachNotes(c, s.Notes)
}

func (r *renderer) VisitGoDeeper(s *slides.GoDeeper) {
	c := r.canvas(slides.KindGoDeeper, s.Title)
	r.header(c, s.Title)
	r.rect(c, "banner", bodyX, 1.25, bodyWidth, 0.4, ColorTeal, 0)
	r.text(c, "banner-text", bodyX+0.2, 1.25, bodyWidth-0.4, 0.4, "GO DEEPER", r.bold(14, ColorWhite), AlignLeft)
	r.flow(c, s.Content, 1.8, true, false, ColorText)
	r.pageNumber(c, r.e.brand.Color)
	r.attachNotes(c, s.Notes)
}

const (
	checklistLeftX     = 0.5
	checklistLeftW     = 5.6
	checklistSidebarX  = 6.4
	checklistMaxItems  = 8
	checklistItemChars = 70
)

func (r *renderer) VisitChecklist(s *slides.Checklist) {
	c := r.canvas(slides.KindChecklist, s.Title)
	c.Background = r.e.brand.Color
	r.text(c, "title", checklistLeftX, 0.3, checklistLeftW, 0.8, s.Title,
		r.font(float64(style.HeaderFontSize(s.Title)), ColorWhite), AlignLeft)

	y := 1.25
	if s.ChecklistHeading != "" {
		h := EstimateHeight(s.ChecklistHeading, checklistLeftW, 18)
		r.text(c, "checklist-heading", checklistLeftX, y, checklistLeftW, h, s.ChecklistHeading, r.bold(18, ColorWhite), AlignLeft)
		y += h + itemGap
	}
	if s.ChecklistPanelText != "" {
		text := Truncate(s.ChecklistPanelText, 400)
		h := EstimateHeight(text, checklistLeftW, 14)
		if y+h <= SafeBottom {
			c.Add(Shape{Kind: ShapeText, Role: "panel-text", X: checklistLeftX, Y: y, W: checklistLeftW, H: h,
				Text: text, Font: r.font(14, ColorWhite), Align: AlignLeft, VAlign: AlignTop})
			y += h + itemGap
		} else {
			c.drop(text)
		}
	}
	r.flowNarrow(c, s.Content, y)

	// Sidebar.
	r.rect(c, "sidebar", checklistSidebarX, 0, CanvasWidth-checklistSidebarX, CanvasHeight, ColorWhite, 0)
	r.text(c, "sidebar-title", checklistSidebarX+0.2, 0.35, 3.2, 0.5, "Checklist", r.bold(18, r.e.brand.Color), AlignLeft)

	items := s.ChecklistItems
	if len(items) > checklistMaxItems {
		for _, item := range items[checklistMaxItems:] {
			c.drop(item.Text)
		}
		items = items[:checklistMaxItems]
	}
	pitch := 0.48
	if n := len(items); n > 0 && (SafeBottom-1.0)/float64(n) < pitch {
		pitch = (SafeBottom - 1.0) / float64(n)
	}
	iy := 1.0
	for _, item := range items {
		glyph, color := "☐", colorMuted
		if item.Checked {
			glyph, color = "✓", ColorGreen
		}
		r.text(c, "check", checklistSidebarX+0.2, iy, 0.3, pitch, glyph, r.bold(14, color), AlignCenter)
		r.text(c, "checklist-item", checklistSidebarX+0.6, iy, 2.9, pitch, Truncate(item.Text, checklistItemChars), r.font(11, ColorText), AlignLeft)
		iy += pitch
	}
	r.attachNotes(c, s.Notes)
}

// flowNarrow is flow confined to the left checklist column, in white.
func (r *renderer) flowNarrow(c *Canvas, lines []string, y float64) {
	for i, line := range lines {
		kind, text := classifyLine(line, true, false)
		if text == "" {
			continue
		}
		x, w, size := checklistLeftX+bulletIndent, checklistLeftW-bulletIndent, 14.0
		if kind == lineSubBullet {
			x, w, size = checklistLeftX+subBulletIndent, checklistLeftW-subBulletIndent, 12.0
		}
		h := EstimateHeight(text, w, size)
		if y+h > SafeBottom {
			for _, rest := range lines[i:] {
				if strings.TrimSpace(rest) != "" {
					c.drop(strings.TrimSpace(rest))
				}
			}
			return
		}
		c.Add(Shape{Kind: ShapeText, Role: "bullet", X: x - 0.25, Y: y, W: 0.25, H: LineHeight(size), Text: "•",
			Font: r.bold(size, ColorGreen), Align: AlignLeft, VAlign: AlignTop})
		c.Add(Shape{Kind: ShapeText, Role: "body", X: x, Y: y, W: w, H: h, Text: text,
			Font: r.font(size, ColorWhite), Align: AlignLeft, VAlign: AlignTop})
		y += h + itemGap
	}
}

const (
	textboxTop       = 1.4
	textboxHeaderH   = 0.5
	textboxGap       = 0.2
	textboxCapSingle = 600
	textboxCapDouble = 300
)

func (r *renderer) VisitTextbox(s *slides.Textbox) {
	c := r.canvas(slides.KindTextbox, s.Title)
	r.header(c, s.Title)

	boxes := s.Boxes
	if len(boxes) > 2 {
		for _, b := range boxes[2:] {
			c.drop(b.Header)
		}
		boxes = boxes[:2]
	}

	width, limit := bodyWidth, textboxCapSingle
	if len(boxes) == 2 {
		width, limit = (bodyWidth-textboxGap)/2, textboxCapDouble
	}
	for i, b := range boxes {
		x := bodyX + float64(i)*(width+textboxGap)
		r.rect(c, "box-header", x, textboxTop, width, textboxHeaderH, r.e.brand.Color, 0)
		r.text(c, "box-title", x+0.15, textboxTop, width-0.3, textboxHeaderH, Truncate(b.Header, 60), r.bold(16, ColorWhite), AlignLeft)

		fill, textColor := ColorGray, ColorText
		if b.Color == slides.BoxTeal {
			fill, textColor = ColorTeal, ColorWhite
		}
		panelY := textboxTop + textboxHeaderH
		panelH := SafeBottom - panelY
		r.rect(c, "box-panel", x, panelY, width, panelH, fill, 0)
		c.Add(Shape{Kind: ShapeText, Role: "box-body", X: x + 0.15, Y: panelY + 0.1, W: width - 0.3, H: panelH - 0.2,
			Text: Truncate(b.Content, limit), Font: r.font(14, textColor), Align: AlignLeft, VAlign: AlignTop})
	}
	r.pageNumber(c, r.e.brand.Color)
	r.attachNotes(c, s.Notes)
}

// qotmMetrics shrinks type and spacing as the bullet total grows.
func qotmMetrics(bullets int) (font, banner, gap float64) {
	switch {
	case bullets > 7:
		return 11, 0.3, 0.04
	case bullets > 5:
		return 12, 0.32, 0.07
	default:
		return 14, 0.36, 0.1
	}
}

const qotmMaxBullets = 3

func (r *renderer) VisitQOTM(s *slides.QOTM) {
	title := s.Title
	if title == "" {
		title = "Question of the Month"
	}
	c := r.canvas(slides.KindQOTM, title)
	r.header(c, title)

	sections := []struct {
		label string
		fill  string
		items []string
	}{
		{"Scenario", ColorTeal, s.Scenario},
		{"What the rule says", r.e.brand.Color, s.Rule},
		{"What employers should do", ColorGreen, s.Action},
	}

	// Sizing follows the submitted bullet count, before each section is capped.
	font, banner, gap := qotmMetrics(len(s.Scenario) + len(s.Rule) + len(s.Action))
	for i := range sections {
		if len(sections[i].items) > qotmMaxBullets {
			c.drop(sections[i].items[qotmMaxBullets:]...)
			sections[i].items = sections[i].items[:qotmMaxBullets]
		}
	}

	y := 1.25
	for _, sec := range sections {
		if y+banner > SafeBottom {
			c.drop(sec.items...)
			continue
		}
		r.rect(c, "section-banner", bodyX, y, bodyWidth, banner, sec.fill, 0)
		r.text(c, "section-title", bodyX+0.15, y, bodyWidth-0.3, banner, sec.label, r.bold(font+1, ColorWhite), AlignLeft)
		y += banner + gap

		for i, item := range sec.items {
			h := EstimateHeight(item, bodyWidth-bulletIndent, font)
			if y+h > SafeBottom {
				c.drop(sec.items[i:]...)
				break
			}
			c.Add(Shape{Kind: ShapeText, Role: "bullet", X: bodyX + 0.05, Y: y, W: 0.25, H: LineHeight(font), Text: "•",
				Font: r.bold(font, ColorText), Align: AlignLeft, VAlign: AlignTop})
			c.Add(Shape{Kind: ShapeText, Role: "body", X: bodyX + bulletIndent, Y: y, W: bodyWidth - bulletIndent, H: h,
				Text: item, Font: r.font(font, ColorText), Align: AlignLeft, VAlign: AlignTop})
			y += h + gap
		}
		y += gap
	}
	r.pageNumber(c, r.e.brand.Color)
	r.attachNotes(c, s.Notes)
}
