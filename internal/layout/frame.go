package layout

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"briefdeck/internal/slides"
	"briefdeck/internal/style"
)

const overlayTransparency = 20

func (r *renderer) backdrop(c *Canvas, image string, transparency int) {
	r.image(c, "background", image, 0, 0, CanvasWidth, CanvasHeight)
	r.rect(c, "overlay", 0, 0, CanvasWidth, CanvasHeight, r.e.brand.Color, transparency)
}

// BriefingHeader is the header used when the description has none.
func (e *Engine) BriefingHeader() string {
	return fmt.Sprintf("%s Monthly Briefing: %s", e.brand.Name, e.now().Format("January 2, 2006"))
}

func titleFontSize(title string) float64 {
	switch n := utf8.RuneCountInString(title); {
	case n > 90:
		return 30
	case n > 60:
		return 36
	default:
		return 44
	}
}

func (r *renderer) VisitTitle(s *slides.Title) {
	c := r.canvas(slides.KindTitle, s.Title)
	r.backdrop(c, r.e.brand.TitleImage, overlayTransparency)

	header := s.BriefingHeader
	if header == "" {
		header = r.e.BriefingHeader()
	}
	r.text(c, "briefing-header", 0.5, 1.2, 8.5, 0.6, header, r.bold(24, ColorWhite), AlignLeft)

	title := s.Title
	if title == "" {
		title = "Presentation Title"
	}
	r.text(c, "title", 0.5, 2.0, 8.5, 1.5, Truncate(title, 120), r.font(titleFontSize(title), ColorWhite), AlignLeft)
	if s.Subtitle != "" {
		r.text(c, "subtitle", 0.5, 3.6, 7.3, 1.0, Truncate(s.Subtitle, 140), r.font(24, ColorWhite), AlignLeft)
	}
	r.image(c, "logo", r.e.brand.Logo, 8.0, 3.7, 1.8, 1.8)
}

// agendaMetrics shrinks font, row pitch and sub-item indent as the list grows.
func agendaMetrics(items int) (font, pitch, indent float64) {
	switch {
	case items > 12:
		return 14, 0.36, 0.2
	case items > 10:
		return 16, 0.42, 0.3
	default:
		return 20, 0.6, 0.4
	}
}

const (
	agendaPanelX   = 4.0
	agendaMarginY  = 0.3
	agendaMinPitch = 0.25
	agendaMaxChars = 60
)

func (r *renderer) VisitAgenda(s *slides.Agenda) {
	title := s.Title
	if title == "" {
		title = "Agenda"
	}
	c := r.canvas(slides.KindAgenda, title)
	r.backdrop(c, r.e.brand.AgendaImage, overlayTransparency)
	r.text(c, "title", 0.4, 2.2, 3.5, 1.2, strings.ToUpper(title), r.font(54, ColorWhite), AlignLeft)
	r.rect(c, "panel", agendaPanelX, 0, CanvasWidth-agendaPanelX, CanvasHeight, ColorWhite, 0)
	r.image(c, "logo", r.e.brand.Logo, 0.2, 3.7, 1.8, 1.8)

	var items []string
	for _, item := range s.Items {
		if strings.TrimSpace(item) != "" {
			items = append(items, item)
		}
	}

	font, pitch, indent := agendaMetrics(len(items))
	avail := SafeBottom - agendaMarginY
	if n := len(items); n > 0 && float64(n)*pitch > avail {
		pitch = max(avail/float64(n), agendaMinPitch)
	}
	if fit := floorRows(avail, pitch); len(items) > fit {
		for _, item := range items[fit:] {
			c.drop(strings.TrimSpace(item))
		}
		items = items[:fit]
	}

	// Center the list as a block between the top margin and the safe bottom.
	y := agendaMarginY + (avail-float64(len(items))*pitch)/2
	for _, item := range items {
		x := agendaPanelX + 0.3
		size := font
		if strings.HasPrefix(item, "  ") {
			x += indent
			size = font - 2
		}
		text := Truncate(strings.TrimSpace(item), agendaMaxChars)
		r.text(c, "check", x, y, 0.3, pitch, "✓", r.bold(size, ColorGreen), AlignCenter)
		r.text(c, "item", x+0.45, y, CanvasWidth-0.3-(x+0.45), pitch, text, r.font(size, r.e.brand.Color), AlignLeft)
		y += pitch
	}
	r.text(c, "page-number", 9.2, 5.0, 0.6, 0.4, fmt.Sprint(c.Number), r.font(20, r.e.brand.Color), AlignCenter)
}

func (r *renderer) VisitTransition(s *slides.Transition) {
	kind := slides.KindTransition
	if s.Alt {
		kind = slides.KindTransitionAlt
	}
	c := r.canvas(kind, s.Title)

	pool := r.e.brand.TransitionImages
	image := ""
	if len(pool) > 0 {
		image = pool[r.index%len(pool)]
	}

	size := float64(style.HeaderFontSize(s.Title) + 8)
	if s.Alt {
		r.backdrop(c, image, 50)
		c.Add(Shape{
			Kind: ShapeRect, Role: "frame",
			X: 1.5, Y: 1.8, W: 7.0, H: 2.0,
			Fill: ColorWhite, Transparency: 100,
			Line: ColorWhite, LineWidth: 2,
		})
		r.text(c, "title", 1.7, 1.9, 6.6, 1.8, Truncate(s.Title, 90), r.bold(size, ColorWhite), AlignCenter)
		return
	}

	r.backdrop(c, image, 30)
	r.rect(c, "frame", 0.5, 2.0, 6.0, 1.4, r.e.brand.Color, 0)
	r.text(c, "title", 0.7, 2.05, 5.6, 1.3, Truncate(s.Title, 80), r.bold(size, ColorWhite), AlignLeft)
}

func (r *renderer) VisitThankYou(s *slides.ThankYou) {
	c := r.canvas(slides.KindThankYou, ThankYouTitle)
	r.backdrop(c, r.e.brand.ThankYouImage, 15)
	r.text(c, "title", 1.0, 1.8, 6.0, 1.0, ThankYouTitle, r.font(48, ColorWhite), AlignLeft)
	r.text(c, "subtitle", 1.0, 2.8, 6.0, 0.8, "Q&A", r.font(48, ColorWhite), AlignLeft)

	r.text(c, "disclaimer", 1.0, 4.5, 5.5, 0.8, Disclaimer, r.font(10, ColorWhite), AlignLeft)
	r.image(c, "logo", r.e.brand.Logo, CanvasWidth-2.5, CanvasHeight-1.5, 2.0, 1.0)
	r.text(c, "page-number", 0.3, 5.1, 0.6, 0.4, fmt.Sprint(c.Number), r.font(14, ColorWhite), AlignCenter)
}
