// Package layout places typed slide descriptions onto fixed 10 x 5.625 inch canvases.
package layout

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"briefdeck/internal/logger"
	"briefdeck/internal/slides"
	"briefdeck/internal/style"
)

// Palette.
const (
	ColorBrand     = "28295D"
	ColorTeal      = "1F8A8A"
	ColorGray      = "E7E6E6"
	ColorGreen     = "7CB342"
	ColorText      = "333333"
	ColorContentBg = "F5F5F5"
	ColorWhite     = "FFFFFF"
	colorMuted     = "9E9E9E"
)

// Disclaimer is printed on every thank-you slide exactly as written.
const Disclaimer = "The material presented here is for general educational purposes only and is subject to change and law, rules, and regulations. It does not provide legal or tax opinions or advice."

// ThankYouTitle heads the closing slide.
const ThankYouTitle = "THANK YOU!"

// Brand holds the identity applied to every deck.
type Brand struct {
	Name             string
	Color            string
	Font             string
	Logo             string
	TitleImage       string
	AgendaImage      string
	ThankYouImage    string
	TransitionImages []string
}

// DefaultBrand returns the stock asset names served from the assets directory.
func DefaultBrand() Brand {
	return Brand{
		Name:             "BCS",
		Color:            ColorBrand,
		Font:             "Lato",
		Logo:             "image8.png",
		TitleImage:       "image9.jpg",
		AgendaImage:      "image7.jpg",
		ThankYouImage:    "image9.jpg",
		TransitionImages: []string{"image10.jpg", "image11.jpg", "image12.jpg"},
	}
}

// Options configures an Engine.
type Options struct {
	Brand Brand
	// TableRowHeight forces the table row height in inches; 0 sizes rows from content.
	TableRowHeight float64
	// Now supplies the date in the default briefing header.
	Now    func() time.Time
	Logger *slog.Logger
}

// Engine renders slide descriptions. It holds no per-deck state and is safe for concurrent use.
type Engine struct {
	brand          Brand
	tableRowHeight float64
	now            func() time.Time
	log            *slog.Logger
}

func New(opts Options) *Engine {
	brand := opts.Brand
	def := DefaultBrand()
	if brand.Name == "" {
		brand.Name = def.Name
	}
	if brand.Font == "" {
		brand.Font = def.Font
	}
	brand.Color = style.ValidateColor(brand.Color, ColorBrand)
	if len(brand.TransitionImages) == 0 {
		brand.TransitionImages = def.TransitionImages
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		brand:          brand,
		tableRowHeight: opts.TableRowHeight,
		now:            now,
		log:            logger.OrDiscard(opts.Logger),
	}
}

// Render lays out every slide in order. A slide that cannot be rendered is logged and
// skipped; it never aborts the rest of the deck.
func (e *Engine) Render(in []slides.Slide) *Deck {
	deck := &Deck{Width: CanvasWidth, Height: CanvasHeight}
	for i, s := range in {
		canvases, err := e.renderSlide(i, s, len(deck.Slides))
		if err != nil {
			e.log.Error("skipping slide", "index", i, "error", err)
			continue
		}
		for _, c := range canvases {
			if len(c.Dropped) > 0 {
				e.log.Debug("items dropped to fit slide", "slide", c.Number, "kind", c.Kind, "dropped", len(c.Dropped))
			}
		}
		deck.Slides = append(deck.Slides, canvases...)
	}
	e.log.Info("rendered deck", "input", len(in), "canvases", len(deck.Slides))
	return deck
}

func (e *Engine) renderSlide(index int, s slides.Slide, rendered int) (out []*Canvas, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("render panic: %v", r)
		}
	}()
	r := &renderer{e: e, index: index, rendered: rendered}
	s.Accept(r)
	return r.out, nil
}

// renderer emits the canvases for a single slide description.
type renderer struct {
	e        *Engine
	index    int
	rendered int
	out      []*Canvas
}

func (r *renderer) canvas(kind slides.Kind, title string) *Canvas {
	c := &Canvas{Number: r.rendered + len(r.out) + 1, Kind: kind, Title: title}
	r.out = append(r.out, c)
	return c
}

func (r *renderer) font(size float64, color string) Font {
	return Font{Face: r.e.brand.Font, Size: size, Color: style.ValidateColor(color, ColorText)}
}

func (r *renderer) bold(size float64, color string) Font {
	f := r.font(size, color)
	f.Bold = true
	return f
}

func (r *renderer) text(c *Canvas, role string, x, y, w, h float64, s string, f Font, align Align) {
	c.Add(Shape{Kind: ShapeText, Role: role, X: x, Y: y, W: w, H: h, Text: s, Font: f, Align: align, VAlign: AlignMiddle})
}

func (r *renderer) rect(c *Canvas, role string, x, y, w, h float64, fill string, transparency int) {
	c.Add(Shape{Kind: ShapeRect, Role: role, X: x, Y: y, W: w, H: h, Fill: style.ValidateColor(fill, ColorWhite), Transparency: transparency})
}

func (r *renderer) image(c *Canvas, role, path string, x, y, w, h float64) {
	if path == "" {
		return
	}
	c.Add(Shape{Kind: ShapeImage, Role: role, X: x, Y: y, W: w, H: h, Image: path})
}

func (r *renderer) pageNumber(c *Canvas, color string) {
	r.text(c, "page-number", 9.0, 5.1, 0.8, 0.4, strconv.Itoa(c.Number), r.font(14, color), AlignCenter)
}

// header draws the brand bar, slide title and logo shared by the content-style layouts.
func (r *renderer) header(c *Canvas, title string) {
	c.Background = ColorContentBg
	r.rect(c, "header-bar", 0, 0, CanvasWidth, headerBarHeight, r.e.brand.Color, 0)
	r.text(c, "title", 0.5, 0.15, 7.8, 0.8, title, r.font(float64(style.HeaderFontSize(title)), ColorWhite), AlignLeft)
	r.image(c, "logo", r.e.brand.Logo, 8.7, 0.05, 1.0, 1.0)
}

func (r *renderer) attachNotes(c *Canvas, notes string) {
	c.Notes = notes
}

func (r *renderer) VisitUnknown(s *slides.Unknown) {
	r.e.log.Warn("skipping unknown slide type", "index", r.index, "type", s.Tag, "title", s.Title)
}
