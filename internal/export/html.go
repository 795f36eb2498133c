package export

import (
	"fmt"
	"html/template"
	"image/color"
	"io"
	"regexp"
	"strconv"
	"strings"

	"briefdeck/internal/layout"
	"briefdeck/internal/slides"
	"briefdeck/internal/style"
)

var previewTemplate = template.Must(template.New("deck.html.tmpl").ParseFS(templateFS, "templates/deck.html.tmpl"))

// HTMLOptions configures WriteHTML.
type HTMLOptions struct {
	Title string
	// AssetsURL prefixes relative image names, e.g. "/assets".
	AssetsURL string
	Font      string
}

type htmlShape struct {
	Role  string
	Style template.CSS
	Text  string
	Image string
}

type htmlSlide struct {
	Number  int
	Kind    slides.Kind
	Style   template.CSS
	Shapes  []htmlShape
	Notes   template.HTML
	Dropped []string
}

type htmlPage struct {
	Title  string
	Font   template.CSS
	Slides []htmlSlide
}

// WriteHTML writes a standalone preview page with one absolutely positioned 16:9 block per
// canvas. Speaker notes follow each slide.
func WriteHTML(w io.Writer, deck *layout.Deck, opts HTMLOptions) error {
	if deck == nil {
		return fmt.Errorf("nil deck")
	}
	page := htmlPage{Title: opts.Title, Font: fontFamily(opts.Font)}
	if page.Title == "" {
		page.Title = "Presentation Preview"
	}

	for i, c := range deck.Slides {
		hs := htmlSlide{Number: i + 1, Kind: c.Kind, Dropped: c.Dropped}
		if c.Background != "" {
			hs.Style = template.CSS("background-color: #" + style.ValidateColor(c.Background, layout.ColorWhite) + ";")
		}
		for _, s := range c.Shapes {
			shape := htmlShape{Role: s.Role, Style: shapeCSS(s, deck.Width, deck.Height)}
			switch s.Kind {
			case layout.ShapeImage:
				shape.Image = assetURL(opts.AssetsURL, s.Image)
			default:
				shape.Text = s.Text
			}
			hs.Shapes = append(hs.Shapes, shape)
		}
		if c.Notes != "" {
			// Sanitized to paragraph, list and emphasis markup before it is trusted.
			hs.Notes = template.HTML(SanitizeNotes(c.Notes))
		}
		page.Slides = append(page.Slides, hs)
	}

	if err := previewTemplate.Execute(w, page); err != nil {
		return fmt.Errorf("render preview: %w", err)
	}
	return nil
}

func shapeCSS(s layout.Shape, width, height float64) template.CSS {
	var b strings.Builder
	fmt.Fprintf(&b, "left: %s%%; top: %s%%; width: %s%%; height: %s%%;",
		pct(s.X, width), pct(s.Y, height), pct(s.W, width), pct(s.H, height))

	switch s.Kind {
	case layout.ShapeLine:
		fmt.Fprintf(&b, " border-top: %spx solid #%s;", num(max(s.LineWidth, 1)*96/72), style.ValidateColor(s.Line, layout.ColorText))
		return template.CSS(b.String())
	case layout.ShapeImage:
		return template.CSS(b.String())
	}

	if s.Fill != "" && s.Transparency < 100 {
		b.WriteString(" background-color: " + rgba(s.Fill, float64(100-max(s.Transparency, 0))/100) + ";")
	}
	if s.Line != "" {
		fmt.Fprintf(&b, " border: %spx solid #%s;", num(max(s.LineWidth, 1)*96/72), style.ValidateColor(s.Line, layout.ColorText))
	}
	if s.Text != "" {
		// 1pt on a 10in-wide canvas is 1/7.2 of one percent of its width.
		fmt.Fprintf(&b, " color: #%s; font-size: %scqw;", style.ValidateColor(s.Font.Color, layout.ColorText), num(s.Font.Size/(width*72)*100))
		if s.Font.Bold {
			b.WriteString(" font-weight: 700;")
		}
		if s.Font.Italic {
			b.WriteString(" font-style: italic;")
		}
		b.WriteString(" text-align: " + textAlign(s.Align) + ";")
		b.WriteString(" align-items: " + flexAlign(s.VAlign, s.Kind) + ";")
		if s.Kind == layout.ShapeRect {
			b.WriteString(" padding: 0 0.5%;")
		}
	}
	return template.CSS(b.String())
}

func pct(v, total float64) string {
	if total <= 0 {
		return "0"
	}
	return num(v / total * 100)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func rgba(hex string, alpha float64) string {
	c := color.NRGBAModel.Convert(style.RGBA(hex, alpha)).(color.NRGBA)
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(float64(c.A)/255, 'f', 2, 64))
}

func textAlign(a layout.Align) string {
	switch a {
	case layout.AlignCenter:
		return "center"
	case layout.AlignRight:
		return "right"
	default:
		return "left"
	}
}

func flexAlign(a layout.Align, kind layout.ShapeKind) string {
	switch a {
	case layout.AlignTop:
		return "flex-start"
	case layout.AlignMiddle:
		return "center"
	case layout.AlignBottom:
		return "flex-end"
	}
	if kind == layout.ShapeRect {
		return "center"
	}
	return "flex-start"
}

var unsafeFont = regexp.MustCompile(`[^A-Za-z0-9 _-]`)

func fontFamily(face string) template.CSS {
	face = strings.TrimSpace(unsafeFont.ReplaceAllString(face, ""))
	if face == "" {
		face = "Lato"
	}
	return template.CSS(fmt.Sprintf("'%s', Arial, sans-serif", face))
}

func assetURL(base, name string) string {
	if base == "" || strings.Contains(name, "://") || strings.HasPrefix(name, "/") {
		return name
	}
	return strings.TrimSuffix(base, "/") + "/" + name
}
