// Package export serializes rendered decks as PPTX packages, HTML previews and PNG thumbnails.
package export

import (
	"archive/zip"
	"embed"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"briefdeck/internal/layout"
	"briefdeck/internal/logger"
	"briefdeck/internal/style"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const emuPerInch = 914400

var partTemplates = template.Must(template.New("pptx").Funcs(template.FuncMap{
	"x":   xmlText,
	"add": func(a, b int) int { return a + b },
	"rel": func(kind string) string {
		return "http://schemas.openxmlformats.org/officeDocument/2006/relationships/" + kind
	},
}).ParseFS(templateFS, "templates/*.xml.tmpl", "templates/*.rels.tmpl", "templates/shared.tmpl"))

// PPTXOptions configures WritePPTX.
type PPTXOptions struct {
	// AssetsDir resolves relative image names. Images that cannot be read are left out.
	AssetsDir  string
	Title      string
	Author     string
	ThemeColor string
	ThemeFont  string
	Now        func() time.Time
	Logger     *slog.Logger
}

type pptxRel struct {
	ID     string
	Type   string
	Target string
}

type pptxShape struct {
	ID         int
	Name       string
	Kind       string
	X, Y, W, H int64
	Fill       string
	Alpha      int
	Line       string
	LineW      int64
	Paragraphs []string
	Align      string
	Anchor     string
	Size       int
	Bold       bool
	Italic     bool
	Color      string
	Face       string
	RelID      string
}

type pptxSlide struct {
	Number     int
	Background string
	Shapes     []pptxShape
	Rels       []pptxRel
	Notes      []string
}

type pptxPackage struct {
	Title      string
	Author     string
	Created    string
	ThemeName  string
	ThemeColor string
	ThemeFont  string
	Width      int64
	Height     int64
	Slides     []*pptxSlide
	NoteCount  int
}

// part is one zip entry rendered from a template.
type part struct {
	name string
	tmpl string
	data any
}

type mediaFile struct {
	part string
	data []byte
}

// pptxWriter accumulates media across slides so each asset is embedded once.
type pptxWriter struct {
	opts    PPTXOptions
	log     *slog.Logger
	media   map[string]*mediaFile
	order   []*mediaFile
	missing map[string]bool
}

// WritePPTX writes deck as a PowerPoint package: one slide part per canvas and a notes slide
// for every canvas that carries speaker notes.
func WritePPTX(w io.Writer, deck *layout.Deck, opts PPTXOptions) error {
	if deck == nil {
		return fmt.Errorf("nil deck")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Author == "" {
		opts.Author = "briefdeck"
	}
	if opts.Title == "" {
		opts.Title = "Presentation"
	}

	pw := &pptxWriter{
		opts:    opts,
		log:     logger.OrDiscard(opts.Logger),
		media:   make(map[string]*mediaFile),
		missing: make(map[string]bool),
	}

	pkg := &pptxPackage{
		Title:      opts.Title,
		Author:     opts.Author,
		Created:    opts.Now().UTC().Format(time.RFC3339),
		ThemeName:  "Briefing",
		ThemeColor: style.ValidateColor(opts.ThemeColor, layout.ColorBrand),
		ThemeFont:  opts.ThemeFont,
		Width:      emu(deck.Width),
		Height:     emu(deck.Height),
	}
	if pkg.ThemeFont == "" {
		pkg.ThemeFont = "Lato"
	}
	for i, c := range deck.Slides {
		s := pw.slide(i+1, c)
		if len(s.Notes) > 0 {
			pkg.NoteCount++
		}
		pkg.Slides = append(pkg.Slides, s)
	}

	zw := zip.NewWriter(w)
	parts := []part{
		{"[Content_Types].xml", "content_types.xml.tmpl", pkg},
		{"_rels/.rels", "package.rels.tmpl", pkg},
		{"docProps/core.xml", "core.xml.tmpl", pkg},
		{"docProps/app.xml", "app.xml.tmpl", pkg},
		{"ppt/presentation.xml", "presentation.xml.tmpl", pkg},
		{"ppt/_rels/presentation.xml.rels", "presentation.xml.rels.tmpl", pkg},
		{"ppt/slideMasters/slideMaster1.xml", "master.xml.tmpl", pkg},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", "master.xml.rels.tmpl", pkg},
		{"ppt/slideLayouts/slideLayout1.xml", "layout.xml.tmpl", pkg},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", "layout.xml.rels.tmpl", pkg},
		{"ppt/notesMasters/notesMaster1.xml", "notes_master.xml.tmpl", pkg},
		{"ppt/notesMasters/_rels/notesMaster1.xml.rels", "notes_master.xml.rels.tmpl", pkg},
		{"ppt/theme/theme1.xml", "theme.xml.tmpl", pkg},
		{"ppt/theme/theme2.xml", "theme.xml.tmpl", pkg},
	}
	for _, s := range pkg.Slides {
		parts = append(parts,
			part{fmt.Sprintf("ppt/slides/slide%d.xml", s.Number), "slide.xml.tmpl", s},
			part{fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", s.Number), "slide.xml.rels.tmpl", s},
		)
		if len(s.Notes) > 0 {
			parts = append(parts,
				part{fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", s.Number), "notes_slide.xml.tmpl", s},
				part{fmt.Sprintf("ppt/notesSlides/_rels/notesSlide%d.xml.rels", s.Number), "notes_slide.xml.rels.tmpl", s},
			)
		}
	}

	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("create %s: %w", p.name, err)
		}
		if err := partTemplates.ExecuteTemplate(f, p.tmpl, p.data); err != nil {
			return fmt.Errorf("write %s: %w", p.name, err)
		}
	}
	for _, m := range pw.order {
		f, err := zw.Create("ppt/media/" + m.part)
		if err != nil {
			return fmt.Errorf("create media %s: %w", m.part, err)
		}
		if _, err := f.Write(m.data); err != nil {
			return fmt.Errorf("write media %s: %w", m.part, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish pptx: %w", err)
	}

	pw.log.Debug("wrote pptx", "slides", len(pkg.Slides), "notes", pkg.NoteCount, "media", len(pw.order))
	return nil
}

func (pw *pptxWriter) slide(number int, c *layout.Canvas) *pptxSlide {
	s := &pptxSlide{Number: number, Background: c.Background}
	if s.Background != "" {
		s.Background = style.ValidateColor(s.Background, layout.ColorWhite)
	}
	rels := make(map[string]string)

	id := 2
	for _, shape := range c.Shapes {
		ps := pptxShape{
			ID:   id,
			Name: fmt.Sprintf("%s %d", shapeName(shape), id),
			Kind: string(shape.Kind),
			X:    emu(shape.X),
			Y:    emu(shape.Y),
			W:    emu(shape.W),
			H:    emu(shape.H),
		}

		switch shape.Kind {
		case layout.ShapeImage:
			m := pw.load(shape.Image)
			if m == nil {
				continue
			}
			relID, ok := rels[m.part]
			if !ok {
				relID = fmt.Sprintf("rId%d", len(s.Rels)+2)
				rels[m.part] = relID
				s.Rels = append(s.Rels, pptxRel{ID: relID, Type: "image", Target: "../media/" + m.part})
			}
			ps.RelID = relID
		case layout.ShapeLine:
			ps.Line = style.ValidateColor(shape.Line, layout.ColorText)
			ps.LineW = lineWidth(shape.LineWidth)
		default:
			if shape.Fill != "" && shape.Transparency < 100 {
				ps.Fill = style.ValidateColor(shape.Fill, layout.ColorWhite)
				ps.Alpha = 100000 - max(shape.Transparency, 0)*1000
			}
			if shape.Line != "" {
				ps.Line = style.ValidateColor(shape.Line, layout.ColorText)
				ps.LineW = lineWidth(shape.LineWidth)
			}
			if shape.Text != "" {
				ps.Paragraphs = strings.Split(shape.Text, "\n")
				ps.Align = alignCode(shape.Align)
				ps.Anchor = anchorCode(shape.VAlign, shape.Kind)
				ps.Size = int(math.Round(max(shape.Font.Size, 1) * 100))
				ps.Bold = shape.Font.Bold
				ps.Italic = shape.Font.Italic
				ps.Color = style.ValidateColor(shape.Font.Color, layout.ColorText)
				ps.Face = shape.Font.Face
				if ps.Face == "" {
					ps.Face = pw.opts.ThemeFont
				}
			}
		}
		s.Shapes = append(s.Shapes, ps)
		id++
	}

	if c.Notes != "" {
		s.Notes = NotesParagraphs(c.Notes)
	}
	if len(s.Notes) > 0 {
		s.Rels = append(s.Rels, pptxRel{
			ID:     fmt.Sprintf("rId%d", len(s.Rels)+2),
			Type:   "notesSlide",
			Target: fmt.Sprintf("../notesSlides/notesSlide%d.xml", number),
		})
	}
	return s
}

// load reads an asset once per package. Missing or unsupported assets are warned about once.
func (pw *pptxWriter) load(name string) *mediaFile {
	if m, ok := pw.media[name]; ok {
		return m
	}
	if pw.missing[name] {
		return nil
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	switch ext {
	case "png", "jpg", "jpeg", "gif":
	default:
		pw.log.Warn("unsupported image type, skipping", "image", name)
		pw.missing[name] = true
		return nil
	}

	data, err := os.ReadFile(assetPath(pw.opts.AssetsDir, name))
	if err != nil {
		pw.log.Warn("image not available, skipping", "image", name, "error", err)
		pw.missing[name] = true
		return nil
	}
	m := &mediaFile{part: fmt.Sprintf("image%d.%s", len(pw.order)+1, ext), data: data}
	pw.media[name] = m
	pw.order = append(pw.order, m)
	return m
}

func assetPath(dir, name string) string {
	if filepath.IsAbs(name) || dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

func emu(inches float64) int64 {
	return int64(math.Round(inches * emuPerInch))
}

func lineWidth(points float64) int64 {
	if points <= 0 {
		points = 1
	}
	return int64(math.Round(points * 12700))
}

func shapeName(s layout.Shape) string {
	if s.Role != "" {
		return s.Role
	}
	return string(s.Kind)
}

func alignCode(a layout.Align) string {
	switch a {
	case layout.AlignCenter:
		return "ctr"
	case layout.AlignRight:
		return "r"
	default:
		return "l"
	}
}

func anchorCode(a layout.Align, kind layout.ShapeKind) string {
	switch a {
	case layout.AlignTop:
		return "t"
	case layout.AlignMiddle:
		return "ctr"
	case layout.AlignBottom:
		return "b"
	}
	if kind == layout.ShapeRect {
		return "ctr"
	}
	return "t"
}

func xmlText(s string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return ""
	}
	return b.String()
}
