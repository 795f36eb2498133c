package export

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"briefdeck/internal/layout"
	"briefdeck/internal/logger"
	"briefdeck/internal/style"
)

const defaultDPI = 96

// PNGOptions configures a PNGRenderer.
type PNGOptions struct {
	// DPI sets pixels per canvas inch; 96 gives 960x540 thumbnails.
	DPI       float64
	AssetsDir string
	Logger    *slog.Logger
}

type faceKey struct {
	size         float64
	bold, italic bool
}

// PNGRenderer rasterizes canvases. Fonts and decoded images are cached across calls.
type PNGRenderer struct {
	dpi       float64
	assetsDir string
	log       *slog.Logger

	mu     sync.Mutex
	fonts  map[faceKey]*opentype.Font
	faces  map[faceKey]font.Face
	images map[string]image.Image
}

func NewPNGRenderer(opts PNGOptions) *PNGRenderer {
	dpi := opts.DPI
	if dpi <= 0 {
		dpi = defaultDPI
	}
	return &PNGRenderer{
		dpi:       dpi,
		assetsDir: opts.AssetsDir,
		log:       logger.OrDiscard(opts.Logger),
		fonts:     make(map[faceKey]*opentype.Font),
		faces:     make(map[faceKey]font.Face),
		images:    make(map[string]image.Image),
	}
}

func (p *PNGRenderer) px(inches float64) float64 {
	return inches * p.dpi
}

// Render draws c onto a new image sized to the canvas.
func (p *PNGRenderer) Render(c *layout.Canvas) image.Image {
	return p.draw(c).Image()
}

func (p *PNGRenderer) draw(c *layout.Canvas) *gg.Context {
	w := int(math.Round(p.px(layout.CanvasWidth)))
	h := int(math.Round(p.px(layout.CanvasHeight)))
	dc := gg.NewContext(w, h)

	bg := c.Background
	if bg == "" {
		bg = layout.ColorWhite
	}
	dc.SetColor(style.RGBA(bg, 1))
	dc.Clear()

	for _, s := range c.Shapes {
		switch s.Kind {
		case layout.ShapeImage:
			p.drawImage(dc, s)
		case layout.ShapeLine:
			dc.SetLineWidth(max(s.LineWidth, 1) * p.dpi / 72)
			dc.SetColor(style.RGBA(s.Line, 1))
			dc.DrawLine(p.px(s.X), p.px(s.Y), p.px(s.X+s.W), p.px(s.Y+s.H))
			dc.Stroke()
		default:
			if s.Fill != "" && s.Transparency < 100 {
				dc.DrawRectangle(p.px(s.X), p.px(s.Y), p.px(s.W), p.px(s.H))
				dc.SetColor(style.RGBA(s.Fill, float64(100-max(s.Transparency, 0))/100))
				dc.Fill()
			}
			if s.Line != "" {
				dc.DrawRectangle(p.px(s.X), p.px(s.Y), p.px(s.W), p.px(s.H))
				dc.SetLineWidth(max(s.LineWidth, 1) * p.dpi / 72)
				dc.SetColor(style.RGBA(s.Line, 1))
				dc.Stroke()
			}
			if s.Text != "" {
				p.drawText(dc, s)
			}
		}
	}
	return dc
}

func (p *PNGRenderer) drawText(dc *gg.Context, s layout.Shape) {
	dc.Push()
	defer dc.Pop()

	x, y, w, h := p.px(s.X), p.px(s.Y), p.px(s.W), p.px(s.H)
	dc.DrawRectangle(x, y, w, h)
	dc.Clip()

	dc.SetFontFace(p.face(s.Font))
	dc.SetColor(style.RGBA(s.Font.Color, 1))

	ax, align := 0.0, gg.AlignLeft
	switch s.Align {
	case layout.AlignCenter:
		x, ax, align = x+w/2, 0.5, gg.AlignCenter
	case layout.AlignRight:
		x, ax, align = x+w, 1, gg.AlignRight
	}
	ay := 0.0
	switch s.VAlign {
	case layout.AlignMiddle:
		y, ay = y+h/2, 0.5
	case layout.AlignBottom:
		y, ay = y+h, 1
	}
	dc.DrawStringWrapped(s.Text, x, y, ax, ay, w, 1.2, align)
	dc.ResetClip()
}

func (p *PNGRenderer) drawImage(dc *gg.Context, s layout.Shape) {
	src := p.loadImage(s.Image)
	if src == nil {
		return
	}
	w, h := int(math.Round(p.px(s.W))), int(math.Round(p.px(s.H)))
	if w <= 0 || h <= 0 {
		return
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	dc.DrawImage(dst, int(math.Round(p.px(s.X))), int(math.Round(p.px(s.Y))))
}

func (p *PNGRenderer) loadImage(name string) image.Image {
	p.mu.Lock()
	defer p.mu.Unlock()
	if img, ok := p.images[name]; ok {
		return img
	}

	var img image.Image
	data, err := os.ReadFile(assetPath(p.assetsDir, name))
	if err == nil {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		p.log.Warn("image not available for thumbnail", "image", name, "error", err)
		img = nil
	}
	p.images[name] = img
	return img
}

// face returns a Go font face at the shape's point size, or the fixed basic face when the
// embedded fonts cannot be parsed.
func (p *PNGRenderer) face(f layout.Font) font.Face {
	key := faceKey{size: f.Size, bold: f.Bold, italic: f.Italic}
	p.mu.Lock()
	defer p.mu.Unlock()
	if face, ok := p.faces[key]; ok {
		return face
	}

	variant := faceKey{bold: f.Bold, italic: f.Italic}
	otf, ok := p.fonts[variant]
	if !ok {
		var err error
		otf, err = opentype.Parse(fontData(f.Bold, f.Italic))
		if err != nil {
			p.log.Warn("font parse failed, using basic face", "error", err)
			otf = nil
		}
		p.fonts[variant] = otf
	}

	var face font.Face = basicfont.Face7x13
	if otf != nil {
		size := f.Size
		if size <= 0 {
			size = 12
		}
		nf, err := opentype.NewFace(otf, &opentype.FaceOptions{Size: size, DPI: p.dpi, Hinting: font.HintingFull})
		if err == nil {
			face = nf
		}
	}
	p.faces[key] = face
	return face
}

func fontData(bold, italic bool) []byte {
	switch {
	case bold && italic:
		return gobolditalic.TTF
	case bold:
		return gobold.TTF
	case italic:
		return goitalic.TTF
	default:
		return goregular.TTF
	}
}

// WritePNG encodes c as PNG.
func (p *PNGRenderer) WritePNG(w io.Writer, c *layout.Canvas) error {
	if err := p.draw(c).EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// WritePNGs writes one slide-NN.png per canvas into dir and returns the paths in deck order.
func WritePNGs(dir string, deck *layout.Deck, opts PNGOptions) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	r := NewPNGRenderer(opts)
	paths := make([]string, 0, len(deck.Slides))
	for i, c := range deck.Slides {
		var buf bytes.Buffer
		if err := r.WritePNG(&buf, c); err != nil {
			return paths, fmt.Errorf("slide %d: %w", i+1, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("slide-%02d.png", i+1))
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			return paths, fmt.Errorf("failed to write thumbnail %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	r.log.Debug("wrote thumbnails", "dir", dir, "count", len(paths))
	return paths, nil
}
