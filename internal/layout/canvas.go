package layout

import (
	"math"

	"briefdeck/internal/slides"
)

// Canvas geometry in inches (16:9).
const (
	CanvasWidth  = 10.0
	CanvasHeight = 5.625

	// SafeBottom is the lowest Y body text may reach; page numbers sit below it.
	SafeBottom = 5.0
)

type ShapeKind string

const (
	ShapeRect  ShapeKind = "rect"
	ShapeText  ShapeKind = "text"
	ShapeImage ShapeKind = "image"
	ShapeLine  ShapeKind = "line"
)

type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
	AlignTop    Align = "top"
	AlignMiddle Align = "middle"
	AlignBottom Align = "bottom"
)

// Font sizes are in points; Color is 6-digit hex without '#'.
type Font struct {
	Face   string  `json:"face"`
	Size   float64 `json:"size"`
	Bold   bool    `json:"bold,omitempty"`
	Italic bool    `json:"italic,omitempty"`
	Color  string  `json:"color"`
}

// Shape is one positioned element. Geometry is in inches from the top-left corner.
// Rect shapes may carry Text, which is drawn inside the filled box.
type Shape struct {
	Kind         ShapeKind `json:"kind"`
	Role         string    `json:"role,omitempty"`
	X            float64   `json:"x"`
	Y            float64   `json:"y"`
	W            float64   `json:"w"`
	H            float64   `json:"h"`
	Text         string    `json:"text,omitempty"`
	Font         Font      `json:"font"`
	Align        Align     `json:"align,omitempty"`
	VAlign       Align     `json:"valign,omitempty"`
	Fill         string    `json:"fill,omitempty"`
	Transparency int       `json:"transparency,omitempty"` // percent, 0 opaque
	Line         string    `json:"line,omitempty"`
	LineWidth    float64   `json:"line_width,omitempty"` // points
	Image        string    `json:"image,omitempty"`
}

// Canvas is one rendered slide.
type Canvas struct {
	Number     int         `json:"number"`
	Kind       slides.Kind `json:"kind"`
	Title      string      `json:"title"`
	Background string      `json:"background,omitempty"`
	Shapes     []Shape     `json:"shapes"`
	Notes      string      `json:"notes,omitempty"`
	Dropped    []string    `json:"dropped,omitempty"` // items left out because they did not fit
}

// Deck is the finished presentation.
type Deck struct {
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
	Slides []*Canvas `json:"slides"`
}

// Add clamps s to the canvas and appends it. Shapes with no area left are discarded.
func (c *Canvas) Add(s Shape) {
	s.X, s.W = clampSpan(s.X, s.W, CanvasWidth)
	s.Y, s.H = clampSpan(s.Y, s.H, CanvasHeight)
	if s.W <= 0 || (s.H <= 0 && s.Kind != ShapeLine) {
		return
	}
	c.Shapes = append(c.Shapes, s)
}

func clampSpan(pos, size, limit float64) (float64, float64) {
	if math.IsNaN(pos) || math.IsNaN(size) {
		return 0, 0
	}
	if pos < 0 {
		size += pos
		pos = 0
	}
	if pos > limit {
		pos = limit
	}
	if pos+size > limit {
		size = limit - pos
	}
	if size < 0 {
		size = 0
	}
	return pos, size
}

func (c *Canvas) drop(items ...string) {
	c.Dropped = append(c.Dropped, items...)
}

// ShapesWithRole returns the shapes tagged with role, in drawing order.
func (c *Canvas) ShapesWithRole(role string) []Shape {
	var out []Shape
	for _, s := range c.Shapes {
		if s.Role == role {
			out = append(out, s)
		}
	}
	return out
}

// InBounds reports whether s lies entirely on the canvas.
func (s Shape) InBounds() bool {
	const eps = 1e-9
	return s.X >= -eps && s.Y >= -eps && s.X+s.W <= CanvasWidth+eps && s.Y+s.H <= CanvasHeight+eps
}
