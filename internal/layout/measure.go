package layout

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	// Average glyph width as a fraction of the point size.
	charWidthFactor = 0.5
	lineSpacing     = 1.2
	pointsPerInch   = 72.0
)

// CharsPerLine estimates how many characters of the given point size fit in width inches.
func CharsPerLine(width, fontSize float64) int {
	if fontSize <= 0 {
		return 1
	}
	n := int(width * pointsPerInch / (fontSize * charWidthFactor))
	if n < 1 {
		return 1
	}
	return n
}

// EstimateLines is the number of wrapped lines text needs. Explicit newlines start new lines.
func EstimateLines(text string, width, fontSize float64) int {
	per := CharsPerLine(width, fontSize)
	lines := 0
	for _, para := range strings.Split(text, "\n") {
		n := utf8.RuneCountInString(para)
		if n == 0 {
			lines++
			continue
		}
		lines += (n + per - 1) / per
	}
	if lines < 1 {
		lines = 1
	}
	return lines
}

// LineHeight is the height in inches of one line of text at fontSize points.
func LineHeight(fontSize float64) float64 {
	return fontSize * lineSpacing / pointsPerInch
}

// EstimateHeight is the height in inches text needs when wrapped into width inches.
// It never decreases as text grows.
func EstimateHeight(text string, width, fontSize float64) float64 {
	return float64(EstimateLines(text, width, fontSize)) * LineHeight(fontSize)
}

// Truncate shortens s to at most limit runes, ending in "..." when cut.
func Truncate(s string, limit int) string {
	if limit <= 3 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	cut := strings.TrimRight(string(runes[:limit-3]), " ,;:-")
	return cut + "..."
}

func floorRows(avail, rowHeight float64) int {
	if rowHeight <= 0 {
		return 0
	}
	return int(math.Floor(avail/rowHeight + 1e-9))
}
