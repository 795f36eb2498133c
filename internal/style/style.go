// Package style holds the color and font validators shared by every slide renderer.
package style

import (
	"image/color"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultColor is used when neither the input nor the caller's default is a usable color.
const DefaultColor = "000000"

var hexPattern = regexp.MustCompile(`^(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateColor coerces input into an uppercase 6-digit hex color without a leading '#'.
// Accepted inputs are strings (or *string) holding 3- or 6-digit hex, with or without '#'.
// Anything else resolves to def, which is itself validated and falls back to DefaultColor.
func ValidateColor(input any, def string) string {
	if c, ok := canonical(input); ok {
		return c
	}
	if c, ok := canonical(def); ok {
		return c
	}
	return DefaultColor
}

func canonical(input any) (string, bool) {
	var s string
	switch v := input.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return "", false
		}
		s = *v
	default:
		return "", false
	}

	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if !hexPattern.MatchString(s) {
		return "", false
	}

	c, err := colorful.Hex("#" + strings.ToLower(s))
	if err != nil {
		return "", false
	}
	return strings.ToUpper(strings.TrimPrefix(c.Hex(), "#")), true
}

// RGBA converts a hex color (validated first) into a color.Color with the given alpha (0-1).
func RGBA(hex string, alpha float64) color.Color {
	c, _ := colorful.Hex("#" + strings.ToLower(ValidateColor(hex, DefaultColor)))
	r, g, b := c.RGB255()
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	return color.NRGBA{R: r, G: g, B: b, A: uint8(alpha*255 + 0.5)}
}

// Header font bands, by title length in characters.
var headerBands = []struct {
	maxLen int
	size   int
}{
	{35, 28},
	{45, 26},
	{60, 24},
	{80, 22},
}

const minHeaderFontSize = 20

// HeaderFontSize returns the point size for a slide header. Longer titles get smaller fonts.
func HeaderFontSize(title string) int {
	n := utf8.RuneCountInString(title)
	for _, band := range headerBands {
		if n <= band.maxLen {
			return band.size
		}
	}
	return minHeaderFontSize
}
