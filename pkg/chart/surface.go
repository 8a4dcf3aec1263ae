package chart

import (
	"fmt"
	"strings"
)

// Color is a straight (non-premultiplied) RGBA color.
type Color struct {
	R, G, B, A uint8
}

// Common colors.
var (
	White = Color{255, 255, 255, 255}
	Black = Color{0, 0, 0, 255}
)

// ParseHex parses "#RRGGBB" or "#AARRGGBB" (alpha first). Invalid input
// yields opaque black.
func ParseHex(hex string) Color {
	hex = strings.TrimPrefix(hex, "#")
	var a, r, g, b uint8 = 255, 0, 0, 0
	switch len(hex) {
	case 6:
		if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
			return Black
		}
	case 8:
		if _, err := fmt.Sscanf(hex, "%02x%02x%02x%02x", &a, &r, &g, &b); err != nil {
			return Black
		}
	default:
		return Black
	}
	return Color{R: r, G: g, B: b, A: a}
}

// Hex returns the color as "#RRGGBB", dropping alpha.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Opacity returns the alpha channel in [0, 1].
func (c Color) Opacity() float64 {
	return float64(c.A) / 255
}

// PaintMode selects how a shape is painted.
type PaintMode int

const (
	// Stroke outlines the shape with the style color and width.
	Stroke PaintMode = iota
	// Fill paints the interior only.
	Fill
	// FillStroke fills the interior and then outlines it.
	FillStroke
)

// Style describes how a shape is painted.
type Style struct {
	Color Color
	Width float64
	Mode  PaintMode
}

// Font describes text rendering.
type Font struct {
	Size  float64
	Bold  bool
	Color Color
}

// Surface is a page-sized drawing target. Coordinates have their origin at
// the top-left corner and y grows downward; text is positioned by the left
// end of its baseline.
type Surface interface {
	Rect(x0, y0, x1, y1 float64, st Style)
	Line(x0, y0, x1, y1 float64, st Style)
	Circle(cx, cy, r float64, st Style)
	Text(s string, x, y float64, f Font)
}
