package export

import (
	"io"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/r3d91ll/tempchart/pkg/chart"
)

// PNGCanvas rasterizes drawing calls with gg. Text uses the built-in 7x13
// bitmap face, so font sizes are approximate; bold is drawn double-struck.
type PNGCanvas struct {
	dc *gg.Context
}

// NewPNGCanvas creates a white page of the given size in pixels.
func NewPNGCanvas(width, height float64) *PNGCanvas {
	dc := gg.NewContext(int(math.Ceil(width)), int(math.Ceil(height)))
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetLineCapRound()
	return &PNGCanvas{dc: dc}
}

var _ chart.Surface = (*PNGCanvas)(nil)

func (c *PNGCanvas) setColor(col chart.Color) {
	c.dc.SetRGBA255(int(col.R), int(col.G), int(col.B), int(col.A))
}

func (c *PNGCanvas) paint(st chart.Style) {
	c.setColor(st.Color)
	c.dc.SetLineWidth(strokeWidth(st))
	switch st.Mode {
	case chart.Fill:
		c.dc.Fill()
	case chart.FillStroke:
		c.dc.FillPreserve()
		c.dc.Stroke()
	default:
		c.dc.Stroke()
	}
}

// Rect implements chart.Surface.
func (c *PNGCanvas) Rect(x0, y0, x1, y1 float64, st chart.Style) {
	c.dc.DrawRectangle(x0, y0, x1-x0, y1-y0)
	c.paint(st)
}

// Line implements chart.Surface.
func (c *PNGCanvas) Line(x0, y0, x1, y1 float64, st chart.Style) {
	st.Mode = chart.Stroke
	c.dc.DrawLine(x0, y0, x1, y1)
	c.paint(st)
}

// Circle implements chart.Surface.
func (c *PNGCanvas) Circle(cx, cy, r float64, st chart.Style) {
	c.dc.DrawCircle(cx, cy, r)
	c.paint(st)
}

// Text implements chart.Surface.
func (c *PNGCanvas) Text(s string, x, y float64, f chart.Font) {
	c.setColor(f.Color)
	c.dc.DrawString(s, x, y)
	if f.Bold {
		c.dc.DrawString(s, x+1, y)
	}
}

// ContentType implements Canvas.
func (c *PNGCanvas) ContentType() string { return "image/png" }

// Encode writes the raster as PNG.
func (c *PNGCanvas) Encode(w io.Writer) error {
	return c.dc.EncodePNG(w)
}
