package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/r3d91ll/tempchart/pkg/chart"
)

// SVG constants for page generation.
const (
	// SVGVersion is written on the root element.
	SVGVersion = "1.1"

	// SVGNamespace is the XML namespace for SVG.
	SVGNamespace = "http://www.w3.org/2000/svg"
)

// SVGOptions controls SVG serialization.
type SVGOptions struct {
	// FontFamily for all text elements.
	// Default: "Helvetica, Arial, sans-serif"
	FontFamily string

	// IncludeMetadata writes a generation comment after the header.
	IncludeMetadata bool

	// Version is recorded in the metadata comment.
	Version string
}

// DefaultSVGOptions returns the default SVG options.
func DefaultSVGOptions() *SVGOptions {
	return &SVGOptions{
		FontFamily:      "Helvetica, Arial, sans-serif",
		IncludeMetadata: true,
	}
}

// SVGCanvas records drawing calls as SVG elements.
type SVGCanvas struct {
	width, height float64
	opts          *SVGOptions
	body          strings.Builder
}

// NewSVGCanvas creates a blank page. A nil opts uses DefaultSVGOptions.
func NewSVGCanvas(width, height float64, opts *SVGOptions) *SVGCanvas {
	if opts == nil {
		opts = DefaultSVGOptions()
	}
	return &SVGCanvas{width: width, height: height, opts: opts}
}

var _ chart.Surface = (*SVGCanvas)(nil)

// paintAttrs renders fill and stroke attributes for a style.
func paintAttrs(st chart.Style) string {
	var sb strings.Builder
	switch st.Mode {
	case chart.Fill:
		sb.WriteString(fmt.Sprintf(`fill="%s"`, st.Color.Hex()))
		writeOpacity(&sb, "fill-opacity", st.Color)
	case chart.FillStroke:
		sb.WriteString(fmt.Sprintf(`fill="%s" stroke="%s" stroke-width="%.2f"`, st.Color.Hex(), st.Color.Hex(), strokeWidth(st)))
		writeOpacity(&sb, "opacity", st.Color)
	default:
		sb.WriteString(fmt.Sprintf(`fill="none" stroke="%s" stroke-width="%.2f"`, st.Color.Hex(), strokeWidth(st)))
		writeOpacity(&sb, "stroke-opacity", st.Color)
	}
	return sb.String()
}

func strokeWidth(st chart.Style) float64 {
	if st.Width <= 0 {
		return 1
	}
	return st.Width
}

func writeOpacity(sb *strings.Builder, attr string, c chart.Color) {
	if c.A < 255 {
		sb.WriteString(fmt.Sprintf(` %s="%.3f"`, attr, c.Opacity()))
	}
}

// Rect implements chart.Surface.
func (c *SVGCanvas) Rect(x0, y0, x1, y1 float64, st chart.Style) {
	c.body.WriteString(fmt.Sprintf("  <rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" %s/>\n",
		x0, y0, x1-x0, y1-y0, paintAttrs(st)))
}

// Line implements chart.Surface.
func (c *SVGCanvas) Line(x0, y0, x1, y1 float64, st chart.Style) {
	st.Mode = chart.Stroke
	c.body.WriteString(fmt.Sprintf("  <line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" %s stroke-linecap=\"round\"/>\n",
		x0, y0, x1, y1, paintAttrs(st)))
}

// Circle implements chart.Surface.
func (c *SVGCanvas) Circle(cx, cy, r float64, st chart.Style) {
	c.body.WriteString(fmt.Sprintf("  <circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" %s/>\n", cx, cy, r, paintAttrs(st)))
}

// Text implements chart.Surface.
func (c *SVGCanvas) Text(s string, x, y float64, f chart.Font) {
	weight := ""
	if f.Bold {
		weight = ` font-weight="bold"`
	}
	c.body.WriteString(fmt.Sprintf("  <text x=\"%.2f\" y=\"%.2f\" font-size=\"%.0f\"%s fill=\"%s\">%s</text>\n",
		x, y, f.Size, weight, f.Color.Hex(), escapeXML(s)))
}

// ContentType implements Canvas.
func (c *SVGCanvas) ContentType() string { return "image/svg+xml" }

// String returns the complete SVG document.
func (c *SVGCanvas) String() string {
	var sb strings.Builder
	c.writeHeader(&sb)
	if c.opts.IncludeMetadata {
		c.writeMetadata(&sb)
	}
	sb.WriteString(fmt.Sprintf("  <rect width=\"%.0f\" height=\"%.0f\" fill=\"#FFFFFF\"/>\n", c.width, c.height))
	sb.WriteString(c.body.String())
	sb.WriteString("</svg>\n")
	return sb.String()
}

// Encode writes the SVG document to w.
func (c *SVGCanvas) Encode(w io.Writer) error {
	_, err := io.WriteString(w, c.String())
	return err
}

func (c *SVGCanvas) writeHeader(sb *strings.Builder) {
	sb.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	sb.WriteString(fmt.Sprintf("<svg version=\"%s\" xmlns=\"%s\" width=\"%.0f\" height=\"%.0f\" viewBox=\"0 0 %.0f %.0f\" font-family=\"%s\">\n",
		SVGVersion, SVGNamespace, c.width, c.height, c.width, c.height, escapeXML(c.opts.FontFamily)))
}

func (c *SVGCanvas) writeMetadata(sb *strings.Builder) {
	sb.WriteString("  <!-- Generated by tempchart -->\n")
	sb.WriteString(fmt.Sprintf("  <!-- Generated at: %s -->\n", time.Now().UTC().Format(time.RFC3339)))
	if c.opts.Version != "" {
		sb.WriteString(fmt.Sprintf("  <!-- Tool version: %s -->\n", c.opts.Version))
	}
}

// escapeXML escapes special characters for XML/SVG content.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
