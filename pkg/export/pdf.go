// Package export serializes painted chart pages. Each canvas implements
// chart.Surface and encodes the recorded page as PDF, SVG or PNG.
package export

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/r3d91ll/tempchart/pkg/chart"
)

// PDF constants for document generation.
const (
	// PDFVersion is written in the file header.
	PDFVersion = "1.4"

	// PDFProducer is the producer string embedded in PDF metadata.
	PDFProducer = "tempchart"
)

// PDFOptions controls PDF serialization.
type PDFOptions struct {
	// Compress enables FlateDecode on the page content stream.
	Compress bool

	// IncludeMetadata embeds an Info dictionary.
	IncludeMetadata bool

	Title   string
	Author  string
	Subject string
	Version string

	// CreatedAt is written to the Info dictionary; zero means time.Now().
	CreatedAt time.Time
}

// DefaultPDFOptions returns compressed output with metadata.
func DefaultPDFOptions() *PDFOptions {
	return &PDFOptions{
		Compress:        true,
		IncludeMetadata: true,
		Title:           "Temperature chart",
	}
}

// PDFCanvas is a single-page PDF drawing surface. Page units are PDF points;
// one layout unit maps to one point.
type PDFCanvas struct {
	width, height float64
	opts          *PDFOptions
	content       strings.Builder

	// graphics states keyed by alpha byte
	alphaStates map[uint8]string
}

// NewPDFCanvas creates a blank page of the given size. A nil opts uses
// DefaultPDFOptions.
func NewPDFCanvas(width, height float64, opts *PDFOptions) *PDFCanvas {
	if opts == nil {
		opts = DefaultPDFOptions()
	}
	return &PDFCanvas{
		width:       width,
		height:      height,
		opts:        opts,
		alphaStates: make(map[uint8]string),
	}
}

var _ chart.Surface = (*PDFCanvas)(nil)

// y converts a top-left page coordinate to PDF's bottom-left origin.
func (c *PDFCanvas) y(v float64) float64 {
	return c.height - v
}

func (c *PDFCanvas) begin(st chart.Style) {
	c.content.WriteString("q\n")
	if st.Color.A < 255 {
		c.content.WriteString(fmt.Sprintf("/%s gs\n", c.alphaState(st.Color.A)))
	}
	col := pdfColor(st.Color)
	if st.Mode != chart.Stroke {
		c.content.WriteString(col + " rg\n")
	}
	if st.Mode != chart.Fill {
		c.content.WriteString(col + " RG\n")
		width := st.Width
		if width <= 0 {
			width = 1
		}
		c.content.WriteString(fmt.Sprintf("%.2f w\n", width))
	}
}

func (c *PDFCanvas) end(st chart.Style) {
	switch st.Mode {
	case chart.Fill:
		c.content.WriteString("f\n")
	case chart.FillStroke:
		c.content.WriteString("B\n")
	default:
		c.content.WriteString("S\n")
	}
	c.content.WriteString("Q\n")
}

func (c *PDFCanvas) alphaState(a uint8) string {
	if name, ok := c.alphaStates[a]; ok {
		return name
	}
	name := fmt.Sprintf("GS%d", len(c.alphaStates)+1)
	c.alphaStates[a] = name
	return name
}

// Rect implements chart.Surface.
func (c *PDFCanvas) Rect(x0, y0, x1, y1 float64, st chart.Style) {
	c.begin(st)
	c.content.WriteString(fmt.Sprintf("%.2f %.2f %.2f %.2f re\n", x0, c.y(y1), x1-x0, y1-y0))
	c.end(st)
}

// Line implements chart.Surface.
func (c *PDFCanvas) Line(x0, y0, x1, y1 float64, st chart.Style) {
	st.Mode = chart.Stroke
	c.begin(st)
	c.content.WriteString("1 J\n")
	c.content.WriteString(fmt.Sprintf("%.2f %.2f m %.2f %.2f l\n", x0, c.y(y0), x1, c.y(y1)))
	c.end(st)
}

// Circle implements chart.Surface using four Bezier arcs.
func (c *PDFCanvas) Circle(cx, cy, r float64, st chart.Style) {
	c.begin(st)
	y := c.y(cy)
	k := r * 0.5523 // Bezier circle approximation constant
	c.content.WriteString(fmt.Sprintf("%.2f %.2f m\n", cx+r, y))
	c.content.WriteString(fmt.Sprintf("%.2f %.2f %.2f %.2f %.2f %.2f c\n", cx+r, y+k, cx+k, y+r, cx, y+r))
	c.content.WriteString(fmt.Sprintf("%.2f %.2f %.2f %.2f %.2f %.2f c\n", cx-k, y+r, cx-r, y+k, cx-r, y))
	c.content.WriteString(fmt.Sprintf("%.2f %.2f %.2f %.2f %.2f %.2f c\n", cx-r, y-k, cx-k, y-r, cx, y-r))
	c.content.WriteString(fmt.Sprintf("%.2f %.2f %.2f %.2f %.2f %.2f c\n", cx+k, y-r, cx+r, y-k, cx+r, y))
	c.end(st)
}

// Text implements chart.Surface. Bold text uses Helvetica-Bold (/F2).
func (c *PDFCanvas) Text(s string, x, y float64, f chart.Font) {
	font := "F1"
	if f.Bold {
		font = "F2"
	}
	c.content.WriteString("BT\n")
	c.content.WriteString(fmt.Sprintf("/%s %.2f Tf\n", font, f.Size))
	c.content.WriteString(pdfColor(f.Color) + " rg\n")
	c.content.WriteString(fmt.Sprintf("%.2f %.2f Td\n", x, c.y(y)))
	c.content.WriteString(fmt.Sprintf("(%s) Tj\n", escapePDFString(s)))
	c.content.WriteString("ET\n")
}

// ContentType implements Canvas.
func (c *PDFCanvas) ContentType() string { return "application/pdf" }

// Encode writes the complete PDF document to w.
func (c *PDFCanvas) Encode(w io.Writer) error {
	_, err := w.Write(c.Bytes())
	return err
}

// Bytes returns the complete PDF document.
func (c *PDFCanvas) Bytes() []byte {
	doc := newPDFDocument(c.opts)
	doc.setPage(c.width, c.height, c.content.String(), c.extGStates())
	return doc.build()
}

func (c *PDFCanvas) extGStates() string {
	if len(c.alphaStates) == 0 {
		return ""
	}
	alphas := make([]int, 0, len(c.alphaStates))
	for a := range c.alphaStates {
		alphas = append(alphas, int(a))
	}
	sort.Ints(alphas)

	var sb strings.Builder
	sb.WriteString("/ExtGState <<")
	for _, a := range alphas {
		op := float64(a) / 255
		sb.WriteString(fmt.Sprintf(" /%s << /ca %.3f /CA %.3f >>", c.alphaStates[uint8(a)], op, op))
	}
	sb.WriteString(" >>")
	return sb.String()
}

func pdfColor(col chart.Color) string {
	return fmt.Sprintf("%.3f %.3f %.3f", float64(col.R)/255, float64(col.G)/255, float64(col.B)/255)
}

// escapePDFString escapes special characters for PDF text strings.
func escapePDFString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "(", "\\(")
	s = strings.ReplaceAll(s, ")", "\\)")
	return s
}

// -----------------------------------------------------------------------------
// PDF Document Builder (Internal)
// -----------------------------------------------------------------------------

// pdfDocument assembles a single-page PDF file. Object numbers are fixed:
// 1 catalog, 2 pages, 3-4 fonts, 5 content stream, 6 page, 7 info.
type pdfDocument struct {
	opts    *PDFOptions
	stream  string
	page    string
	hasPage bool
}

func newPDFDocument(opts *PDFOptions) *pdfDocument {
	return &pdfDocument{opts: opts}
}

// setPage stores the page dictionary and its content stream.
func (doc *pdfDocument) setPage(width, height float64, content, extGState string) {
	var streamData []byte
	var filter string

	if doc.opts.Compress {
		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		zw.Write([]byte(content))
		zw.Close()
		streamData = buf.Bytes()
		filter = "/Filter /FlateDecode\n"
	} else {
		streamData = []byte(content)
	}

	doc.stream = fmt.Sprintf("<< /Length %d\n%s>>\nstream\n%s\nendstream", len(streamData), filter, streamData)
	doc.page = fmt.Sprintf("<< /Type /Page\n/Parent 2 0 R\n/MediaBox [0 0 %.2f %.2f]\n/Contents 5 0 R\n"+
		"/Resources << /Font << /F1 3 0 R /F2 4 0 R >> %s>>\n>>", width, height, extGStateEntry(extGState))
	doc.hasPage = true
}

func extGStateEntry(s string) string {
	if s == "" {
		return ""
	}
	return s + " "
}

// build generates the complete PDF file.
func (doc *pdfDocument) build() []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%%PDF-%s\n", PDFVersion))
	buf.WriteString("%\xE2\xE3\xCF\xD3\n") // Binary marker

	kids, count := "[]", 0
	if doc.hasPage {
		kids, count = "[6 0 R]", 1
	}

	objects := []string{
		"<< /Type /Catalog\n/Pages 2 0 R\n>>",
		fmt.Sprintf("<< /Type /Pages\n/Kids %s\n/Count %d\n>>", kids, count),
		"<< /Type /Font\n/Subtype /Type1\n/BaseFont /Helvetica\n/Encoding /WinAnsiEncoding\n>>",
		"<< /Type /Font\n/Subtype /Type1\n/BaseFont /Helvetica-Bold\n/Encoding /WinAnsiEncoding\n>>",
	}
	if doc.hasPage {
		objects = append(objects, doc.stream, doc.page)
	}

	infoObjNum := 0
	if doc.opts.IncludeMetadata {
		objects = append(objects, doc.buildInfoDict())
		infoObjNum = len(objects)
	}

	xref := make([]int, len(objects)+1)
	for i, obj := range objects {
		xref[i+1] = buf.Len()
		buf.WriteString(fmt.Sprintf("%d 0 obj\n%s\nendobj\n", i+1, obj))
	}

	xrefPos := buf.Len()
	buf.WriteString("xref\n")
	buf.WriteString(fmt.Sprintf("0 %d\n", len(objects)+1))
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objects); i++ {
		buf.WriteString(fmt.Sprintf("%010d 00000 n \n", xref[i]))
	}

	buf.WriteString("trailer\n")
	buf.WriteString(fmt.Sprintf("<< /Size %d\n/Root 1 0 R\n", len(objects)+1))
	if infoObjNum > 0 {
		buf.WriteString(fmt.Sprintf("/Info %d 0 R\n", infoObjNum))
	}
	buf.WriteString(">>\n")
	buf.WriteString("startxref\n")
	buf.WriteString(fmt.Sprintf("%d\n", xrefPos))
	buf.WriteString("%%EOF\n")

	return buf.Bytes()
}

// buildInfoDict creates the PDF Info dictionary.
func (doc *pdfDocument) buildInfoDict() string {
	var sb strings.Builder
	sb.WriteString("<<\n")

	if doc.opts.Title != "" {
		sb.WriteString(fmt.Sprintf("/Title (%s)\n", escapePDFString(doc.opts.Title)))
	}
	if doc.opts.Author != "" {
		sb.WriteString(fmt.Sprintf("/Author (%s)\n", escapePDFString(doc.opts.Author)))
	}
	if doc.opts.Subject != "" {
		sb.WriteString(fmt.Sprintf("/Subject (%s)\n", escapePDFString(doc.opts.Subject)))
	}
	sb.WriteString(fmt.Sprintf("/Producer (%s)\n", PDFProducer))
	if doc.opts.Version != "" {
		sb.WriteString(fmt.Sprintf("/Creator (tempchart %s)\n", escapePDFString(doc.opts.Version)))
	} else {
		sb.WriteString("/Creator (tempchart)\n")
	}

	created := doc.opts.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	dateStr := created.UTC().Format("D:20060102150405Z")
	sb.WriteString(fmt.Sprintf("/CreationDate (%s)\n", dateStr))
	sb.WriteString(fmt.Sprintf("/ModDate (%s)\n", dateStr))

	sb.WriteString(">>")
	return sb.String()
}
