package export

import (
	"bytes"
	"io"
	"strings"

	"github.com/r3d91ll/tempchart/pkg/chart"
	cerrors "github.com/r3d91ll/tempchart/pkg/errors"
)

// Format identifies an output serialization.
type Format string

const (
	// FormatPDF is a single-page PDF 1.4 document; the default.
	FormatPDF Format = "pdf"
	// FormatSVG is a standalone SVG image.
	FormatSVG Format = "svg"
	// FormatPNG is a raster image painted with gg.
	FormatPNG Format = "png"
)

// Formats lists every supported format, primary first.
func Formats() []Format {
	return []Format{FormatPDF, FormatSVG, FormatPNG}
}

// ParseFormat resolves a case-insensitive format name. An empty name is PDF.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatPDF:
		return FormatPDF, nil
	case FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	}
	err := cerrors.New(cerrors.ErrRenderUnknownFormat, cerrors.CategoryRender, "unknown output format")
	return "", cerrors.AttachSuggestions(err.WithContext("format", name))
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string { return "." + string(f) }

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	default:
		return "application/pdf"
	}
}

// Canvas is a drawing surface that can serialize itself.
type Canvas interface {
	chart.Surface
	ContentType() string
	Encode(w io.Writer) error
}

// Options carries per-format settings for NewCanvas.
type Options struct {
	PDF     *PDFOptions
	SVG     *SVGOptions
	Version string
}

// NewCanvas creates a blank canvas of the given page size. A nil opts uses
// each format's defaults.
func NewCanvas(format Format, width, height float64, opts *Options) (Canvas, error) {
	if opts == nil {
		opts = &Options{}
	}
	switch format {
	case FormatPDF, "":
		pdf := opts.PDF
		if pdf == nil {
			pdf = DefaultPDFOptions()
			pdf.Version = opts.Version
		}
		return NewPDFCanvas(width, height, pdf), nil
	case FormatSVG:
		svg := opts.SVG
		if svg == nil {
			svg = DefaultSVGOptions()
			svg.Version = opts.Version
		}
		return NewSVGCanvas(width, height, svg), nil
	case FormatPNG:
		return NewPNGCanvas(width, height), nil
	}
	_, err := ParseFormat(string(format))
	return nil, err
}

// Render paints a chart onto a new canvas of the layout's page size and
// returns the encoded document.
func Render(format Format, layout *chart.Layout, data chart.ChartData, opts *Options) ([]byte, error) {
	canvas, err := NewCanvas(format, layout.PageWidth, layout.PageHeight, opts)
	if err != nil {
		return nil, err
	}
	chart.NewPainter(layout, data).Paint(canvas)

	var buf bytes.Buffer
	if err := canvas.Encode(&buf); err != nil {
		return nil, cerrors.RenderWrap(err, cerrors.ErrRenderEncodeFailed, "failed to encode chart").
			WithContext("format", string(format))
	}
	return buf.Bytes(), nil
}
