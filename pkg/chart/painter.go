package chart

import "strconv"

// Palette and type sizes used by the painter.
var (
	shadeColor      = ParseHex("#0D000000")
	gridColor       = ParseHex("#D4D4D4")
	frameColor      = ParseHex("#C2C2C2")
	majorLineColor  = ParseHex("#EFEFEF")
	separatorColor  = ParseHex("#D4D4D4")
	seriesColor     = ParseHex("#23D0B9")
	labelColor      = Black
	boldLabelFont   = Font{Size: 16, Bold: true, Color: labelColor}
	normalLabelFont = Font{Size: 14, Color: labelColor}
)

const (
	tickMarkLength = 8
	frameWidth     = 1.5
	seriesWidth    = 1.5
	digitNudge     = 4
)

// Painter draws a chart for one layout and one sample sequence.
type Painter struct {
	layout *Layout
	data   ChartData
}

// NewPainter returns a painter for the given layout and samples.
func NewPainter(layout *Layout, data ChartData) *Painter {
	return &Painter{layout: layout, data: data}
}

// Paint issues every drawing step in order: background, border, y-axis,
// date row, temperature series.
func (p *Painter) Paint(s Surface) {
	p.PaintBackground(s)
	p.PaintBorder(s)
	p.PaintYAxis(s)
	p.PaintDates(s)
	p.PaintSeries(s)
}

// PaintBackground draws the shaded footer rows, the alternating day columns,
// the cell grid and the frame around the plot region.
func (p *Painter) PaintBackground(s Surface) {
	l := p.layout
	h := l.CellHeight
	startX, endX := l.PlotLeft, l.PlotRight
	startY, endY := l.Top, l.Bottom

	shade := Style{Color: shadeColor, Mode: Fill}
	blank := Style{Color: White, Mode: Fill}
	grid := Style{Color: gridColor, Width: 1, Mode: Stroke}

	for i := l.TemperatureCount + 2; i < l.RowCount-1; i++ {
		if i%2 == 0 {
			s.Rect(startX-l.TitleWidth, startY+float64(i+1)*h, endX+l.TitleWidth, startY+float64(i+2)*h, shade)
		}
	}

	for i := 0; i < l.DayCount; i++ {
		st := blank
		if i%2 == 0 {
			st = shade
		}
		s.Rect(l.ColumnLeft(i), startY, l.ColumnLeft(i+1), endY, st)
	}

	for i := 0; i <= l.DayCount; i++ {
		x := l.ColumnLeft(i)
		s.Line(x, startY, x, endY, grid)
	}

	for i := 0; i < l.RowCount; i++ {
		offset, inset := 0.5, 0.0
		if i >= l.TemperatureCount {
			offset, inset = 1, l.TitleWidth
		}
		y := startY + (float64(i)+offset)*h
		s.Line(startX-inset, y, endX+inset, y, grid)
	}

	s.Rect(startX, startY, endX, endY, Style{Color: frameColor, Width: frameWidth, Mode: Stroke})
}

// PaintBorder frames the whole page inside the outer padding.
func (p *Painter) PaintBorder(s Surface) {
	l := p.layout
	s.Rect(l.Padding, l.Padding, l.PageWidth-l.Padding, l.PageHeight-l.Padding,
		Style{Color: frameColor, Width: frameWidth, Mode: Stroke})
}

// PaintYAxis draws the tick marks and labels in the left title column, the
// right title column and mid-chart, plus the two separators that frame the
// date row.
func (p *Painter) PaintYAxis(s Surface) {
	l := p.layout
	left := l.Padding
	right := l.PlotRight

	mark := Style{Color: frameColor, Width: 1, Mode: Stroke}
	major := Style{Color: majorLineColor, Width: 2, Mode: Stroke}

	for _, t := range l.Ticks {
		y := t.Y
		if t.Major {
			s.Line(l.PlotLeft, y, right, y, major)
		}
		for _, x := range []float64{left, right} {
			s.Line(x, y, x+tickMarkLength, y, mark)
			p.tickLabel(s, t, x+14, x+38, y)
			s.Line(x+l.TitleWidth-tickMarkLength, y, x+l.TitleWidth, y, mark)
		}
		p.tickLabel(s, t, l.MiddleX, l.MiddleX+20, y)
	}

	sep := Style{Color: separatorColor, Width: 2, Mode: Stroke}
	s.Line(left, l.AxisBottom, right+l.TitleWidth, l.AxisBottom, sep)
	s.Line(left, l.FooterRule, right+l.TitleWidth, l.FooterRule, sep)
}

func (p *Painter) tickLabel(s Surface, t Tick, majorX, minorX, y float64) {
	if t.Major {
		s.Text(t.Label, majorX, y+6, boldLabelFont)
		return
	}
	s.Text(t.Label, minorX, y+4, normalLabelFont)
}

// PaintDates writes the 1-based day number under each column.
func (p *Painter) PaintDates(s Surface) {
	l := p.layout
	for i := 0; i < l.DayCount; i++ {
		label := strconv.Itoa(i + 1)
		x := l.ColumnCenter(i) - float64(digitNudge*len(label))
		s.Text(label, x, l.DateBaseline, normalLabelFont)
	}
}

// PaintSeries plots one filled circle per sample and joins consecutive
// samples with a line segment. Samples beyond the day columns are ignored.
func (p *Painter) PaintSeries(s Surface) {
	l := p.layout
	st := Style{Color: seriesColor, Width: seriesWidth, Mode: FillStroke}

	n := p.data.Len()
	if n > l.DayCount {
		n = l.DayCount
	}

	var prevX, prevY float64
	for i := 0; i < n; i++ {
		x := l.ColumnCenter(i)
		y := l.YFor(p.data.At(i).Temperature)
		s.Circle(x, y, l.PointRadius, st)
		if i > 0 {
			s.Line(prevX, prevY, x, y, st)
		}
		prevX, prevY = x, y
	}
}
