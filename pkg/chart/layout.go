package chart

// Layout is the page geometry derived from a Config. Coordinates have their
// origin at the top-left corner of the page and y grows downward.
type Layout struct {
	PageWidth  float64 `json:"pageWidth"`
	PageHeight float64 `json:"pageHeight"`
	CellWidth  float64 `json:"cellWidth"`
	CellHeight float64 `json:"cellHeight"`
	Padding    float64 `json:"padding"`
	TitleWidth float64 `json:"titleWidth"`

	// PlotLeft and PlotRight bound the day columns, inside the title columns.
	PlotLeft  float64 `json:"plotLeft"`
	PlotRight float64 `json:"plotRight"`
	// Top and Bottom bound the grid vertically, inside the outer padding.
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`

	// TickTop and TickBottom are the y coordinates of the first and last tick.
	TickTop    float64 `json:"tickTop"`
	TickBottom float64 `json:"tickBottom"`

	// MiddleX is the x coordinate of the mid-chart tick labels.
	MiddleX float64 `json:"middleX"`
	// AxisBottom and FooterRule are the two separators framing the date row.
	AxisBottom float64 `json:"axisBottom"`
	FooterRule float64 `json:"footerRule"`
	// DateBaseline is the text baseline of the day numbers.
	DateBaseline float64 `json:"dateBaseline"`

	DayCount         int         `json:"dayCount"`
	TemperatureCount int         `json:"temperatureCount"`
	RowCount         int         `json:"rowCount"`
	PointRadius      float64     `json:"pointRadius"`
	Orientation      Orientation `json:"orientation"`
	Ticks            []Tick      `json:"ticks"`

	// hundredths of the top/bottom-most tick values
	lowValue, highValue int
}

// NewLayout validates cfg and derives the page geometry.
func NewLayout(cfg Config) (*Layout, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h := cfg.CellHeight
	count := cfg.TemperatureCount()
	pageHeight := cfg.PageHeight()

	l := &Layout{
		PageWidth:        cfg.PageWidth,
		PageHeight:       pageHeight,
		CellWidth:        cfg.CellWidth(),
		CellHeight:       h,
		Padding:          cfg.Padding,
		TitleWidth:       cfg.TitleWidth,
		PlotLeft:         cfg.Padding + cfg.TitleWidth,
		PlotRight:        cfg.PageWidth - cfg.Padding - cfg.TitleWidth,
		Top:              cfg.Padding,
		Bottom:           pageHeight - cfg.Padding,
		TickTop:          cfg.Padding + h*0.5,
		MiddleX:          cfg.PageWidth/2 + 6,
		AxisBottom:       cfg.Padding + float64(count)*h,
		DayCount:         cfg.DayCount,
		TemperatureCount: count,
		RowCount:         cfg.RowCount(),
		PointRadius:      cfg.PointRadius,
		Orientation:      cfg.Orientation,
	}
	l.TickBottom = l.TickTop + float64(count-1)*h
	l.FooterRule = l.AxisBottom + 3*h
	l.DateBaseline = l.AxisBottom + 1.5*h + 5

	l.Ticks = Ticks(cfg)
	for i := range l.Ticks {
		l.Ticks[i].Y = l.TickTop + float64(i)*h
	}

	first, last := l.Ticks[0].Value, l.Ticks[len(l.Ticks)-1].Value
	l.lowValue, l.highValue = first, last
	if first > last {
		l.lowValue, l.highValue = last, first
	}
	return l, nil
}

// MinTemp returns the lowest tick temperature in degrees.
func (l *Layout) MinTemp() float64 { return float64(l.lowValue) / 100 }

// MaxTemp returns the highest tick temperature in degrees.
func (l *Layout) MaxTemp() float64 { return float64(l.highValue) / 100 }

// YFor maps a temperature to its vertical page coordinate by linear
// interpolation between the tick bounds. In descending orientation higher
// temperatures get smaller y values; ascending mirrors the mapping.
func (l *Layout) YFor(temp float64) float64 {
	yAtMax, yAtMin := l.TickTop, l.TickBottom
	if l.Orientation == Ascending {
		yAtMax, yAtMin = l.TickBottom, l.TickTop
	}
	maxTemp, minTemp := l.MaxTemp(), l.MinTemp()
	if maxTemp == minTemp {
		return yAtMax
	}
	return (maxTemp-temp)*(yAtMin-yAtMax)/(maxTemp-minTemp) + yAtMax
}

// ColumnLeft returns the left edge of day column i (0-based).
func (l *Layout) ColumnLeft(i int) float64 {
	return l.PlotLeft + float64(i)*l.CellWidth
}

// ColumnCenter returns the horizontal center of day column i (0-based).
func (l *Layout) ColumnCenter(i int) float64 {
	return l.PlotLeft + (float64(i)+0.5)*l.CellWidth
}
