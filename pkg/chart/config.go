// Package chart generates synthetic daily temperature samples and lays them
// out on a printable single-page grid chart.
//
// The package is split the way the chart is produced: Generate builds the
// samples, NewLayout derives every coordinate from a Config, and Painter
// issues the drawing calls against a Surface.
package chart

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	cerrors "github.com/r3d91ll/tempchart/pkg/errors"
)

// Orientation selects which end of the temperature axis is drawn at the top.
type Orientation string

const (
	// Descending draws MaxTemp at the top of the page.
	Descending Orientation = "descending"
	// Ascending draws MinTemp at the top of the page.
	Ascending Orientation = "ascending"
)

// Config holds the constants controlling the chart layout.
// Temperatures are in degrees with two-decimal precision; they are scaled to
// integer hundredths before any tick arithmetic.
type Config struct {
	MinTemp       float64     `yaml:"min_temp" json:"minTemp"`
	MaxTemp       float64     `yaml:"max_temp" json:"maxTemp" validate:"gtfield=MinTemp"`
	StepTemp      float64     `yaml:"step_temp" json:"stepTemp" validate:"gt=0"`
	HighlightStep float64     `yaml:"highlight_step" json:"highlightStep" validate:"gt=0"`
	DayCount      int         `yaml:"day_count" json:"dayCount" validate:"gt=0"`
	CellHeight    float64     `yaml:"cell_height" json:"cellHeight" validate:"gt=0"`
	Padding       float64     `yaml:"padding" json:"padding" validate:"gte=0"`
	TitleWidth    float64     `yaml:"title_width" json:"titleWidth" validate:"gte=0"`
	PageWidth     float64     `yaml:"page_width" json:"pageWidth" validate:"gt=0"`
	FooterRows    int         `yaml:"footer_rows" json:"footerRows" validate:"gte=4"`
	Orientation   Orientation `yaml:"orientation" json:"orientation" validate:"oneof=descending ascending"`
	PointRadius   float64     `yaml:"point_radius" json:"pointRadius" validate:"gt=0"`

	// SampleMin and SampleMax bound the generated temperatures. Zero values
	// fall back to MinTemp and MaxTemp.
	SampleMin float64 `yaml:"sample_min" json:"sampleMin"`
	SampleMax float64 `yaml:"sample_max" json:"sampleMax"`
}

// Preset names.
const (
	PresetWide    = "wide"
	PresetCompact = "compact"
)

var presets = map[string]Config{
	PresetWide: {
		MinTemp:       32.00,
		MaxTemp:       42.00,
		StepTemp:      0.50,
		HighlightStep: 1.00,
		DayCount:      30,
		CellHeight:    40,
		Padding:       20,
		TitleWidth:    72,
		PageWidth:     2300,
		FooterRows:    11,
		Orientation:   Descending,
		PointRadius:   5,
		SampleMin:     35.20,
		SampleMax:     37.50,
	},
	PresetCompact: {
		MinTemp:       34.00,
		MaxTemp:       41.00,
		StepTemp:      0.25,
		HighlightStep: 1.00,
		DayCount:      14,
		CellHeight:    25,
		Padding:       25,
		TitleWidth:    72,
		PageWidth:     1200,
		FooterRows:    11,
		Orientation:   Ascending,
		PointRadius:   4,
		SampleMin:     35.50,
		SampleMax:     38.50,
	},
}

// DefaultConfig returns the wide preset.
func DefaultConfig() Config {
	return presets[PresetWide]
}

// Preset returns the named preset configuration.
func Preset(name string) (Config, error) {
	cfg, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Config{}, cerrors.Chartf(cerrors.ErrChartUnknownPreset, "unknown preset %q", name).
			WithContext("preset", name)
	}
	return cfg, nil
}

// PresetNames returns the available preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var validate = validator.New()

// Upper bounds on the derived grid.
const (
	MaxDayCount         = 366
	MaxTemperatureCount = 2000
	// MaxPageSize is the largest page side accepted, in points.
	MaxPageSize = 14400
	// maxTemperature bounds |MinTemp| and |MaxTemp| so the hundredths
	// scaling cannot overflow.
	maxTemperature = 1e6
	minCellSize    = 1
)

// Validate checks the invariants of the configuration, including the
// bounds of the derived tick count, page height and cell width.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok || len(ve) == 0 {
			return cerrors.Chart(cerrors.ErrChartInvalidConfig, "invalid chart configuration").WithCause(err)
		}
		fe := ve[0]
		return cerrors.Chartf(cerrors.ErrChartInvalidConfig, "%s fails %q constraint", fe.Field(), fe.Tag()).
			WithContext("field", fe.Field()).
			WithContext("value", fmt.Sprintf("%v", fe.Value())).
			WithCause(err)
	}

	if !(math.Abs(c.MinTemp) <= maxTemperature) {
		return invalidField("MinTemp", c.MinTemp, fmt.Sprintf("min_temp must lie within [-%g, %g]", maxTemperature, maxTemperature))
	}
	if !(math.Abs(c.MaxTemp) <= maxTemperature) {
		return invalidField("MaxTemp", c.MaxTemp, fmt.Sprintf("max_temp must lie within [-%g, %g]", maxTemperature, maxTemperature))
	}
	if c.DayCount > MaxDayCount {
		return invalidField("DayCount", c.DayCount, fmt.Sprintf("day_count must not exceed %d", MaxDayCount))
	}

	s := c.scaled()
	if s.step <= 0 {
		return invalidField("StepTemp", c.StepTemp, "step must be at least 0.01")
	}
	if s.highlight <= 0 {
		return invalidField("HighlightStep", c.HighlightStep, "highlight step must be at least 0.01")
	}
	if s.max <= s.min {
		return invalidField("MaxTemp", c.MaxTemp, "max_temp must be greater than min_temp at two-decimal precision")
	}
	if s.step > s.max-s.min {
		return invalidField("StepTemp", c.StepTemp, "step_temp must not exceed the temperature range")
	}
	if n := c.TemperatureCount(); n > MaxTemperatureCount {
		return invalidField("StepTemp", c.StepTemp,
			fmt.Sprintf("%d temperature ticks exceed the limit of %d", n, MaxTemperatureCount))
	}
	if c.PageWidth > MaxPageSize {
		return invalidField("PageWidth", c.PageWidth,
			fmt.Sprintf("page width must not exceed %d", MaxPageSize))
	}
	if w := c.CellWidth(); w < minCellSize {
		return invalidField("PageWidth", c.PageWidth,
			fmt.Sprintf("derived cell width %.2f is below %d unit", w, minCellSize))
	}
	if h := c.PageHeight(); h < minCellSize || h > MaxPageSize {
		return invalidField("CellHeight", c.CellHeight,
			fmt.Sprintf("derived page height %.0f is outside [%d, %d]", h, minCellSize, MaxPageSize))
	}

	lo, hi := c.SampleBand()
	if lo > hi {
		return invalidField("SampleMin", c.SampleMin, "sample_min must not exceed sample_max")
	}
	if lo < c.MinTemp || hi > c.MaxTemp {
		return invalidField("SampleMax", c.SampleMax, "sample band must lie within [min_temp, max_temp]")
	}
	return nil
}

func invalidField(field string, value interface{}, msg string) error {
	return cerrors.Chart(cerrors.ErrChartInvalidConfig, msg).
		WithContext("field", field).
		WithContext("value", fmt.Sprintf("%v", value))
}

// SampleBand returns the range generated temperatures are drawn from.
func (c Config) SampleBand() (lo, hi float64) {
	lo, hi = c.SampleMin, c.SampleMax
	if lo == 0 {
		lo = c.MinTemp
	}
	if hi == 0 {
		hi = c.MaxTemp
	}
	return lo, hi
}

// TemperatureCount is the number of ticks on the temperature axis.
func (c Config) TemperatureCount() int {
	s := c.scaled()
	if s.step <= 0 || s.max < s.min {
		return 0
	}
	return (s.max-s.min)/s.step + 1
}

// RowCount is the number of grid rows: one per tick plus the footer.
func (c Config) RowCount() int {
	return c.TemperatureCount() + c.FooterRows
}

// PageHeight is the derived page height, truncated to whole units.
func (c Config) PageHeight() float64 {
	return math.Trunc(c.Padding*2 + float64(c.RowCount())*c.CellHeight)
}

// CellWidth is the width of one day column.
func (c Config) CellWidth() float64 {
	if c.DayCount <= 0 {
		return 0
	}
	return (c.PageWidth - c.Padding*2 - c.TitleWidth*2) / float64(c.DayCount)
}

// scaledConfig holds temperatures as integer hundredths.
type scaledConfig struct {
	min, max, step, highlight int
}

func (c Config) scaled() scaledConfig {
	return scaledConfig{
		min:       toHundredths(c.MinTemp),
		max:       toHundredths(c.MaxTemp),
		step:      toHundredths(c.StepTemp),
		highlight: toHundredths(c.HighlightStep),
	}
}

func toHundredths(v float64) int {
	return int(math.Round(v * 100))
}
