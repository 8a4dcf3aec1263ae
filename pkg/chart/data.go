package chart

import (
	"math/rand"
	"time"

	cerrors "github.com/r3d91ll/tempchart/pkg/errors"
)

// DateLayout is the format of Sample.DateString.
const DateLayout = "2006-01-02"

// Sample is one daily temperature reading.
type Sample struct {
	Date        time.Time `json:"date"`
	Temperature float64   `json:"temperature"`
}

// DateString returns the sample date as yyyy-MM-dd.
func (s Sample) DateString() string {
	return s.Date.Format(DateLayout)
}

// ChartData is an immutable ordered sequence of samples.
type ChartData struct {
	samples []Sample
}

// NewChartData copies samples into a ChartData value.
func NewChartData(samples []Sample) ChartData {
	cp := make([]Sample, len(samples))
	copy(cp, samples)
	return ChartData{samples: cp}
}

// Len returns the number of samples.
func (d ChartData) Len() int { return len(d.samples) }

// At returns sample i.
func (d ChartData) At(i int) Sample { return d.samples[i] }

// Samples returns a copy of the samples.
func (d ChartData) Samples() []Sample {
	cp := make([]Sample, len(d.samples))
	copy(cp, d.samples)
	return cp
}

// Dates returns the sample dates formatted as yyyy-MM-dd.
func (d ChartData) Dates() []string {
	out := make([]string, len(d.samples))
	for i, s := range d.samples {
		out[i] = s.DateString()
	}
	return out
}

// Temperatures returns the sample temperatures in order.
func (d ChartData) Temperatures() []float64 {
	out := make([]float64, len(d.samples))
	for i, s := range d.samples {
		out[i] = s.Temperature
	}
	return out
}

// TemperatureSource produces the next temperature reading.
type TemperatureSource interface {
	Next() float64
}

// SourceFunc adapts a function to TemperatureSource.
type SourceFunc func() float64

// Next implements TemperatureSource.
func (f SourceFunc) Next() float64 { return f() }

// UniformSource draws temperatures uniformly from [Low, High].
type UniformSource struct {
	Low, High float64
	rng       *rand.Rand
}

// NewUniformSource returns a uniform source over [low, high]. A nil rng is
// replaced by one seeded from the current time.
func NewUniformSource(low, high float64, rng *rand.Rand) *UniformSource {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &UniformSource{Low: low, High: high, rng: rng}
}

// Next implements TemperatureSource.
func (u *UniformSource) Next() float64 {
	return u.Low + u.rng.Float64()*(u.High-u.Low)
}

// SequenceSource replays fixed values, repeating the last one when exhausted.
type SequenceSource struct {
	values []float64
	pos    int
}

// NewSequenceSource returns a source replaying values in order.
func NewSequenceSource(values ...float64) *SequenceSource {
	return &SequenceSource{values: values}
}

// Next implements TemperatureSource.
func (s *SequenceSource) Next() float64 {
	if len(s.values) == 0 {
		return 0
	}
	if s.pos >= len(s.values) {
		return s.values[len(s.values)-1]
	}
	v := s.values[s.pos]
	s.pos++
	return v
}

// Generate returns n samples on consecutive calendar days beginning at the
// date of start, with temperatures taken from src.
func Generate(start time.Time, n int, src TemperatureSource) (ChartData, error) {
	if n < 1 {
		return ChartData{}, cerrors.Chartf(cerrors.ErrChartNoSamples, "sample count must be at least 1, got %d", n)
	}
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	samples := make([]Sample, n)
	for i := range samples {
		samples[i] = Sample{
			Date:        day.AddDate(0, 0, i),
			Temperature: src.Next(),
		}
	}
	return ChartData{samples: samples}, nil
}

// GenerateFor generates cfg.DayCount samples drawn uniformly from the
// configured sample band.
func GenerateFor(cfg Config, start time.Time, rng *rand.Rand) (ChartData, error) {
	lo, hi := cfg.SampleBand()
	return Generate(start, cfg.DayCount, NewUniformSource(lo, hi, rng))
}
