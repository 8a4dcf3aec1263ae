package chart

import (
	"fmt"
)

// Tick is one labeled gridline position on the temperature axis.
type Tick struct {
	// Value is the temperature in hundredths of a degree.
	Value int `json:"value"`
	// Major ticks fall on a multiple of the highlight step.
	Major bool `json:"major"`
	// Label is the text drawn next to the tick.
	Label string `json:"label"`
	// Y is the vertical page coordinate; set by NewLayout.
	Y float64 `json:"y"`
}

// Temperature returns the tick value in degrees.
func (t Tick) Temperature() float64 {
	return float64(t.Value) / 100
}

// Ticks returns the temperature axis ticks in drawing order (top to bottom).
// Iteration runs over integer hundredths so the tick count never depends on
// floating-point accumulation.
func Ticks(cfg Config) []Tick {
	s := cfg.scaled()
	if s.step <= 0 || s.highlight <= 0 || s.max < s.min {
		return nil
	}

	ticks := make([]Tick, 0, (s.max-s.min)/s.step+1)
	add := func(v int) {
		major := IsMajor(v, s.highlight)
		ticks = append(ticks, Tick{Value: v, Major: major, Label: tickLabel(v, major)})
	}

	if cfg.Orientation == Ascending {
		for v := s.min; v <= s.max; v += s.step {
			add(v)
		}
	} else {
		for v := s.max; v >= s.min; v -= s.step {
			add(v)
		}
	}
	return ticks
}

// IsMajor reports whether value (hundredths) is a multiple of highlight.
func IsMajor(value, highlight int) bool {
	if highlight <= 0 {
		return false
	}
	return floorMod(value, highlight) == 0
}

// tickLabel formats a major tick with two decimals and a minor tick as its
// fractional hundredths, e.g. 3250 -> ".50".
func tickLabel(value int, major bool) string {
	if major {
		return fmt.Sprintf("%.2f", float64(value)/100)
	}
	if value < 0 {
		value = -value
	}
	return fmt.Sprintf(".%02d", value%100)
}

func floorMod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
