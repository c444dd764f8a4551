package bmi

import (
	"fmt"
	"math"
)

// Unit is a measurement system.
type Unit string

const (
	// Metric is centimeters and kilograms.
	Metric Unit = "metric"
	// Imperial is feet and pounds.
	Imperial Unit = "imperial"
)

const (
	CentimetersPerFoot = 30.48
	PoundsPerKilogram  = 2.20462
)

// ParseUnit parses "metric" or "imperial".
func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case Metric, Imperial:
		return Unit(s), nil
	default:
		return "", fmt.Errorf("unknown unit %q, expected %q or %q", s, Metric, Imperial)
	}
}

func (u Unit) Valid() bool {
	return u == Metric || u == Imperial
}

// HeightLabel is the short height unit shown next to the input.
func (u Unit) HeightLabel() string {
	if u == Imperial {
		return "ft"
	}
	return "cm"
}

// WeightLabel is the short weight unit shown next to the input.
func (u Unit) WeightLabel() string {
	if u == Imperial {
		return "lb"
	}
	return "kg"
}

// Measurement is one height/weight reading in a given unit.
type Measurement struct {
	Height float64 `json:"height"`
	Weight float64 `json:"weight"`
	Unit   Unit    `json:"unit"`
}

// Convert returns m expressed in the target unit, with both fields rounded
// to 2 decimal places. It does not validate the values: NaN and zero go
// through unchanged and are rejected later by Calculate.
func Convert(m Measurement, to Unit) Measurement {
	if m.Unit == to {
		return m
	}

	switch to {
	case Imperial:
		return Measurement{
			Height: Round(m.Height/CentimetersPerFoot, 2),
			Weight: Round(m.Weight*PoundsPerKilogram, 2),
			Unit:   Imperial,
		}
	case Metric:
		return Measurement{
			Height: Round(m.Height*CentimetersPerFoot, 2),
			Weight: Round(m.Weight/PoundsPerKilogram, 2),
			Unit:   Metric,
		}
	default:
		return m
	}
}

// Round rounds x to the given number of decimal places, half away from zero.
func Round(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	p := math.Pow10(places)
	return math.Round(x*p) / p
}
