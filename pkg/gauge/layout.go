// Package gauge draws the semicircular BMI dial.
package gauge

import (
	"math"

	"github.com/charlie0129/bmi/pkg/bmi"
)

const (
	// DomainMax is the BMI value at the right end of the dial.
	DomainMax = 50.0

	DefaultWidth  = 200.0
	DefaultHeight = 120.0

	radius      = 80.0
	bandWidth   = 8.0
	needleWidth = 2.0
	needleInset = 10.0
	hubRadius   = 5.0
	labelOffset = 10.0
	labelRise   = 5.0
	fontSize    = 12.0
)

// Band is one colored section of the dial.
type Band struct {
	Min, Max float64
	Color    string
	Category bmi.Category
}

// Bands are the category sections, left to right.
var Bands = []Band{
	{Min: 0, Max: 18.5, Color: "3498db", Category: bmi.Underweight},
	{Min: 18.5, Max: 25, Color: "00b894", Category: bmi.Normal},
	{Min: 25, Max: 30, Color: "f39c12", Category: bmi.Overweight},
	{Min: 30, Max: DomainMax, Color: "e74c3c", Category: bmi.Obese},
}

// Point is a position in device pixels.
type Point struct {
	X, Y float64
}

// Arc is a band mapped onto the dial. Angles are radians, clockwise on
// screen from the positive x axis.
type Arc struct {
	Start, Delta float64
	Color        string
}

// Label is a piece of text centred on At.
type Label struct {
	Text string
	At   Point
}

// Layout is the complete geometry of one dial, in device pixels.
type Layout struct {
	// Value is the BMI as displayed, not clamped.
	Value float64

	PixelWidth, PixelHeight int
	PixelRatio              float64

	Center      Point
	Radius      float64
	BandWidth   float64
	Arcs        []Arc
	NeedleAngle float64
	NeedleTip   Point
	NeedleWidth float64
	HubRadius   float64
	FontSize    float64
	Labels      []Label
}

// AngleFor maps a BMI onto the upper semicircle: 0 is the left end (π) and
// DomainMax the right end (2π). Values are clamped to [0, DomainMax].
func AngleFor(value float64) float64 {
	if math.IsNaN(value) {
		value = 0
	}
	return math.Pi + clamp(value, 0, DomainMax)/DomainMax*math.Pi
}

// NewLayout computes the dial for value on a width x height css-pixel
// canvas shown at pixelRatio device pixels per css pixel.
func NewLayout(value, width, height, pixelRatio float64) Layout {
	if pixelRatio <= 0 || math.IsNaN(pixelRatio) {
		pixelRatio = 1
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	s := pixelRatio

	center := Point{X: width / 2 * s, Y: height * 0.8 * s}
	r := radius * s

	l := Layout{
		Value:       value,
		PixelWidth:  int(math.Round(width * s)),
		PixelHeight: int(math.Round(height * s)),
		PixelRatio:  s,
		Center:      center,
		Radius:      r,
		BandWidth:   bandWidth * s,
		NeedleAngle: AngleFor(value),
		NeedleWidth: needleWidth * s,
		HubRadius:   hubRadius * s,
		FontSize:    fontSize * s,
		Labels: []Label{
			{Text: "0", At: Point{X: center.X - r - labelOffset*s, Y: center.Y + labelRise*s}},
			{Text: "50", At: Point{X: center.X + r + labelOffset*s, Y: center.Y + labelRise*s}},
		},
	}

	for _, b := range Bands {
		start := AngleFor(b.Min)
		l.Arcs = append(l.Arcs, Arc{
			Start: start,
			Delta: AngleFor(b.Max) - start,
			Color: b.Color,
		})
	}

	length := r - needleInset*s
	l.NeedleTip = Point{
		X: center.X + length*math.Cos(l.NeedleAngle),
		Y: center.Y + length*math.Sin(l.NeedleAngle),
	}

	return l
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
