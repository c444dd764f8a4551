package gauge

import (
	"fmt"
	"io"
	"math"

	pkgerrors "github.com/pkg/errors"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Format is an output image format.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// ParseFormat accepts "png" or "svg".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case PNG, SVG:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown gauge format %q", s)
	}
}

// ContentType is the MIME type of f.
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

var (
	backgroundColor = drawing.Color{R: 0, G: 184, B: 148, A: 26}
	needleColor     = drawing.ColorWhite
	labelColor      = drawing.Color{R: 255, G: 255, B: 255, A: 153}
)

// Render draws l to w. Every call starts from a blank canvas, so the same
// layout always produces the same image.
func Render(w io.Writer, f Format, l Layout) error {
	provider := chart.PNG
	if f == SVG {
		provider = chart.SVG
	}

	r, err := provider(l.PixelWidth, l.PixelHeight)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to create gauge canvas")
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return pkgerrors.Wrap(err, "failed to load gauge font")
	}

	cx, cy := px(l.Center.X), px(l.Center.Y)

	// Background wash.
	r.SetFillColor(backgroundColor)
	r.SetStrokeWidth(0)
	r.MoveTo(cx, cy)
	r.ArcTo(cx, cy, l.Radius, l.Radius, math.Pi, math.Pi)
	r.Close()
	r.Fill()

	// Category bands.
	for _, a := range l.Arcs {
		r.ResetStyle()
		r.SetStrokeColor(drawing.ColorFromHex(a.Color))
		r.SetStrokeWidth(l.BandWidth)
		r.ArcTo(cx, cy, l.Radius, l.Radius, a.Start, a.Delta)
		r.Stroke()
	}

	// Needle and hub.
	r.ResetStyle()
	r.SetStrokeColor(needleColor)
	r.SetStrokeWidth(l.NeedleWidth)
	r.MoveTo(cx, cy)
	r.LineTo(px(l.NeedleTip.X), px(l.NeedleTip.Y))
	r.Stroke()

	r.ResetStyle()
	r.SetFillColor(needleColor)
	r.SetStrokeColor(needleColor)
	r.SetStrokeWidth(0)
	r.Circle(l.HubRadius, cx, cy)
	r.Fill()

	// Range labels.
	r.ResetStyle()
	r.SetFont(font)
	r.SetFontSize(l.FontSize)
	r.SetFontColor(labelColor)
	for _, label := range l.Labels {
		box := r.MeasureText(label.Text)
		r.Text(label.Text, px(label.At.X)-box.Width()/2, px(label.At.Y))
	}

	if err := r.Save(w); err != nil {
		return pkgerrors.Wrap(err, "failed to encode gauge")
	}
	return nil
}

func px(v float64) int {
	return int(math.Round(v))
}
