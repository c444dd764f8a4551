package gauge

import (
	"bytes"
	"image/png"
	"math"
	"strings"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAngleFor(t *testing.T) {
	tests := []struct {
		value float64
		want  float64
	}{
		{0, math.Pi},
		{25, 1.5 * math.Pi},
		{50, 2 * math.Pi},
		{-3, math.Pi},
		{72.4, 2 * math.Pi},
		{math.NaN(), math.Pi},
	}
	for _, tt := range tests {
		if got := AngleFor(tt.value); !almostEqual(got, tt.want) {
			t.Errorf("AngleFor(%v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestNewLayoutBands(t *testing.T) {
	l := NewLayout(22.5, DefaultWidth, DefaultHeight, 1)

	if len(l.Arcs) != len(Bands) {
		t.Fatalf("got %d arcs, want %d", len(l.Arcs), len(Bands))
	}
	// Bands are contiguous and cover the whole semicircle.
	if !almostEqual(l.Arcs[0].Start, math.Pi) {
		t.Errorf("first arc starts at %v", l.Arcs[0].Start)
	}
	total := 0.0
	for i, a := range l.Arcs {
		if i > 0 {
			prev := l.Arcs[i-1]
			if !almostEqual(prev.Start+prev.Delta, a.Start) {
				t.Errorf("arc %d does not start where arc %d ends", i, i-1)
			}
		}
		total += a.Delta
	}
	if !almostEqual(total, math.Pi) {
		t.Errorf("arcs span %v, want π", total)
	}
	if !almostEqual(l.Arcs[1].Start, math.Pi+18.5/50*math.Pi) {
		t.Errorf("normal band starts at %v", l.Arcs[1].Start)
	}
}

func TestNewLayoutNeedle(t *testing.T) {
	l := NewLayout(25, DefaultWidth, DefaultHeight, 1)
	// At the middle of the domain the needle points straight up.
	if !almostEqual(l.NeedleTip.X, l.Center.X) || !almostEqual(l.NeedleTip.Y, l.Center.Y-70) {
		t.Errorf("needle tip = %+v, center = %+v", l.NeedleTip, l.Center)
	}

	low := NewLayout(0, DefaultWidth, DefaultHeight, 1)
	if !almostEqual(low.NeedleTip.X, low.Center.X-70) {
		t.Errorf("BMI 0 needle tip = %+v", low.NeedleTip)
	}

	high := NewLayout(83, DefaultWidth, DefaultHeight, 1)
	if high.Value != 83 {
		t.Errorf("display value was clamped to %v", high.Value)
	}
	if !almostEqual(high.NeedleAngle, 2*math.Pi) {
		t.Errorf("needle angle for 83 = %v, want 2π", high.NeedleAngle)
	}
}

func TestNewLayoutPixelRatio(t *testing.T) {
	one := NewLayout(22.5, 200, 120, 1)
	two := NewLayout(22.5, 200, 120, 2)

	if two.PixelWidth != 400 || two.PixelHeight != 240 {
		t.Errorf("size at 2x = %dx%d", two.PixelWidth, two.PixelHeight)
	}
	if !almostEqual(two.Radius, 2*one.Radius) || !almostEqual(two.BandWidth, 2*one.BandWidth) {
		t.Errorf("strokes not scaled: %+v", two)
	}
	if !almostEqual(two.Center.Y, 2*one.Center.Y) {
		t.Errorf("center not scaled: %+v vs %+v", two.Center, one.Center)
	}

	fallback := NewLayout(22.5, 0, -1, 0)
	if fallback.PixelRatio != 1 || fallback.PixelWidth != int(DefaultWidth) || fallback.PixelHeight != int(DefaultHeight) {
		t.Errorf("fallback layout = %+v", fallback)
	}
}

func TestRenderPNG(t *testing.T) {
	l := NewLayout(22.5, 200, 120, 2)

	var a, b bytes.Buffer
	if err := Render(&a, PNG, l); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if err := Render(&b, PNG, l); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Errorf("rendering the same layout twice gave different images")
	}

	img, err := png.Decode(bytes.NewReader(a.Bytes()))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if got := img.Bounds().Dx(); got != 400 {
		t.Errorf("width = %d, want 400", got)
	}
	if got := img.Bounds().Dy(); got != 240 {
		t.Errorf("height = %d, want 240", got)
	}
}

func TestRenderSVG(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, SVG, NewLayout(31, 200, 120, 1)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Errorf("output is not an SVG document: %.80s", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"png", "svg"} {
		if f, err := ParseFormat(s); err != nil || string(f) != s {
			t.Errorf("ParseFormat(%q) = %q, %v", s, f, err)
		}
	}
	if _, err := ParseFormat("gif"); err == nil {
		t.Errorf("ParseFormat(gif) should fail")
	}
	if SVG.ContentType() != "image/svg+xml" || PNG.ContentType() != "image/png" {
		t.Errorf("unexpected content types")
	}
}
