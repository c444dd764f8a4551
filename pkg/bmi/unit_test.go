package bmi

import (
	"math"
	"testing"
)

func TestConvert(t *testing.T) {
	got := Convert(Measurement{Height: 170, Weight: 65, Unit: Metric}, Imperial)
	want := Measurement{Height: 5.58, Weight: 143.3, Unit: Imperial}
	if got != want {
		t.Errorf("Convert to imperial = %+v, want %+v", got, want)
	}

	got = Convert(want, Metric)
	want = Measurement{Height: 170.08, Weight: 65, Unit: Metric}
	if got != want {
		t.Errorf("Convert to metric = %+v, want %+v", got, want)
	}
}

func TestConvertSameUnitIsNoop(t *testing.T) {
	m := Measurement{Height: 170.123, Weight: 65.456, Unit: Metric}
	if got := Convert(m, Metric); got != m {
		t.Errorf("Convert(m, Metric) = %+v, want %+v", got, m)
	}
}

func TestConvertPropagatesInvalid(t *testing.T) {
	got := Convert(Measurement{Height: math.NaN(), Weight: 0, Unit: Metric}, Imperial)
	if !math.IsNaN(got.Height) || got.Weight != 0 || got.Unit != Imperial {
		t.Fatalf("Convert = %+v", got)
	}
	if _, ok := Calculate(got); ok {
		t.Errorf("converted invalid measurement produced a result")
	}
}

func TestConvertRoundTrip(t *testing.T) {
	// Rounding to 2 decimals in feet can move the height by up to
	// 0.005 ft (~0.15 cm); weights stay well within 0.1.
	const heightTolerance = 0.005*CentimetersPerFoot + 0.005
	const weightTolerance = 0.1

	for h := 100.0; h <= 220; h += 0.7 {
		for w := 30.0; w <= 200; w += 3.3 {
			orig := Measurement{Height: h, Weight: w, Unit: Metric}
			back := Convert(Convert(orig, Imperial), Metric)
			if d := math.Abs(back.Height - h); d > heightTolerance {
				t.Fatalf("height %v came back as %v", h, back.Height)
			}
			if d := math.Abs(back.Weight - w); d > weightTolerance {
				t.Fatalf("weight %v came back as %v", w, back.Weight)
			}
		}
	}
}

func TestParseUnit(t *testing.T) {
	for _, s := range []string{"metric", "imperial"} {
		u, err := ParseUnit(s)
		if err != nil || string(u) != s {
			t.Errorf("ParseUnit(%q) = %q, %v", s, u, err)
		}
	}
	if _, err := ParseUnit("stone"); err == nil {
		t.Errorf("ParseUnit(stone) should fail")
	}
}

func TestUnitLabels(t *testing.T) {
	if Metric.HeightLabel() != "cm" || Metric.WeightLabel() != "kg" {
		t.Errorf("metric labels = %s/%s", Metric.HeightLabel(), Metric.WeightLabel())
	}
	if Imperial.HeightLabel() != "ft" || Imperial.WeightLabel() != "lb" {
		t.Errorf("imperial labels = %s/%s", Imperial.HeightLabel(), Imperial.WeightLabel())
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		x      float64
		places int
		want   float64
	}{
		{22.49134948, 1, 22.5},
		{22.44, 1, 22.4},
		{-2.25, 1, -2.3},
		{5.5774, 2, 5.58},
		{143.30030, 2, 143.3},
	}
	for _, tt := range tests {
		if got := Round(tt.x, tt.places); got != tt.want {
			t.Errorf("Round(%v, %d) = %v, want %v", tt.x, tt.places, got, tt.want)
		}
	}
}
