package bmi

import "math"

// Category is a BMI classification band.
type Category string

const (
	Underweight Category = "underweight"
	Normal      Category = "normal"
	Overweight  Category = "overweight"
	Obese       Category = "obese"
)

const (
	// IdealMin and IdealMax are the BMI values used for the ideal weight range.
	IdealMin = 18.5
	IdealMax = 24.9

	imperialFactor = 703
	inchesPerFoot  = 12
)

// CategoryOf classifies a BMI value. Lower bounds are inclusive.
func CategoryOf(bmi float64) Category {
	switch {
	case bmi < 18.5:
		return Underweight
	case bmi < 25:
		return Normal
	case bmi < 30:
		return Overweight
	default:
		return Obese
	}
}

// Emoji is the face shown next to the category label.
func (c Category) Emoji() string {
	switch c {
	case Underweight:
		return "😔"
	case Normal:
		return "😊"
	case Overweight:
		return "😐"
	default:
		return "😟"
	}
}

// LabelKey is the translation key of the category name.
func (c Category) LabelKey() string {
	return "bmi." + string(c)
}

// TipKey is the translation key of the health tip for the category.
func (c Category) TipKey() string {
	switch c {
	case Underweight:
		return "bmi.tipsUnderweight"
	case Normal:
		return "bmi.tipsNormal"
	case Overweight:
		return "bmi.tipsOverweight"
	default:
		return "bmi.tipsObese"
	}
}

// WeightRange is a closed weight interval in the unit of the measurement.
type WeightRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Result is the outcome of one calculation.
type Result struct {
	BMI         float64     `json:"bmi"`
	Category    Category    `json:"category"`
	Ideal       WeightRange `json:"idealWeight"`
	Measurement Measurement `json:"measurement"`
}

// Calculate computes the BMI of m. It returns false when height or weight is
// missing, non-positive or not finite, or when the unit is unknown; callers
// should hide any result they are showing in that case.
func Calculate(m Measurement) (Result, bool) {
	if !positive(m.Height) || !positive(m.Weight) || !m.Unit.Valid() {
		return Result{}, false
	}

	// Tiny ratios round to 0.0 and are still a result. Only an overflowing
	// ratio has no value to show.
	value := Round(raw(m.Height, m.Weight, m.Unit), 1)
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return Result{}, false
	}

	return Result{
		BMI:      value,
		Category: CategoryOf(value),
		Ideal: WeightRange{
			Min: Round(WeightAt(IdealMin, m.Height, m.Unit), 1),
			Max: Round(WeightAt(IdealMax, m.Height, m.Unit), 1),
		},
		Measurement: m,
	}, true
}

// WeightAt inverts the BMI formula: it returns the weight that gives bmi at
// the given height.
func WeightAt(bmi, height float64, u Unit) float64 {
	if u == Imperial {
		in := height * inchesPerFoot
		return bmi * in * in / imperialFactor
	}
	m := height / 100
	return bmi * m * m
}

func raw(height, weight float64, u Unit) float64 {
	if u == Imperial {
		in := height * inchesPerFoot
		return weight / (in * in) * imperialFactor
	}
	m := height / 100
	return weight / (m * m)
}

func positive(x float64) bool {
	return x > 0 && !math.IsInf(x, 0) && !math.IsNaN(x)
}
