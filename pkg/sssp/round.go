package sssp

import "math"

// DefaultPrecision is the number of decimal places distances are rounded to
// unless WithPrecision says otherwise.
const DefaultPrecision = 9

// maxExactScaled bounds x*scale for which math.Round still has fractional
// digits to remove.
const maxExactScaled = 1 << 52

// rounder applies one rounding policy to every computed distance of a run.
// The zero value leaves distances untouched.
type rounder struct {
	scale float64
}

func newRounder(digits int) rounder {
	if digits < 0 {
		return rounder{}
	}
	return rounder{scale: math.Pow10(digits)}
}

func (r rounder) enabled() bool { return r.scale != 0 }

func (r rounder) round(x float64) float64 {
	if r.scale == 0 {
		return x
	}
	scaled := x * r.scale
	if math.IsInf(scaled, 0) || math.IsNaN(scaled) || math.Abs(scaled) >= maxExactScaled {
		return x
	}
	return math.Round(scaled) / r.scale
}
