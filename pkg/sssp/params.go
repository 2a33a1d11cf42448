package sssp

import (
	"math"
	"math/bits"
)

// Params are the recursion parameters derived from the vertex count n:
//
//	K      = max(1, ⌊(log₂ n)^(1/3)⌋)
//	T      = max(1, ⌊(log₂ n)^(2/3)⌋)
//	Levels = ⌈log₂ n / T⌉
type Params struct {
	K      int
	T      int
	Levels int
}

// DeriveParams computes the recursion parameters for a graph with n vertices.
func DeriveParams(n int) Params {
	if n <= 1 {
		return Params{K: 1, T: 1, Levels: 0}
	}
	logN := math.Log2(float64(n))
	k := max(1, floorRoot(math.Cbrt(logN)))
	t := max(1, floorRoot(math.Pow(logN, 2.0/3.0)))
	levels := int(math.Ceil(logN / float64(t)))
	return Params{K: k, T: t, Levels: levels}
}

// floorRoot floors x, absorbing the error of fractional powers that land a
// hair below an exact integer, such as Pow(8, 2.0/3.0) falling just under 4.
func floorRoot(x float64) int {
	return int(math.Floor(x + 1e-9))
}

// blockSize returns M = 2^((level-1)·T) for a frame at level ≥ 1.
func (p Params) blockSize(level int) int {
	return pow2Capped((level - 1) * p.T)
}

// settleLimit returns K·2^(level·T), saturating at math.MaxInt.
func (p Params) settleLimit(level int) int {
	base := pow2Capped(level * p.T)
	hi, lo := bits.Mul64(uint64(base), uint64(p.K))
	if hi != 0 || lo > math.MaxInt {
		return math.MaxInt
	}
	return int(lo)
}

// pow2Capped returns 2^e, saturating at 2^62.
func pow2Capped(e int) int {
	switch {
	case e <= 0:
		return 1
	case e >= 62:
		return 1 << 62
	default:
		return 1 << e
	}
}
