package maceq

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// value of the taper on the undamped plateau below rIn
var tanh1Cubed = math.Pow(math.Tanh(1), 3)

// Taper is the smooth cutoff multiplying pairwise interactions. It is
// tanh(1)^3 on (0, rIn), decays as tanh(1-(r-rIn)/(rMax-rIn))^3 on
// [rIn, rMax], and is zero at or beyond rMax and for non-positive r.
// The zero branch beyond rMax also covers the 1/eps placeholder used
// for non-bonded pairs in the distance matrix.
func Taper(r, rMax, rIn float64) float64 {
	switch {
	case r <= 0:
		return 0
	case r < rIn:
		return tanh1Cubed
	case r <= rMax:
		t := math.Tanh(1 - (r-rIn)/(rMax-rIn))
		return t * t * t
	default:
		return 0
	}
}

// TaperMatrix applies Taper element-wise to a distance matrix.
func TaperMatrix(r *mat.Dense, rMax, rIn float64) *mat.Dense {
	n, c := r.Dims()
	ret := mat.NewDense(n, c, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < c; j++ {
			ret.Set(i, j, Taper(r.At(i, j), rMax, rIn))
		}
	}
	return ret
}

// ValidateCutoff rejects degenerate cutoff radii up front instead of
// letting the taper divide by zero at evaluation time.
func ValidateCutoff(rMax, rIn float64) error {
	if rIn <= 0 || rMax <= rIn {
		return ErrBadCutoff
	}
	return nil
}
