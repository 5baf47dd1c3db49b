package maceq

import (
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// oneHot builds a numAtoms x numTypes indicator matrix from a type
// assignment per atom.
func oneHot(types []int, numTypes int) *mat.Dense {
	m := mat.NewDense(len(types), numTypes, nil)
	for i, t := range types {
		m.Set(i, t, 1)
	}
	return m
}

// diatomic is two atoms of the given types separated by d along z,
// bonded in both directions.
func diatomic(d float64, types []int, numTypes int, qTot float64) *Structure {
	return &Structure{
		Positions: mat.NewDense(2, 3, []float64{
			0, 0, 0,
			0, 0, d,
		}),
		NodeAttrs: oneHot(types, numTypes),
		Edges:     [][2]int{{0, 1}, {1, 0}},
		QTot:      qTot,
	}
}

// testRef builds reference parameters from the default scalar seeds.
func testRef(t *testing.T, numTypes int) *RefParams {
	t.Helper()
	ref, err := NewRefParams(numTypes, RefSeeds{
		A:     ScalarSeed(46.613),
		B:     ScalarSeed(3.980),
		C:     ScalarSeed(274.432),
		D:     ScalarSeed(0.5),
		Mu:    ScalarSeed(1.918),
		Sigma: ScalarSeed(0.25),
		Eta:   ScalarSeed(0.0107),
	}, rand.NewSource(1))
	if err != nil {
		t.Fatalf("NewRefParams: %v", err)
	}
	return ref
}

// solveBatch runs the charge equilibration over freshly built edge
// geometry.
func solveBatch(t *testing.T, ce *ChargeEquilibration, b *Batch, kappa []float64) *QEqResult {
	t.Helper()
	_, lengths := EdgeGeometry(b.Positions, b.Edges, b.Shifts)
	res, err := ce.Solve(b, kappa, lengths)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	return res
}
