package maceq

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

func TestPolynomialCutoff(t *testing.T) {
	if got := PolynomialCutoff(0, 5); got != 1 {
		t.Errorf("got %v at x=0, wanted 1\n", got)
	}
	if got := PolynomialCutoff(1, 5); got != 0 {
		t.Errorf("got %v at x=1, wanted 0\n", got)
	}
	if got := PolynomialCutoff(1.5, 5); got != 0 {
		t.Errorf("got %v beyond x=1, wanted 0\n", got)
	}
	// smooth monotone decay on [0,1]
	prev := 1.0
	for x := 0.05; x < 1; x += 0.05 {
		cur := PolynomialCutoff(x, 5)
		if cur > prev {
			t.Fatalf("envelope rises at x=%v: %v > %v\n", x, cur, prev)
		}
		prev = cur
	}
}

func TestBesselBasis(t *testing.T) {
	bb := BesselBasis{RMax: 6, NumBessel: 4, P: 5}
	if bb.Eval(nil) != nil {
		t.Errorf("wanted nil features for no edges\n")
	}
	feats := bb.Eval([]float64{1.0, 3.0})
	r, c := feats.Dims()
	if r != 2 || c != 4 {
		t.Fatalf("got %dx%d features, wanted 2x4\n", r, c)
	}
	// first channel at r: sqrt(2/rMax) * sin(pi r / rMax)/r * envelope
	want := math.Sqrt(2.0/6) * math.Sin(math.Pi/6) * PolynomialCutoff(1.0/6, 5)
	if got := feats.At(0, 0); math.Abs(got-want) > 1e-12 {
		t.Errorf("got %v, wanted %v\n", got, want)
	}
}

func TestSphericalHarmonics(t *testing.T) {
	var sh SphericalHarmonics
	if sh.Eval(nil) != nil {
		t.Errorf("wanted nil attributes for no edges\n")
	}
	vectors := mat.NewDense(1, 3, []float64{0, 0, 2.0})
	attrs := sh.Eval(vectors)
	if got := attrs.At(0, 0); got != 1 {
		t.Errorf("got constant channel %v, wanted 1\n", got)
	}
	if got, want := attrs.At(0, 2), math.Sqrt(3); math.Abs(got-want) > 1e-12 {
		t.Errorf("got z channel %v, wanted %v\n", got, want)
	}
	if attrs.At(0, 1) != 0 || attrs.At(0, 3) != 0 {
		t.Errorf("nonzero transverse channels for an axial edge\n")
	}
}

func TestZBLRepulsionDecays(t *testing.T) {
	z := ZBLRepulsion{RMax: 6, P: 5, Numbers: []int{8}}
	energy := func(d float64) float64 {
		b, err := NewBatch(1, diatomic(d, []int{0, 0}, 1, 0))
		if err != nil {
			t.Fatal(err)
		}
		_, lengths := EdgeGeometry(b.Positions, b.Edges, b.Shifts)
		atomE := z.AtomEnergies(b, lengths)
		return atomE[0] + atomE[1]
	}
	prev := energy(0.5)
	if prev <= 0 {
		t.Fatalf("repulsion at close range is %v, wanted positive\n", prev)
	}
	for _, d := range []float64{1.0, 2.0, 4.0} {
		cur := energy(d)
		if cur >= prev {
			t.Fatalf("repulsion rises at d=%v: %v >= %v\n", d, cur, prev)
		}
		prev = cur
	}
	if got := energy(6.0); got != 0 {
		t.Errorf("got %v at the cutoff, wanted 0\n", got)
	}
}

func TestResidualInteractionNoEdges(t *testing.T) {
	ri := NewResidualInteraction(4, 3, 2.0, rand.NewSource(1))
	feats := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	out := ri.Forward(nil, feats, nil, nil, nil)
	if !mat.EqualApprox(out, feats, 1e-14) {
		t.Errorf("features changed with no edges\n")
	}
}

func TestAtomicEnergies(t *testing.T) {
	ae := AtomicEnergies{Energies: []float64{-1.0, -2.0}}
	got := ae.Eval(oneHot([]int{1, 0, 1}, 2))
	want := []float64{-2.0, -1.0, -2.0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("atom %d: got %v, wanted %v\n", i, got[i], want[i])
		}
	}
}

func TestScaleShift(t *testing.T) {
	ss := ScaleShift{Scale: 2.0, Shift: -1.0}
	got := ss.Apply([]float64{0, 1, 2})
	want := []float64{-1, 1, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, wanted %v\n", got[i], want[i])
		}
	}
}

func TestReadoutsNilFeatures(t *testing.T) {
	lr := NewLinearReadout(3, rand.NewSource(1))
	if lr.Eval(nil) != nil {
		t.Errorf("linear readout of nil features must be nil\n")
	}
	nr := NewNonLinearReadout(3, 4, rand.NewSource(1))
	if nr.Eval(nil) != nil {
		t.Errorf("nonlinear readout of nil features must be nil\n")
	}
}
