package maceq

import "testing"

func TestDistanceMatrixMinimum(t *testing.T) {
	// both directions of a bond report slightly different lengths;
	// the minimum is the canonical value at both entries
	edges := [][2]int{{0, 1}, {1, 0}}
	lengths := []float64{1.5000001, 1.5}
	r := DistanceMatrix(edges, lengths, 3, 1e-12)
	if got, want := r.At(0, 1), 1.5; got != want {
		t.Errorf("got %v, wanted %v\n", got, want)
	}
	if got, want := r.At(1, 0), 1.5; got != want {
		t.Errorf("got %v, wanted %v\n", got, want)
	}
}

func TestDistanceMatrixSingleDirection(t *testing.T) {
	r := DistanceMatrix([][2]int{{2, 0}}, []float64{2.25}, 3, 1e-12)
	if got, want := r.At(0, 2), 2.25; got != want {
		t.Errorf("got %v, wanted %v\n", got, want)
	}
	if got, want := r.At(2, 0), 2.25; got != want {
		t.Errorf("got %v, wanted %v\n", got, want)
	}
}

func TestDistanceMatrixDuplicates(t *testing.T) {
	// duplicate periodic images of the same pair collapse to the minimum
	edges := [][2]int{{0, 1}, {0, 1}, {1, 0}}
	lengths := []float64{3.0, 2.5, 2.75}
	r := DistanceMatrix(edges, lengths, 2, 1e-12)
	if got, want := r.At(0, 1), 2.5; got != want {
		t.Errorf("got %v, wanted %v\n", got, want)
	}
}

func TestDistanceMatrixPlaceholder(t *testing.T) {
	eps := 1e-12
	r := DistanceMatrix([][2]int{{0, 1}}, []float64{1.0}, 3, eps)
	inf := 1 / eps
	for _, pair := range [][2]int{{0, 0}, {1, 1}, {2, 2}, {0, 2}, {2, 0}, {1, 2}, {2, 1}} {
		if got := r.At(pair[0], pair[1]); got != inf {
			t.Errorf("R[%d,%d] = %v, wanted placeholder %v\n", pair[0], pair[1], got, inf)
		}
	}
}

func TestDistanceMatrixSymmetric(t *testing.T) {
	edges := [][2]int{{0, 1}, {1, 2}, {2, 0}, {1, 0}}
	lengths := []float64{1.1, 2.2, 3.3, 1.05}
	r := DistanceMatrix(edges, lengths, 3, 1e-12)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if r.At(i, j) != r.At(j, i) {
				t.Errorf("R[%d,%d] = %v but R[%d,%d] = %v\n",
					i, j, r.At(i, j), j, i, r.At(j, i))
			}
		}
	}
}
