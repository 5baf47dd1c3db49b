package maceq

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNeighborListBothDirections(t *testing.T) {
	positions := mat.NewDense(2, 3, []float64{
		0, 0, 0,
		0, 0, 1.0,
	})
	edges, shifts := NeighborList(positions, nil, 2.0)
	if len(edges) != 2 {
		t.Fatalf("got %d edges, wanted 2\n", len(edges))
	}
	seen := map[[2]int]bool{}
	for _, e := range edges {
		seen[e] = true
	}
	if !seen[[2]int{0, 1}] || !seen[[2]int{1, 0}] {
		t.Errorf("got %v, wanted both directions\n", edges)
	}
	for e := 0; e < 2; e++ {
		for c := 0; c < 3; c++ {
			if shifts.At(e, c) != 0 {
				t.Errorf("nonzero shift for an isolated pair\n")
			}
		}
	}
}

func TestNeighborListOutOfRange(t *testing.T) {
	positions := mat.NewDense(2, 3, []float64{
		0, 0, 0,
		0, 0, 5.0,
	})
	edges, _ := NeighborList(positions, nil, 2.0)
	if edges != nil {
		t.Errorf("got %v, wanted no edges\n", edges)
	}
}

func TestNeighborListMinimumImage(t *testing.T) {
	cell := mat.NewDense(3, 3, []float64{
		10, 0, 0,
		0, 10, 0,
		0, 0, 10,
	})
	positions := mat.NewDense(2, 3, []float64{
		0.5, 5, 5,
		9.5, 5, 5,
	})
	edges, shifts := NeighborList(positions, cell, 2.0)
	if len(edges) != 2 {
		t.Fatalf("got %d edges, wanted 2\n", len(edges))
	}
	_, lengths := EdgeGeometry(positions, edges, shifts)
	for e, l := range lengths {
		if math.Abs(l-1.0) > 1e-12 {
			t.Errorf("edge %d length %v, wanted 1.0\n", e, l)
		}
	}
}

func TestNeighborListSelfImage(t *testing.T) {
	// one atom in a small periodic cell sees its own images
	cell := mat.NewDense(3, 3, []float64{
		1.5, 0, 0,
		0, 20, 0,
		0, 0, 20,
	})
	positions := mat.NewDense(1, 3, []float64{0, 0, 0})
	edges, shifts := NeighborList(positions, cell, 2.0)
	if len(edges) != 2 {
		t.Fatalf("got %d self-image edges, wanted 2\n", len(edges))
	}
	for e := range edges {
		if edges[e] != [2]int{0, 0} {
			t.Errorf("edge %v, wanted self pair\n", edges[e])
		}
		if shifts.At(e, 0) == 0 {
			t.Errorf("self image with zero shift\n")
		}
	}
}
