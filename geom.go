package maceq

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// EdgeGeometry computes the displacement vector and length for every
// directed edge, including the periodic shift when one is present.
// Both returns are nil when the batch has no edges.
func EdgeGeometry(positions *mat.Dense, edges [][2]int, shifts *mat.Dense) (vectors *mat.Dense, lengths []float64) {
	if len(edges) == 0 {
		return nil, nil
	}
	vectors = mat.NewDense(len(edges), 3, nil)
	lengths = make([]float64, len(edges))
	for e, edge := range edges {
		var sq float64
		for c := 0; c < 3; c++ {
			d := positions.At(edge[1], c) - positions.At(edge[0], c)
			if shifts != nil {
				d += shifts.At(e, c)
			}
			vectors.Set(e, c, d)
			sq += d * d
		}
		lengths[e] = math.Sqrt(sq)
	}
	return vectors, lengths
}

// ApplyStrain returns a copy of the batch deformed by the symmetric
// part of the 3x3 strain tensor: positions and shift vectors pick up
// x -> x + x*sym(strain). A zero strain returns an identical geometry.
func (b *Batch) ApplyStrain(strain *mat.Dense) *Batch {
	sym := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			sym.Set(i, j, 0.5*(strain.At(i, j)+strain.At(j, i)))
		}
	}
	deform := func(m *mat.Dense) *mat.Dense {
		if m == nil {
			return nil
		}
		var d mat.Dense
		d.Mul(m, sym)
		d.Add(&d, m)
		return &d
	}
	return &Batch{
		Structures: b.Structures,
		Positions:  deform(b.Positions),
		NodeAttrs:  b.NodeAttrs,
		Edges:      b.Edges,
		Shifts:     deform(b.Shifts),
		Index:      b.Index,
		Ptr:        b.Ptr,
	}
}
