package maceq

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// TwoBody is the analytic short-range pair correction
// (A*exp(B*(mu-R)) - C/R^6 - D/R^8) * taper, with per-pair parameters
// expanded from the per-type references.
type TwoBody struct {
	Ref *RefParams
}

// Energies computes per-atom and per-structure two-body energies. It
// consumes the distance matrix and taper factor produced by the
// charge-equilibration step; the two steps share those intermediates
// by contract. The self-interaction diagonal is zeroed and every
// unordered pair, counted twice in the row sums, is halved.
func (tb *TwoBody) Energies(b *Batch, res *QEqResult) (atomE, structE []float64) {
	n := b.NumAtoms()
	atomE = make([]float64, n)
	for s := 0; s < b.NumStructures(); s++ {
		atoms := b.AtomsOf(s)
		indices := structureTypeIndices(b, atoms)
		ns := len(atoms)
		pa := ExpandMatrix(tb.Ref.A, indices, ns)
		pb := ExpandMatrix(tb.Ref.B, indices, ns)
		pc := ExpandMatrix(tb.Ref.C, indices, ns)
		pd := ExpandMatrix(tb.Ref.D, indices, ns)
		pmu := ExpandMatrix(tb.Ref.Mu, indices, ns)
		for li, gi := range atoms {
			var sum float64
			for lj, gj := range atoms {
				if gi == gj {
					continue
				}
				fc := res.Fcut.At(gi, gj)
				if fc == 0 {
					continue
				}
				r := res.R.At(gi, gj)
				r2 := r * r
				r6 := r2 * r2 * r2
				e := pa.At(li, lj)*math.Exp(pb.At(li, lj)*(pmu.At(li, lj)-r)) -
					pc.At(li, lj)/r6 - pd.At(li, lj)/(r6*r2)
				sum += e * fc
			}
			atomE[gi] = sum / 2
		}
	}
	return atomE, ScatterSum(atomE, b.Index, b.NumStructures())
}

// PairMatrix exposes the expanded pair-energy matrix of a single
// structure before row summation. Row/column order follows atoms.
func (tb *TwoBody) PairMatrix(b *Batch, res *QEqResult, s int) *mat.Dense {
	atoms := b.AtomsOf(s)
	indices := structureTypeIndices(b, atoms)
	ns := len(atoms)
	pa := ExpandMatrix(tb.Ref.A, indices, ns)
	pb := ExpandMatrix(tb.Ref.B, indices, ns)
	pc := ExpandMatrix(tb.Ref.C, indices, ns)
	pd := ExpandMatrix(tb.Ref.D, indices, ns)
	pmu := ExpandMatrix(tb.Ref.Mu, indices, ns)
	ret := mat.NewDense(ns, ns, nil)
	for li, gi := range atoms {
		for lj, gj := range atoms {
			if gi == gj {
				continue
			}
			r := res.R.At(gi, gj)
			r2 := r * r
			r6 := r2 * r2 * r2
			e := pa.At(li, lj)*math.Exp(pb.At(li, lj)*(pmu.At(li, lj)-r)) -
				pc.At(li, lj)/r6 - pd.At(li, lj)/(r6*r2)
			ret.Set(li, lj, e*res.Fcut.At(gi, gj))
		}
	}
	return ret
}
