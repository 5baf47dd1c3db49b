package maceq

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Debye per e*Angstrom, from the defining constants
const (
	speedOfLight     = 299792458.0
	elementaryCharge = 1.602176634e-19
	debyeFactor      = 1e-11 / speedOfLight / elementaryCharge
)

// ChargeEquilibration solves the per-batch charge-equilibration linear
// system: a Gaussian-softened Coulomb matrix per structure, bordered
// with a total-charge neutrality constraint, assembled block-diagonally
// across the batch and solved densely in one call.
type ChargeEquilibration struct {
	Ref       *RefParams
	RMax, RIn float64
	Eps       float64
}

// QEqResult carries the solver outputs. R and Fcut are shared with the
// two-body term and must not be recomputed or mutated downstream.
type QEqResult struct {
	Charges           []float64  // one per real atom, summing to QTot per structure
	Potentials        []float64  // cutoff-weighted electrostatic potential per atom
	AtomEnergies      []float64  // per-atom electrostatic energy
	StructureEnergies []float64  // per-structure electrostatic energy
	R                 *mat.Dense // dense distance matrix over the whole batch
	Fcut              *mat.Dense // taper factor over R
}

// Solve builds and solves the augmented system for the whole batch.
// kappa is the per-atom electronegativity bias from the upstream edge
// readout; edgeLengths align with the batch edge list. A singular
// augmented matrix surfaces as an error, never retried.
func (ce *ChargeEquilibration) Solve(b *Batch, kappa, edgeLengths []float64) (*QEqResult, error) {
	n := b.NumAtoms()
	numStructures := b.NumStructures()
	if n == 0 {
		return nil, ErrEmptyStructure
	}
	if len(kappa) != n {
		return nil, fmt.Errorf("kappa has %d entries for %d atoms", len(kappa), n)
	}
	if 1/ce.Eps <= ce.RMax {
		return nil, ErrBadPlaceholder
	}

	r := DistanceMatrix(b.Edges, edgeLengths, n, ce.Eps)
	fcut := TaperMatrix(r, ce.RMax, ce.RIn)

	sigma := make([]float64, n)
	eta := make([]float64, n)
	// softened Coulomb factor, strictly block-diagonal: atoms of
	// unrelated structures have zero coupling
	factor := mat.NewDense(n, n, nil)
	refGamma := ce.Ref.Gamma()
	refSigma := ce.Ref.Sigma()
	blocks := make([][]int, numStructures)
	for s := 0; s < numStructures; s++ {
		atoms := b.AtomsOf(s)
		if len(atoms) == 0 {
			return nil, fmt.Errorf("structure %d: %w", s, ErrEmptyStructure)
		}
		blocks[s] = atoms
		indices := structureTypeIndices(b, atoms)
		gammaS := ExpandMatrix(refGamma, indices, len(atoms))
		sigmaS := ExpandVector(refSigma, indices, len(atoms))
		etaS := ExpandVector(ce.Ref.Eta, indices, len(atoms))
		for li, gi := range atoms {
			sigma[gi] = sigmaS[li]
			eta[gi] = etaS[li]
			for lj, gj := range atoms {
				if gi == gj {
					continue
				}
				d := r.At(gi, gj)
				factor.Set(gi, gj, math.Erf(d/(math.Sqrt2*gammaS.At(li, lj)))/d)
			}
		}
	}

	// bordered block per structure: [[A_s, 1], [1', 0]], rhs
	// [-kappa_s..., QTot_s]
	ext := n + numStructures
	aExt := mat.NewDense(ext, ext, nil)
	rhs := mat.NewDense(ext, 1, nil)
	realAtom := make([]int, ext) // -1 marks a constraint row
	offset := 0
	for s, atoms := range blocks {
		ns := len(atoms)
		for li, gi := range atoms {
			// read the lower triangle only and mirror it up
			for lj := 0; lj <= li; lj++ {
				gj := atoms[lj]
				var v float64
				if li == lj {
					v = eta[gi] + 1/(sigma[gi]*math.Sqrt(math.Pi))
				} else {
					v = factor.At(gi, gj)
				}
				aExt.Set(offset+li, offset+lj, v)
				aExt.Set(offset+lj, offset+li, v)
			}
			aExt.Set(offset+li, offset+ns, 1)
			aExt.Set(offset+ns, offset+li, 1)
			rhs.Set(offset+li, 0, -kappa[gi])
			realAtom[offset+li] = gi
		}
		realAtom[offset+ns] = -1
		rhs.Set(offset+ns, 0, b.Structures[s].QTot)
		offset += ns + 1
	}

	var sol mat.Dense
	if err := sol.Solve(aExt, rhs); err != nil {
		return nil, fmt.Errorf("charge equilibration solve: %w", err)
	}
	charges := make([]float64, n)
	for row, atom := range realAtom {
		if atom >= 0 {
			charges[atom] = sol.At(row, 0)
		}
	}

	// cutoff-weighted potential descriptor and electrostatic energy
	potentials := make([]float64, n)
	atomE := make([]float64, n)
	for i := 0; i < n; i++ {
		var pot, v float64
		for j := 0; j < n; j++ {
			f := factor.At(i, j)
			pot += f * fcut.At(i, j) * charges[j]
			v += f * charges[j]
		}
		v += 0.5 / (sigma[i] * math.Sqrt(math.Pi)) * charges[i]
		potentials[i] = pot
		atomE[i] = charges[i] * v
	}
	return &QEqResult{
		Charges:           charges,
		Potentials:        potentials,
		AtomEnergies:      atomE,
		StructureEnergies: ScatterSum(atomE, b.Index, numStructures),
		R:                 r,
		Fcut:              fcut,
	}, nil
}

// structureTypeIndices maps the type membership of one structure's
// atoms to local indices, ready for parameter expansion.
func structureTypeIndices(b *Batch, atoms []int) [][]int {
	_, numTypes := b.NodeAttrs.Dims()
	ret := make([][]int, numTypes)
	for li, gi := range atoms {
		for t := 0; t < numTypes; t++ {
			if b.NodeAttrs.At(gi, t) != 0 {
				ret[t] = append(ret[t], li)
			}
		}
	}
	return ret
}

// FixedChargeDipole computes the per-structure dipole in Debye from
// solved charges and positions.
func FixedChargeDipole(b *Batch, charges []float64) *mat.Dense {
	ret := mat.NewDense(b.NumStructures(), 3, nil)
	for i, q := range charges {
		s := b.Index[i]
		for c := 0; c < 3; c++ {
			ret.Set(s, c, ret.At(s, c)+q*b.Positions.At(i, c)/debyeFactor)
		}
	}
	return ret
}

// VerifyPermutationEquivariance re-solves the system with the batch
// atoms reordered by perm and reports the largest absolute deviation
// between the permuted and direct charges. It is a verification
// helper, deliberately outside the production solve path.
func (ce *ChargeEquilibration) VerifyPermutationEquivariance(b *Batch, kappa, edgeLengths []float64, perm []int) (float64, error) {
	direct, err := ce.Solve(b, kappa, edgeLengths)
	if err != nil {
		return 0, err
	}
	permuted := b.Permute(perm)
	kappaP := make([]float64, len(kappa))
	for i, k := range kappa {
		kappaP[perm[i]] = k
	}
	res, err := ce.Solve(permuted, kappaP, edgeLengths)
	if err != nil {
		return 0, err
	}
	var maxDev float64
	for i, q := range direct.Charges {
		if dev := math.Abs(res.Charges[perm[i]] - q); dev > maxDev {
			maxDev = dev
		}
	}
	return maxDev, nil
}
