package maceq

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Structure is one atomic configuration: positions, an optional
// periodic cell, a one-hot type matrix, and a directed edge list with
// cartesian periodic shift vectors. Edges are directed but physically
// symmetric; an undirected bond may appear as 0, 1, or 2 directed
// edges.
type Structure struct {
	Positions *mat.Dense // numAtoms x 3
	Cell      *mat.Dense // 3 x 3, nil for an isolated system
	NodeAttrs *mat.Dense // numAtoms x numTypes one-hot
	Edges     [][2]int   // sender, receiver
	Shifts    *mat.Dense // numEdges x 3
	QTot      float64    // target total charge
}

func (s *Structure) NumAtoms() int {
	if s.Positions == nil {
		return 0
	}
	n, _ := s.Positions.Dims()
	return n
}

// Validate checks the structure before it reaches the solvers. A
// zero-atom structure is invalid input.
func (s *Structure) Validate(numTypes int) error {
	n := s.NumAtoms()
	if n == 0 {
		return ErrEmptyStructure
	}
	an, at := s.NodeAttrs.Dims()
	if an != n || at != numTypes {
		return fmt.Errorf("node attrs are %dx%d, want %dx%d", an, at, n, numTypes)
	}
	for _, e := range s.Edges {
		if e[0] < 0 || e[0] >= n || e[1] < 0 || e[1] >= n {
			return fmt.Errorf("edge (%d,%d) out of range for %d atoms", e[0], e[1], n)
		}
	}
	if s.Shifts != nil {
		sn, _ := s.Shifts.Dims()
		if sn != len(s.Edges) {
			return fmt.Errorf("%d shift vectors for %d edges", sn, len(s.Edges))
		}
	}
	return nil
}

// Batch is a disjoint union of structures. Index maps each atom to its
// owning structure; grouping is recoverable by equality filtering.
type Batch struct {
	Structures []*Structure
	Positions  *mat.Dense // totalAtoms x 3
	NodeAttrs  *mat.Dense // totalAtoms x numTypes
	Edges      [][2]int   // global atom indices
	Shifts     *mat.Dense // totalEdges x 3
	Index      []int      // batch index per atom
	Ptr        []int      // atom offset per structure, len = numStructures+1
}

// NewBatch concatenates structures into one batch, offsetting edge
// indices into the global atom numbering.
func NewBatch(numTypes int, structures ...*Structure) (*Batch, error) {
	if len(structures) == 0 {
		return nil, fmt.Errorf("batch of zero structures")
	}
	var totalAtoms, totalEdges int
	for i, s := range structures {
		if err := s.Validate(numTypes); err != nil {
			return nil, fmt.Errorf("structure %d: %w", i, err)
		}
		totalAtoms += s.NumAtoms()
		totalEdges += len(s.Edges)
	}
	b := &Batch{
		Structures: structures,
		Positions:  mat.NewDense(totalAtoms, 3, nil),
		NodeAttrs:  mat.NewDense(totalAtoms, numTypes, nil),
		Edges:      make([][2]int, 0, totalEdges),
		Index:      make([]int, totalAtoms),
		Ptr:        make([]int, len(structures)+1),
	}
	if totalEdges > 0 {
		b.Shifts = mat.NewDense(totalEdges, 3, nil)
	}
	var atom, edge int
	for si, s := range structures {
		b.Ptr[si] = atom
		n := s.NumAtoms()
		for i := 0; i < n; i++ {
			b.Index[atom+i] = si
			for c := 0; c < 3; c++ {
				b.Positions.Set(atom+i, c, s.Positions.At(i, c))
			}
			for t := 0; t < numTypes; t++ {
				b.NodeAttrs.Set(atom+i, t, s.NodeAttrs.At(i, t))
			}
		}
		for ei, e := range s.Edges {
			b.Edges = append(b.Edges, [2]int{e[0] + atom, e[1] + atom})
			if s.Shifts != nil {
				for c := 0; c < 3; c++ {
					b.Shifts.Set(edge+ei, c, s.Shifts.At(ei, c))
				}
			}
		}
		atom += n
		edge += len(s.Edges)
	}
	b.Ptr[len(structures)] = atom
	return b, nil
}

func (b *Batch) NumAtoms() int      { return len(b.Index) }
func (b *Batch) NumStructures() int { return len(b.Structures) }

// AtomsOf returns the global indices of the atoms owned by structure s,
// recovered by equality filtering on the batch index.
func (b *Batch) AtomsOf(s int) []int {
	ret := make([]int, 0, b.Ptr[s+1]-b.Ptr[s])
	for i, owner := range b.Index {
		if owner == s {
			ret = append(ret, i)
		}
	}
	return ret
}

// Permute reorders the atoms of the batch by perm, where perm[i] is the
// new position of atom i. Used by the permutation-equivariance
// verification helper.
func (b *Batch) Permute(perm []int) *Batch {
	n := b.NumAtoms()
	_, numTypes := b.NodeAttrs.Dims()
	ret := &Batch{
		Structures: b.Structures,
		Positions:  mat.NewDense(n, 3, nil),
		NodeAttrs:  mat.NewDense(n, numTypes, nil),
		Edges:      make([][2]int, len(b.Edges)),
		Shifts:     b.Shifts,
		Index:      make([]int, n),
		Ptr:        b.Ptr,
	}
	for i := 0; i < n; i++ {
		for c := 0; c < 3; c++ {
			ret.Positions.Set(perm[i], c, b.Positions.At(i, c))
		}
		for t := 0; t < numTypes; t++ {
			ret.NodeAttrs.Set(perm[i], t, b.NodeAttrs.At(i, t))
		}
		ret.Index[perm[i]] = b.Index[i]
	}
	for e, edge := range b.Edges {
		ret.Edges[e] = [2]int{perm[edge[0]], perm[edge[1]]}
	}
	return ret
}
