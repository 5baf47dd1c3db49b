package maceq

import "gonum.org/v1/gonum/mat"

// TypeIndices returns, for each type column of the one-hot attribute
// matrix, the row indices of the atoms of that type.
func TypeIndices(nodeAttrs *mat.Dense) [][]int {
	n, numTypes := nodeAttrs.Dims()
	ret := make([][]int, numTypes)
	for t := 0; t < numTypes; t++ {
		for i := 0; i < n; i++ {
			if nodeAttrs.At(i, t) != 0 {
				ret[t] = append(ret[t], i)
			}
		}
	}
	return ret
}

// ExpandMatrix broadcasts a type x type reference matrix onto an
// atom x atom matrix: result[i,j] = ref[type(i), type(j)]. Indices are
// local to one structure; the caller assembles structures into a
// block-diagonal batch matrix.
func ExpandMatrix(ref *mat.Dense, indices [][]int, numAtoms int) *mat.Dense {
	ret := mat.NewDense(numAtoms, numAtoms, nil)
	for ti, ai := range indices {
		for tj, aj := range indices {
			v := ref.At(ti, tj)
			for _, i := range ai {
				for _, j := range aj {
					ret.Set(i, j, v)
				}
			}
		}
	}
	return ret
}

// ExpandVector broadcasts per-type values onto atoms:
// result[i] = ref[type(i)].
func ExpandVector(ref []float64, indices [][]int, numAtoms int) []float64 {
	ret := make([]float64, numAtoms)
	for t, atoms := range indices {
		for _, i := range atoms {
			ret[i] = ref[t]
		}
	}
	return ret
}
