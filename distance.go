package maceq

import "gonum.org/v1/gonum/mat"

// DistanceMatrix assembles the dense all-pairs distance matrix from a
// directed edge list. Each unordered pair that appears as at least one
// directed edge gets the minimum length observed across its directed
// occurrences, stored symmetrically at [i,j] and [j,i]. Every other
// entry, the diagonal included, holds the 1/eps placeholder standing
// in for "no direct interaction". Duplicate periodic images reporting
// slightly different lengths collapse to the minimum.
func DistanceMatrix(edges [][2]int, lengths []float64, numAtoms int, eps float64) *mat.Dense {
	inf := 1 / eps
	r := mat.NewDense(numAtoms, numAtoms, nil)
	for i := 0; i < numAtoms; i++ {
		for j := 0; j < numAtoms; j++ {
			r.Set(i, j, inf)
		}
	}
	// group directed edges by a symmetric unordered-pair key
	minLen := make(map[int64]float64, len(edges))
	for e, edge := range edges {
		i, j := edge[0], edge[1]
		if j < i {
			i, j = j, i
		}
		key := int64(i)*int64(numAtoms) + int64(j)
		if cur, ok := minLen[key]; !ok || lengths[e] < cur {
			minLen[key] = lengths[e]
		}
	}
	for key, l := range minLen {
		i := int(key / int64(numAtoms))
		j := int(key % int64(numAtoms))
		r.Set(i, j, l)
		r.Set(j, i, l)
	}
	return r
}
