package maceq

// ScatterSum accumulates per-atom values into per-structure totals.
func ScatterSum(values []float64, index []int, numStructures int) []float64 {
	ret := make([]float64, numStructures)
	for i, v := range values {
		ret[index[i]] += v
	}
	return ret
}

// scatterEdgeSum accumulates per-edge values onto atoms through the
// given edge endpoint (0 for senders, 1 for receivers).
func scatterEdgeSum(values []float64, edges [][2]int, end, numAtoms int) []float64 {
	ret := make([]float64, numAtoms)
	for e, v := range values {
		ret[edges[e][end]] += v
	}
	return ret
}
