package maceq

import (
	"gonum.org/v1/gonum/mat"
)

// NeighborList builds the directed edge list of all atom pairs within
// rMax, both directions included. With a periodic cell it searches the
// first shell of image cells, which covers every image for cells with
// edge lengths above rMax; the returned shifts are the cartesian
// displacements of the chosen images. Self pairs enter only through
// nonzero shifts.
func NeighborList(positions *mat.Dense, cell *mat.Dense, rMax float64) ([][2]int, *mat.Dense) {
	n, _ := positions.Dims()
	var edges [][2]int
	var shifts [][3]float64
	images := [][3]int{{0, 0, 0}}
	if cell != nil {
		images = images[:0]
		for a := -1; a <= 1; a++ {
			for b := -1; b <= 1; b++ {
				for c := -1; c <= 1; c++ {
					images = append(images, [3]int{a, b, c})
				}
			}
		}
	}
	r2max := rMax * rMax
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for _, img := range images {
				var shift [3]float64
				if cell != nil {
					for c := 0; c < 3; c++ {
						shift[c] = float64(img[0])*cell.At(0, c) +
							float64(img[1])*cell.At(1, c) +
							float64(img[2])*cell.At(2, c)
					}
				}
				if i == j && img == [3]int{0, 0, 0} {
					continue
				}
				var d2 float64
				for c := 0; c < 3; c++ {
					d := positions.At(j, c) - positions.At(i, c) + shift[c]
					d2 += d * d
				}
				if d2 < r2max {
					edges = append(edges, [2]int{i, j})
					shifts = append(shifts, shift)
				}
			}
		}
	}
	if len(edges) == 0 {
		return nil, nil
	}
	sm := mat.NewDense(len(edges), 3, nil)
	for e, s := range shifts {
		for c := 0; c < 3; c++ {
			sm.Set(e, c, s[c])
		}
	}
	return edges, sm
}
