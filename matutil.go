package maceq

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/mat"
)

// WriteMat prints a matrix with row labels in fixed-width columns.
func WriteMat(w io.Writer, m mat.Matrix) {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		fmt.Fprintf(w, "%5d", i)
		for j := 0; j < c; j++ {
			fmt.Fprintf(w, "%12.8f", m.At(i, j))
		}
		fmt.Fprint(w, "\n")
	}
	fmt.Fprint(w, "\n")
}

// WriteVec prints a slice as an indexed column.
func WriteVec(w io.Writer, v []float64) {
	for i, x := range v {
		fmt.Fprintf(w, "%5d%20.12f\n", i, x)
	}
}
