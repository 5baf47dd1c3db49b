package maceq

import "testing"

func TestScatterSum(t *testing.T) {
	got := ScatterSum([]float64{1, 2, 3, 4}, []int{0, 1, 0, 2}, 3)
	want := []float64{4, 2, 4}
	for s := range want {
		if got[s] != want[s] {
			t.Errorf("structure %d: got %v, wanted %v\n", s, got[s], want[s])
		}
	}
}

func TestScatterEdgeSum(t *testing.T) {
	edges := [][2]int{{0, 1}, {1, 0}, {1, 2}}
	values := []float64{1, 2, 4}
	senders := scatterEdgeSum(values, edges, 0, 3)
	receivers := scatterEdgeSum(values, edges, 1, 3)
	wantSend := []float64{1, 6, 0}
	wantRecv := []float64{2, 1, 4}
	for i := 0; i < 3; i++ {
		if senders[i] != wantSend[i] {
			t.Errorf("sender %d: got %v, wanted %v\n", i, senders[i], wantSend[i])
		}
		if receivers[i] != wantRecv[i] {
			t.Errorf("receiver %d: got %v, wanted %v\n", i, receivers[i], wantRecv[i])
		}
	}
}
