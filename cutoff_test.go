package maceq

import (
	"math"
	"testing"
)

func TestTaperBranches(t *testing.T) {
	const rMax, rIn = 6.0, 1.0
	tests := []struct {
		r    float64
		want float64
	}{
		{r: -1.0, want: 0},
		{r: 0.0, want: 0},
		{r: 0.5, want: tanh1Cubed},
		{r: rIn, want: tanh1Cubed}, // branches tie continuously at rIn
		{r: rMax, want: 0},
		{r: rMax + 1, want: 0},
		{r: 1e12, want: 0}, // the 1/eps placeholder must read as no interaction
	}
	for _, test := range tests {
		got := Taper(test.r, rMax, rIn)
		if got != test.want {
			t.Errorf("Taper(%v) = %v, wanted %v\n", test.r, got, test.want)
		}
	}
}

func TestTaperMonotonic(t *testing.T) {
	const rMax, rIn = 6.0, 1.0
	last := math.Inf(1)
	for r := rIn; r <= rMax; r += 0.01 {
		got := Taper(r, rMax, rIn)
		if got > last {
			t.Fatalf("Taper increased at r=%v: %v > %v\n", r, got, last)
		}
		last = got
	}
}

func TestTaperMidpoint(t *testing.T) {
	// halfway through the decay the argument is tanh(1/2)^3
	got := Taper(3.5, 6.0, 1.0)
	want := math.Pow(math.Tanh(0.5), 3)
	if math.Abs(got-want) > 1e-15 {
		t.Errorf("got %v, wanted %v\n", got, want)
	}
}

func TestValidateCutoff(t *testing.T) {
	tests := []struct {
		rMax, rIn float64
		ok        bool
	}{
		{6.0, 1.0, true},
		{1.0, 1.0, false},
		{1.0, 6.0, false},
		{6.0, 0.0, false},
		{6.0, -1.0, false},
	}
	for _, test := range tests {
		err := ValidateCutoff(test.rMax, test.rIn)
		if (err == nil) != test.ok {
			t.Errorf("ValidateCutoff(%v, %v) = %v, wanted ok=%v\n",
				test.rMax, test.rIn, err, test.ok)
		}
	}
}
