package maceq

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

type seedKind int

const (
	seedScalar seedKind = iota
	seedMatrix
	seedVector
)

// Seed is a reference-parameter seed: a bare scalar, a full type x type
// matrix, or a full per-type vector. Scalar seeds scale a random draw;
// full seeds are used as-is.
type Seed struct {
	kind   seedKind
	scalar float64
	matrix *mat.Dense
	vector []float64
}

func ScalarSeed(v float64) Seed    { return Seed{kind: seedScalar, scalar: v} }
func MatrixSeed(m *mat.Dense) Seed { return Seed{kind: seedMatrix, matrix: m} }
func VectorSeed(v []float64) Seed  { return Seed{kind: seedVector, vector: v} }

// RefSeeds collects the seeds for the two-body coefficients and the
// Gaussian charge-density parameters.
type RefSeeds struct {
	A, B, C, D, Mu Seed // two-body, type x type
	Sigma, Eta     Seed // electrostatics, per type
}

// RefParams holds the learnable per-type reference parameters. The
// two-body matrices are symmetric; sigma is stored as its logarithm so
// exponentiation always yields a positive width.
type RefParams struct {
	NumTypes       int
	A, B, C, D, Mu *mat.Dense // numTypes x numTypes, symmetric
	LogSigma, Eta  []float64  // per type
}

// NewRefParams builds the reference parameters from seeds. A scalar
// seed draws a random type x type matrix scaled by the scalar and
// symmetrizes it as (M+M')/2; a full matrix or vector seed is copied
// directly. Anything else is a configuration error.
func NewRefParams(numTypes int, seeds RefSeeds, src rand.Source) (*RefParams, error) {
	if numTypes < 1 {
		return nil, fmt.Errorf("need at least one atom type, got %d", numTypes)
	}
	u := distuv.Uniform{Min: 0, Max: 1, Src: src}
	p := &RefParams{NumTypes: numTypes}
	var err error
	for _, m := range []struct {
		dst  **mat.Dense
		seed Seed
		name string
	}{
		{&p.A, seeds.A, "A"},
		{&p.B, seeds.B, "B"},
		{&p.C, seeds.C, "C"},
		{&p.D, seeds.D, "D"},
		{&p.Mu, seeds.Mu, "mu"},
	} {
		*m.dst, err = seedSymmetricMatrix(m.seed, numTypes, u)
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", m.name, err)
		}
	}
	sigma, err := seedPerType(seeds.Sigma, numTypes, u)
	if err != nil {
		return nil, fmt.Errorf("seed sigma: %w", err)
	}
	p.LogSigma = make([]float64, numTypes)
	switch seeds.Sigma.kind {
	case seedScalar:
		if seeds.Sigma.scalar <= 0 {
			return nil, fmt.Errorf("seed sigma: scalar %v: %w", seeds.Sigma.scalar, ErrSeedShape)
		}
		// sigma seeded through its logarithm keeps the width positive
		for i := range p.LogSigma {
			p.LogSigma[i] = u.Rand() * math.Log(seeds.Sigma.scalar)
		}
	default:
		for i, s := range sigma {
			if s <= 0 {
				return nil, fmt.Errorf("seed sigma: width %d is %v: %w", i, s, ErrSeedShape)
			}
			p.LogSigma[i] = math.Log(s)
		}
	}
	p.Eta, err = seedPerType(seeds.Eta, numTypes, u)
	if err != nil {
		return nil, fmt.Errorf("seed eta: %w", err)
	}
	return p, nil
}

func seedSymmetricMatrix(s Seed, numTypes int, u distuv.Uniform) (*mat.Dense, error) {
	switch s.kind {
	case seedScalar:
		m := mat.NewDense(numTypes, numTypes, nil)
		for i := 0; i < numTypes; i++ {
			for j := 0; j < numTypes; j++ {
				m.Set(i, j, u.Rand()*s.scalar)
			}
		}
		sym := mat.NewDense(numTypes, numTypes, nil)
		for i := 0; i < numTypes; i++ {
			for j := 0; j < numTypes; j++ {
				sym.Set(i, j, 0.5*(m.At(i, j)+m.At(j, i)))
			}
		}
		return sym, nil
	case seedMatrix:
		r, c := s.matrix.Dims()
		if r != numTypes || c != numTypes {
			return nil, fmt.Errorf("matrix is %dx%d, want %dx%d: %w",
				r, c, numTypes, numTypes, ErrSeedShape)
		}
		ret := mat.NewDense(numTypes, numTypes, nil)
		ret.Copy(s.matrix)
		return ret, nil
	default:
		return nil, ErrSeedShape
	}
}

func seedPerType(s Seed, numTypes int, u distuv.Uniform) ([]float64, error) {
	switch s.kind {
	case seedScalar:
		ret := make([]float64, numTypes)
		for i := range ret {
			ret[i] = u.Rand() * s.scalar
		}
		return ret, nil
	case seedVector:
		if len(s.vector) != numTypes {
			return nil, fmt.Errorf("vector has %d entries, want %d: %w",
				len(s.vector), numTypes, ErrSeedShape)
		}
		ret := make([]float64, numTypes)
		copy(ret, s.vector)
		return ret, nil
	default:
		return nil, ErrSeedShape
	}
}

// Sigma recovers the per-type Gaussian widths, always positive.
func (p *RefParams) Sigma() []float64 {
	ret := make([]float64, len(p.LogSigma))
	for i, ls := range p.LogSigma {
		ret[i] = math.Exp(ls)
	}
	return ret
}

// Gamma builds the softening widths gamma[i,j] = sqrt(sigma_i^2 + sigma_j^2).
func (p *RefParams) Gamma() *mat.Dense {
	sigma := p.Sigma()
	n := len(sigma)
	ret := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			ret.Set(i, j, math.Hypot(sigma[i], sigma[j]))
		}
	}
	return ret
}
