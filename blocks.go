package maceq

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// The blocks below satisfy the fixed collaborator contracts of the
// orchestration: node features in, node features out, shape-preserving
// per the configured widths. Full equivariant tensor products are an
// external concern; the interaction here is the invariant (l=0)
// restriction of the residual message-passing block.

// NodeEmbedding maps one-hot node attributes to node features.
type NodeEmbedding interface {
	Embed(nodeAttrs *mat.Dense) *mat.Dense
}

// Interaction updates node features from neighbor messages.
type Interaction interface {
	Forward(nodeAttrs, nodeFeats, edgeAttrs, edgeFeats *mat.Dense, edges [][2]int) *mat.Dense
}

// Readout maps node features to a scalar per-atom energy contribution.
type Readout interface {
	Eval(feats *mat.Dense) []float64
}

// AtomicEnergies holds the learned per-type reference energies.
type AtomicEnergies struct {
	Energies []float64
}

// Eval returns the reference energy of each atom.
func (ae AtomicEnergies) Eval(nodeAttrs *mat.Dense) []float64 {
	n, numTypes := nodeAttrs.Dims()
	ret := make([]float64, n)
	for i := 0; i < n; i++ {
		for t := 0; t < numTypes; t++ {
			ret[i] += nodeAttrs.At(i, t) * ae.Energies[t]
		}
	}
	return ret
}

// LinearNodeEmbedding is a learned linear map from one-hot attributes
// to the hidden feature width.
type LinearNodeEmbedding struct {
	W *mat.Dense // numTypes x dim
}

func NewLinearNodeEmbedding(numTypes, dim int, src rand.Source) *LinearNodeEmbedding {
	return &LinearNodeEmbedding{W: randomDense(numTypes, dim, src)}
}

func (le *LinearNodeEmbedding) Embed(nodeAttrs *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.Mul(nodeAttrs, le.W)
	return &out
}

// BesselBasis is the radial edge embedding: spherical Bessel j0
// harmonics under a polynomial cutoff envelope.
type BesselBasis struct {
	RMax      float64
	NumBessel int
	P         int // polynomial cutoff order
}

// Eval returns an edges x NumBessel feature matrix, nil for no edges.
func (bb BesselBasis) Eval(lengths []float64) *mat.Dense {
	if len(lengths) == 0 {
		return nil
	}
	pref := math.Sqrt(2 / bb.RMax)
	out := mat.NewDense(len(lengths), bb.NumBessel, nil)
	for e, r := range lengths {
		env := PolynomialCutoff(r/bb.RMax, bb.P)
		for k := 0; k < bb.NumBessel; k++ {
			w := float64(k+1) * math.Pi / bb.RMax
			out.Set(e, k, pref*math.Sin(w*r)/r*env)
		}
	}
	return out
}

// PolynomialCutoff is the smooth envelope 1 - c1*x^p + c2*x^(p+1) -
// c3*x^(p+2) on [0,1), zero beyond.
func PolynomialCutoff(x float64, p int) float64 {
	if x >= 1 {
		return 0
	}
	fp := float64(p)
	xp := math.Pow(x, fp)
	return 1 - (fp+1)*(fp+2)/2*xp + fp*(fp+2)*xp*x - fp*(fp+1)/2*xp*x*x
}

// SphericalHarmonics produces real spherical-harmonic edge attributes
// through l = 1 in component normalization: a constant channel and the
// scaled unit direction.
type SphericalHarmonics struct{}

// Eval returns an edges x 4 attribute matrix, nil for no edges.
func (SphericalHarmonics) Eval(vectors *mat.Dense) *mat.Dense {
	if vectors == nil {
		return nil
	}
	n, _ := vectors.Dims()
	out := mat.NewDense(n, 4, nil)
	for e := 0; e < n; e++ {
		x, y, z := vectors.At(e, 0), vectors.At(e, 1), vectors.At(e, 2)
		norm := math.Sqrt(x*x + y*y + z*z)
		out.Set(e, 0, 1)
		if norm > 0 {
			out.Set(e, 1, math.Sqrt(3)*y/norm)
			out.Set(e, 2, math.Sqrt(3)*z/norm)
			out.Set(e, 3, math.Sqrt(3)*x/norm)
		}
	}
	return out
}

// ResidualInteraction is a shape-preserving residual message-passing
// layer: per-edge channel gates from the radial features modulate the
// sender features, messages aggregate at the receiver scaled by the
// average neighbor count, and a linear mix is added back onto the
// input features. Only the invariant edge-attribute channel
// participates; higher-l channels belong to the external equivariant
// stack.
type ResidualInteraction struct {
	Wradial         *mat.Dense // numBessel x dim
	Wmix            *mat.Dense // dim x dim
	AvgNumNeighbors float64
}

func NewResidualInteraction(numBessel, dim int, avgNumNeighbors float64, src rand.Source) *ResidualInteraction {
	return &ResidualInteraction{
		Wradial:         randomDense(numBessel, dim, src),
		Wmix:            randomDense(dim, dim, src),
		AvgNumNeighbors: avgNumNeighbors,
	}
}

func (ri *ResidualInteraction) Forward(nodeAttrs, nodeFeats, edgeAttrs, edgeFeats *mat.Dense, edges [][2]int) *mat.Dense {
	n, dim := nodeFeats.Dims()
	agg := mat.NewDense(n, dim, nil)
	if edgeFeats != nil {
		var gates mat.Dense
		gates.Mul(edgeFeats, ri.Wradial) // edges x dim
		for e, edge := range edges {
			sender, receiver := edge[0], edge[1]
			attr0 := 1.0
			if edgeAttrs != nil {
				attr0 = edgeAttrs.At(e, 0)
			}
			for c := 0; c < dim; c++ {
				agg.Set(receiver, c, agg.At(receiver, c)+
					attr0*gates.At(e, c)*nodeFeats.At(sender, c))
			}
		}
	}
	agg.Scale(1/ri.AvgNumNeighbors, agg)
	var out mat.Dense
	out.Mul(agg, ri.Wmix)
	out.Add(&out, nodeFeats)
	return &out
}

// LinearReadout contracts node features to one scalar per atom.
type LinearReadout struct {
	W []float64 // dim
}

func NewLinearReadout(dim int, src rand.Source) *LinearReadout {
	return &LinearReadout{W: randomSlice(dim, src)}
}

func (lr *LinearReadout) Eval(feats *mat.Dense) []float64 {
	if feats == nil {
		return nil
	}
	n, dim := feats.Dims()
	ret := make([]float64, n)
	for i := 0; i < n; i++ {
		for c := 0; c < dim; c++ {
			ret[i] += feats.At(i, c) * lr.W[c]
		}
	}
	return ret
}

// NonLinearReadout is a one-hidden-layer readout with a silu gate.
type NonLinearReadout struct {
	W1 *mat.Dense // dim x hidden
	W2 []float64  // hidden
}

func NewNonLinearReadout(dim, hidden int, src rand.Source) *NonLinearReadout {
	return &NonLinearReadout{
		W1: randomDense(dim, hidden, src),
		W2: randomSlice(hidden, src),
	}
}

func (nr *NonLinearReadout) Eval(feats *mat.Dense) []float64 {
	if feats == nil {
		return nil
	}
	var h mat.Dense
	h.Mul(feats, nr.W1)
	n, hidden := h.Dims()
	ret := make([]float64, n)
	for i := 0; i < n; i++ {
		for c := 0; c < hidden; c++ {
			ret[i] += silu(h.At(i, c)) * nr.W2[c]
		}
	}
	return ret
}

func silu(x float64) float64 {
	return x / (1 + math.Exp(-x))
}

// ScaleShift applies the learned scale and shift to the summed
// short-range interaction energies.
type ScaleShift struct {
	Scale, Shift float64
}

func (ss ScaleShift) Apply(x []float64) []float64 {
	ret := make([]float64, len(x))
	for i, v := range x {
		ret[i] = ss.Scale*v + ss.Shift
	}
	return ret
}

// ZBL universal screening function coefficients
var (
	zblCoeffs = [4]float64{0.18175, 0.50986, 0.28022, 0.02817}
	zblExps   = [4]float64{3.19980, 0.94229, 0.40290, 0.20162}
)

// coulomb prefactor e^2/(4 pi eps0) in eV*Angstrom
const coulombConstant = 14.399645

// ZBLRepulsion is the universal screened nuclear repulsion between
// close pairs, tapered by the polynomial cutoff envelope.
type ZBLRepulsion struct {
	RMax    float64
	P       int
	Numbers []int // atomic number per type
}

// AtomEnergies distributes half of each directed edge's repulsion onto
// the receiving atom.
func (z ZBLRepulsion) AtomEnergies(b *Batch, edgeLengths []float64) []float64 {
	n := b.NumAtoms()
	ret := make([]float64, n)
	if len(edgeLengths) == 0 {
		return ret
	}
	zOf := func(atom int) float64 {
		_, numTypes := b.NodeAttrs.Dims()
		for t := 0; t < numTypes; t++ {
			if b.NodeAttrs.At(atom, t) != 0 {
				return float64(z.Numbers[t])
			}
		}
		return 0
	}
	for e, edge := range b.Edges {
		r := edgeLengths[e]
		zi, zj := zOf(edge[0]), zOf(edge[1])
		a := 0.46850 / (math.Pow(zi, 0.23) + math.Pow(zj, 0.23))
		var phi float64
		for k := 0; k < 4; k++ {
			phi += zblCoeffs[k] * math.Exp(-zblExps[k]*r/a)
		}
		v := coulombConstant * zi * zj / r * phi * PolynomialCutoff(r/z.RMax, z.P)
		ret[edge[1]] += 0.5 * v
	}
	return ret
}

func randomDense(r, c int, src rand.Source) *mat.Dense {
	u := distuv.Uniform{Min: -1, Max: 1, Src: src}
	scale := 1 / math.Sqrt(float64(r))
	m := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Set(i, j, u.Rand()*scale)
		}
	}
	return m
}

func randomSlice(n int, src rand.Source) []float64 {
	u := distuv.Uniform{Min: -1, Max: 1, Src: src}
	scale := 1 / math.Sqrt(float64(n))
	ret := make([]float64, n)
	for i := range ret {
		ret[i] = u.Rand() * scale
	}
	return ret
}
