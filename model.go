package maceq

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ModelConfig collects everything needed to build a model. Validate
// surfaces configuration errors before any numeric work happens.
type ModelConfig struct {
	RMax            float64
	RIn             float64
	Eps             float64
	NumBessel       int
	PolyCutoff      int
	HiddenDim       int
	ReadoutHidden   int
	NumInteractions int
	NumTypes        int
	AtomicNumbers   []int
	AtomicEnergies  []float64
	AvgNumNeighbors float64
	PairRepulsion   bool
	LongRange       bool
	Seeds           RefSeeds
	Seed            uint64
}

func (c *ModelConfig) Validate() error {
	if err := ValidateCutoff(c.RMax, c.RIn); err != nil {
		return err
	}
	if c.Eps <= 0 || 1/c.Eps <= c.RMax {
		return ErrBadPlaceholder
	}
	if c.NumTypes < 1 {
		return fmt.Errorf("need at least one atom type, got %d", c.NumTypes)
	}
	if len(c.AtomicEnergies) != c.NumTypes {
		return fmt.Errorf("%d atomic energies for %d types", len(c.AtomicEnergies), c.NumTypes)
	}
	if c.PairRepulsion && len(c.AtomicNumbers) != c.NumTypes {
		return fmt.Errorf("%d atomic numbers for %d types", len(c.AtomicNumbers), c.NumTypes)
	}
	if c.NumInteractions < 1 || c.HiddenDim < 1 || c.NumBessel < 1 {
		return fmt.Errorf("interactions, hidden width, and radial width must be positive")
	}
	if c.AvgNumNeighbors <= 0 {
		return fmt.Errorf("average neighbor count must be positive")
	}
	return nil
}

// Model composes the embedding, interaction, and readout stack with
// the optional pair-repulsion and long-range branches into a single
// per-structure energy. A nil scaleShift makes it the plain MACE
// composition; NewScaleShiftModel adds the learned scale and shift on
// the short-range interaction energies.
type Model struct {
	cfg            ModelConfig
	atomicEnergies AtomicEnergies
	embedding      *LinearNodeEmbedding
	radial         BesselBasis
	angular        SphericalHarmonics
	interactions   []Interaction
	readouts       []Readout
	kappaReadout   Readout
	zbl            *ZBLRepulsion
	qeq            *ChargeEquilibration
	twoBody        *TwoBody
	scaleShift     *ScaleShift
}

// Output is the per-forward result. Energy is the sole output most
// callers need: one entry per structure, in batch order. The
// long-range fields are nil unless that branch is enabled.
type Output struct {
	Energy        []float64
	NodeEnergy    []float64
	Electrostatic []float64
	TwoBodyEnergy []float64
	Charges       []float64
	Potentials    []float64
	Dipole        *mat.Dense
}

// NewModel builds the plain composition.
func NewModel(cfg ModelConfig) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	src := rand.NewSource(cfg.Seed)
	featDim := cfg.HiddenDim
	if cfg.LongRange {
		// charge and potential ride along as two extra channels
		featDim += 2
	}
	readoutHidden := cfg.ReadoutHidden
	if readoutHidden == 0 {
		readoutHidden = 16
	}
	m := &Model{
		cfg:            cfg,
		atomicEnergies: AtomicEnergies{Energies: cfg.AtomicEnergies},
		embedding:      NewLinearNodeEmbedding(cfg.NumTypes, cfg.HiddenDim, src),
		radial:         BesselBasis{RMax: cfg.RMax, NumBessel: cfg.NumBessel, P: cfg.PolyCutoff},
	}
	for i := 0; i < cfg.NumInteractions; i++ {
		m.interactions = append(m.interactions,
			NewResidualInteraction(cfg.NumBessel, featDim, cfg.AvgNumNeighbors, src))
		if i == cfg.NumInteractions-1 {
			m.readouts = append(m.readouts, NewNonLinearReadout(featDim, readoutHidden, src))
		} else {
			m.readouts = append(m.readouts, NewLinearReadout(featDim, src))
		}
	}
	if cfg.PairRepulsion {
		m.zbl = &ZBLRepulsion{RMax: cfg.RMax, P: cfg.PolyCutoff, Numbers: cfg.AtomicNumbers}
	}
	if cfg.LongRange {
		ref, err := NewRefParams(cfg.NumTypes, cfg.Seeds, src)
		if err != nil {
			return nil, err
		}
		m.kappaReadout = NewNonLinearReadout(cfg.NumBessel, readoutHidden, src)
		m.qeq = &ChargeEquilibration{Ref: ref, RMax: cfg.RMax, RIn: cfg.RIn, Eps: cfg.Eps}
		m.twoBody = &TwoBody{Ref: ref}
	}
	return m, nil
}

// NewScaleShiftModel builds the composition with a learned scale and
// shift applied to the summed short-range interaction energies.
func NewScaleShiftModel(cfg ModelConfig, scale, shift float64) (*Model, error) {
	m, err := NewModel(cfg)
	if err != nil {
		return nil, err
	}
	m.scaleShift = &ScaleShift{Scale: scale, Shift: shift}
	return m, nil
}

// Ref exposes the reference parameters of the long-range branch, nil
// when that branch is disabled.
func (m *Model) Ref() *RefParams {
	if m.qeq == nil {
		return nil
	}
	return m.qeq.Ref
}

// Forward evaluates the batch and returns per-structure energies. The
// electrostatic solve runs first so its charges and potentials reach
// the interaction layers as extra feature channels, and the two-body
// term reuses the solver's distance matrix and taper factor.
func (m *Model) Forward(b *Batch) (*Output, error) {
	n := b.NumAtoms()
	if n == 0 {
		return nil, ErrEmptyStructure
	}
	if _, types := b.NodeAttrs.Dims(); types != m.cfg.NumTypes {
		return nil, fmt.Errorf("batch has %d types, model has %d", types, m.cfg.NumTypes)
	}
	numStructures := b.NumStructures()

	nodeE0 := m.atomicEnergies.Eval(b.NodeAttrs)
	e0 := ScatterSum(nodeE0, b.Index, numStructures)

	feats := m.embedding.Embed(b.NodeAttrs)
	vectors, lengths := EdgeGeometry(b.Positions, b.Edges, b.Shifts)
	edgeAttrs := m.angular.Eval(vectors)
	edgeFeats := m.radial.Eval(lengths)

	pairNodeE := make([]float64, n)
	if m.zbl != nil {
		pairNodeE = m.zbl.AtomEnergies(b, lengths)
	}

	out := &Output{}
	var qres *QEqResult
	if m.cfg.LongRange {
		nodeKappa := make([]float64, n)
		if edgeKappa := m.kappaReadout.Eval(edgeFeats); edgeKappa != nil {
			nodeKappa = scatterEdgeSum(edgeKappa, b.Edges, 0, n)
		}
		var err error
		qres, err = m.qeq.Solve(b, nodeKappa, lengths)
		if err != nil {
			return nil, err
		}
		feats = appendColumns(feats, qres.Charges, qres.Potentials)
	}

	nodeInterE := make([]float64, n)
	copy(nodeInterE, pairNodeE)
	for l, inter := range m.interactions {
		feats = inter.Forward(b.NodeAttrs, feats, edgeAttrs, edgeFeats, b.Edges)
		floats.Add(nodeInterE, m.readouts[l].Eval(feats))
	}
	if m.scaleShift != nil {
		nodeInterE = m.scaleShift.Apply(nodeInterE)
	}
	interE := ScatterSum(nodeInterE, b.Index, numStructures)

	if m.cfg.LongRange {
		atom2b, struct2b := m.twoBody.Energies(b, qres)
		floats.Add(nodeInterE, qres.AtomEnergies)
		floats.Add(nodeInterE, atom2b)
		floats.Add(interE, qres.StructureEnergies)
		floats.Add(interE, struct2b)
		out.Electrostatic = qres.StructureEnergies
		out.TwoBodyEnergy = struct2b
		out.Charges = qres.Charges
		out.Potentials = qres.Potentials
		out.Dipole = FixedChargeDipole(b, qres.Charges)
	}

	out.Energy = make([]float64, numStructures)
	copy(out.Energy, e0)
	floats.Add(out.Energy, interE)
	out.NodeEnergy = make([]float64, n)
	copy(out.NodeEnergy, nodeE0)
	floats.Add(out.NodeEnergy, nodeInterE)
	return out, nil
}

// appendColumns widens a feature matrix with extra scalar channels.
func appendColumns(m *mat.Dense, cols ...[]float64) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c+len(cols), nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, m.At(i, j))
		}
		for k, col := range cols {
			out.Set(i, c+k, col[i])
		}
	}
	return out
}
