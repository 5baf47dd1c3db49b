package maceq

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gonum.org/v1/gonum/mat"
)

// RawConf mirrors the TOML file. Reference seeds are free-form values:
// a number reads as a scalar seed, an array as a per-type vector, and
// an array of arrays as a full type x type matrix.
type RawConf struct {
	RMax            float64                `toml:"r_max"`
	RIn             float64                `toml:"r_in"`
	Eps             float64                `toml:"eps"`
	QTot            float64                `toml:"q_tot"`
	NumBessel       int                    `toml:"num_bessel"`
	PolyCutoff      int                    `toml:"poly_cutoff"`
	HiddenDim       int                    `toml:"hidden_dim"`
	ReadoutHidden   int                    `toml:"readout_hidden"`
	NumInteractions int                    `toml:"num_interactions"`
	AvgNumNeighbors float64                `toml:"avg_num_neighbors"`
	Elements        []string               `toml:"elements"`
	AtomicNumbers   []int                  `toml:"atomic_numbers"`
	AtomicEnergies  []float64              `toml:"atomic_energies"`
	PairRepulsion   bool                   `toml:"pair_repulsion"`
	LongRange       bool                   `toml:"long_range"`
	ScaleShift      bool                   `toml:"scale_shift"`
	Scale           float64                `toml:"scale"`
	Shift           float64                `toml:"shift"`
	Seed            uint64                 `toml:"seed"`
	Refs            map[string]interface{} `toml:"refs"`
}

// Config is the decoded model configuration plus the CLI-facing
// element mapping.
type Config struct {
	Model      ModelConfig
	Elements   []string
	QTot       float64
	ScaleShift bool
	Scale      float64
	Shift      float64
}

// two-body and electrostatic reference values of the original ZnO
// parameterization, used when the TOML file leaves a seed unset
var defaultSeeds = map[string]float64{
	"a":     46.613,
	"b":     3.980,
	"c":     274.432,
	"d":     0.0,
	"mu":    1.918,
	"sigma": 0.25,
	"eta":   0.0107,
}

// LoadConfig reads a TOML model configuration. Defaults are preloaded
// into the raw struct before decoding, so unset keys keep them.
func LoadConfig(filename string) (Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return ReadConfig(f)
}

// ReadConfig decodes a TOML model configuration from r.
func ReadConfig(r io.Reader) (Config, error) {
	// Defaults
	rc := RawConf{
		RMax:            6.0,
		RIn:             1.0,
		Eps:             1e-12,
		NumBessel:       8,
		PolyCutoff:      5,
		HiddenDim:       32,
		NumInteractions: 2,
		AvgNumNeighbors: 8.0,
		Scale:           1.0,
	}
	if _, err := toml.NewDecoder(r).Decode(&rc); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return rc.ToConfig()
}

func (rc RawConf) ToConfig() (Config, error) {
	seeds := RefSeeds{}
	for _, s := range []struct {
		dst *Seed
		key string
	}{
		{&seeds.A, "a"}, {&seeds.B, "b"}, {&seeds.C, "c"},
		{&seeds.D, "d"}, {&seeds.Mu, "mu"},
		{&seeds.Sigma, "sigma"}, {&seeds.Eta, "eta"},
	} {
		v, ok := rc.Refs[s.key]
		if !ok {
			*s.dst = ScalarSeed(defaultSeeds[s.key])
			continue
		}
		seed, err := decodeSeed(v)
		if err != nil {
			return Config{}, fmt.Errorf("refs.%s: %w", s.key, err)
		}
		*s.dst = seed
	}
	conf := Config{
		Model: ModelConfig{
			RMax:            rc.RMax,
			RIn:             rc.RIn,
			Eps:             rc.Eps,
			NumBessel:       rc.NumBessel,
			PolyCutoff:      rc.PolyCutoff,
			HiddenDim:       rc.HiddenDim,
			ReadoutHidden:   rc.ReadoutHidden,
			NumInteractions: rc.NumInteractions,
			NumTypes:        len(rc.Elements),
			AtomicNumbers:   rc.AtomicNumbers,
			AtomicEnergies:  rc.AtomicEnergies,
			AvgNumNeighbors: rc.AvgNumNeighbors,
			PairRepulsion:   rc.PairRepulsion,
			LongRange:       rc.LongRange,
			Seeds:           seeds,
			Seed:            rc.Seed,
		},
		Elements:   rc.Elements,
		QTot:       rc.QTot,
		ScaleShift: rc.ScaleShift,
		Scale:      rc.Scale,
		Shift:      rc.Shift,
	}
	if len(conf.Elements) == 0 {
		return Config{}, fmt.Errorf("config names no elements")
	}
	return conf, nil
}

// decodeSeed converts a free-form TOML value into a Seed. Anything
// that is not a number, a numeric array, or a numeric matrix is a
// configuration error.
func decodeSeed(v interface{}) (Seed, error) {
	switch t := v.(type) {
	case float64:
		return ScalarSeed(t), nil
	case int64:
		return ScalarSeed(float64(t)), nil
	case []interface{}:
		if len(t) == 0 {
			return Seed{}, ErrSeedShape
		}
		if _, nested := t[0].([]interface{}); nested {
			rows := len(t)
			var m *mat.Dense
			for i, rv := range t {
				row, ok := rv.([]interface{})
				if !ok || len(row) != rows {
					return Seed{}, ErrSeedShape
				}
				if m == nil {
					m = mat.NewDense(rows, rows, nil)
				}
				for j, cv := range row {
					x, err := tomlNumber(cv)
					if err != nil {
						return Seed{}, err
					}
					m.Set(i, j, x)
				}
			}
			return MatrixSeed(m), nil
		}
		vec := make([]float64, len(t))
		for i, cv := range t {
			x, err := tomlNumber(cv)
			if err != nil {
				return Seed{}, err
			}
			vec[i] = x
		}
		return VectorSeed(vec), nil
	default:
		return Seed{}, ErrSeedShape
	}
}

func tomlNumber(v interface{}) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int64:
		return float64(t), nil
	default:
		return 0, ErrSeedShape
	}
}

// TypeOf maps an element symbol to its type column.
func (c Config) TypeOf(symbol string) (int, error) {
	for i, e := range c.Elements {
		if e == symbol {
			return i, nil
		}
	}
	return 0, fmt.Errorf("element %q is not in the configured set %v", symbol, c.Elements)
}
