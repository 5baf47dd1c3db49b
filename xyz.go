package maceq

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// XYZFrame is one frame of a multi-frame XYZ file.
type XYZFrame struct {
	Symbols   []string
	Positions *mat.Dense // numAtoms x 3
	Comment   string
}

// LoadXYZ reads all frames of an XYZ trajectory file.
func LoadXYZ(filename string) ([]XYZFrame, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadXYZ(f)
}

// ReadXYZ parses frames from r: an atom count line, a comment line,
// then one "symbol x y z" line per atom, repeated per frame.
func ReadXYZ(r io.Reader) ([]XYZFrame, error) {
	scanner := bufio.NewScanner(r)
	var frames []XYZFrame
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			return nil, fmt.Errorf("frame %d: bad atom count %q", len(frames), line)
		}
		if n < 1 {
			return nil, fmt.Errorf("frame %d: %w", len(frames), ErrEmptyStructure)
		}
		if !scanner.Scan() {
			return nil, fmt.Errorf("frame %d: missing comment line", len(frames))
		}
		frame := XYZFrame{
			Symbols:   make([]string, n),
			Positions: mat.NewDense(n, 3, nil),
			Comment:   scanner.Text(),
		}
		for i := 0; i < n; i++ {
			if !scanner.Scan() {
				return nil, fmt.Errorf("frame %d: truncated after %d of %d atoms",
					len(frames), i, n)
			}
			fields := strings.Fields(scanner.Text())
			if len(fields) < 4 {
				return nil, fmt.Errorf("frame %d atom %d: want symbol and 3 coordinates, got %q",
					len(frames), i, scanner.Text())
			}
			frame.Symbols[i] = fields[0]
			for c := 0; c < 3; c++ {
				v, err := strconv.ParseFloat(fields[c+1], 64)
				if err != nil {
					return nil, fmt.Errorf("frame %d atom %d: %w", len(frames), i, err)
				}
				frame.Positions.Set(i, c, v)
			}
		}
		frames = append(frames, frame)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return frames, nil
}

// ToStructure converts a frame into a model input: one-hot type
// attributes from the configured element set and a neighbor-list edge
// set within rMax.
func (fr XYZFrame) ToStructure(conf Config) (*Structure, error) {
	n := len(fr.Symbols)
	attrs := mat.NewDense(n, len(conf.Elements), nil)
	for i, sym := range fr.Symbols {
		t, err := conf.TypeOf(sym)
		if err != nil {
			return nil, err
		}
		attrs.Set(i, t, 1)
	}
	edges, shifts := NeighborList(fr.Positions, nil, conf.Model.RMax)
	return &Structure{
		Positions: fr.Positions,
		NodeAttrs: attrs,
		Edges:     edges,
		Shifts:    shifts,
		QTot:      conf.QTot,
	}, nil
}
