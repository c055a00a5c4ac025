// Package caprnn implements the recurrent cells used by
// the caption encoder and decoder.
//
// Unlike a sequence-mapping RNN, cells here are stepped
// explicitly: every step takes a packed batch of inputs
// and a State and produces an output and the next State.
// Longer computations are composed with Unroll.
package caprnn

import (
	"errors"
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/vidcap"
)

// Cell types accepted by NewCell and NewStack.
const (
	CellRNN  = "rnn"
	CellLSTM = "lstm"
	CellGRU  = "gru"
)

// ErrUnknownCell is returned when a cell type is not one
// of the supported names.
var ErrUnknownCell = errors.New("unknown cell type")

var errNoLayers = errors.New("stack needs at least one layer")

// A Cell is a single recurrent layer.
type Cell interface {
	vidcap.Parameterizer

	// Start returns the zero state for a batch of n
	// sequences.
	Start(n int) State

	// Step advances a batch of n sequences by one
	// timestep.
	Step(in anydiff.Res, s State, n int) (anydiff.Res, State)

	// OutSize returns the size of each output vector.
	OutSize() int
}

// NewCell creates a randomized cell of the given type.
func NewCell(c anyvec.Creator, cellType string, in, hidden int) (Cell, error) {
	switch cellType {
	case CellRNN:
		return NewVanilla(c, in, hidden), nil
	case CellLSTM:
		return NewLSTM(c, in, hidden), nil
	case CellGRU:
		return NewGRU(c, in, hidden), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCell, cellType)
	}
}

func zeroComponent(c anyvec.Creator, n, size int) anydiff.Res {
	return anydiff.NewConst(c.MakeVector(n * size))
}
