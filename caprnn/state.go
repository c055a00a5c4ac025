package caprnn

import (
	"fmt"

	"github.com/unixpickle/anydiff"
)

// A State is the per-layer state of a recurrent cell for
// an entire batch.
//
// Every component is a packed batch with one vector per
// sequence.
type State interface {
	// Components returns the parts of the state.
	// The last component is always the output.
	Components() []anydiff.Res

	// Output returns the part of the state which the
	// cell emits.
	Output() anydiff.Res

	// WithComponents creates a state of the same kind
	// with the given components.
	WithComponents(comps []anydiff.Res) State
}

// SingleState is the state of a cell which carries only
// its previous output, like a vanilla RNN or a GRU.
type SingleState struct {
	H anydiff.Res
}

// Components returns a single component.
func (s *SingleState) Components() []anydiff.Res {
	return []anydiff.Res{s.H}
}

// Output returns H.
func (s *SingleState) Output() anydiff.Res {
	return s.H
}

// WithComponents creates a new SingleState.
func (s *SingleState) WithComponents(comps []anydiff.Res) State {
	if len(comps) != 1 {
		panic(fmt.Sprintf("expected 1 component but got %d", len(comps)))
	}
	return &SingleState{H: comps[0]}
}

// PairedState is the state of an LSTM: a memory cell C
// and the last output H.
type PairedState struct {
	C anydiff.Res
	H anydiff.Res
}

// Components returns C and H, in that order.
func (p *PairedState) Components() []anydiff.Res {
	return []anydiff.Res{p.C, p.H}
}

// Output returns H.
func (p *PairedState) Output() anydiff.Res {
	return p.H
}

// WithComponents creates a new PairedState.
func (p *PairedState) WithComponents(comps []anydiff.Res) State {
	if len(comps) != 2 {
		panic(fmt.Sprintf("expected 2 components but got %d", len(comps)))
	}
	return &PairedState{C: comps[0], H: comps[1]}
}

// A StackState is the state of a Stack, with one State
// per layer.
type StackState []State

// NumComponents returns the total number of components
// across all layers.
func (s StackState) NumComponents() int {
	var res int
	for _, layer := range s {
		res += len(layer.Components())
	}
	return res
}

// Output returns the output of the last layer.
func (s StackState) Output() anydiff.Res {
	return s[len(s)-1].Output()
}

// Map creates a new StackState by transforming every
// component.
// The function receives the layer and component index.
func (s StackState) Map(f func(layer, comp int, r anydiff.Res) anydiff.Res) StackState {
	res := make(StackState, len(s))
	for i, layer := range s {
		comps := layer.Components()
		newComps := make([]anydiff.Res, len(comps))
		for j, c := range comps {
			newComps[j] = f(i, j, c)
		}
		res[i] = layer.WithComponents(newComps)
	}
	return res
}

// Pack concatenates every component into one vector, so
// that the whole state may be pooled as a single node.
func (s StackState) Pack() anydiff.Res {
	var all []anydiff.Res
	for _, layer := range s {
		all = append(all, layer.Components()...)
	}
	return anydiff.Concat(all...)
}

// Unpack splits a vector produced by Pack into a state
// shaped like s.
func (s StackState) Unpack(packed anydiff.Res) StackState {
	var offset int
	res := s.Map(func(layer, comp int, r anydiff.Res) anydiff.Res {
		size := r.Output().Len()
		part := anydiff.Slice(packed, offset, offset+size)
		offset += size
		return part
	})
	if offset != packed.Output().Len() {
		panic(fmt.Sprintf("packed state has length %d but expected %d",
			packed.Output().Len(), offset))
	}
	return res
}
