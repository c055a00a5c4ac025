package caprnn

import (
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
	"github.com/unixpickle/vidcap"
)

func init() {
	var s Stack
	serializer.RegisterTypedDeserializer(s.SerializerType(), DeserializeStack)
}

// A Stack is a multi-layer recurrent network.
// The output of each layer is the input of the next.
type Stack []Cell

// NewStack creates a randomized stack of layers cells of
// the given type.
//
// If mode is vidcap.Training and dropout is non-zero,
// every cell's output is dropped out with the given rate.
func NewStack(c anyvec.Creator, cellType string, in, hidden, layers int,
	dropout float64, mode vidcap.Mode) (Stack, error) {
	if layers < 1 {
		return nil, essentials.AddCtx("new stack", errNoLayers)
	}
	var res Stack
	for i := 0; i < layers; i++ {
		inSize := hidden
		if i == 0 {
			inSize = in
		}
		cell, err := NewCell(c, cellType, inSize, hidden)
		if err != nil {
			return nil, err
		}
		res = append(res, cell)
	}
	res.SetMode(dropout, mode)
	return res, nil
}

// DeserializeStack deserializes a Stack.
func DeserializeStack(d []byte) (Stack, error) {
	slice, err := serializer.DeserializeSlice(d)
	if err != nil {
		return nil, essentials.AddCtx("deserialize Stack", err)
	}
	res := make(Stack, len(slice))
	for i, x := range slice {
		cell, ok := x.(Cell)
		if !ok {
			return nil, fmt.Errorf("deserialize Stack: not a Cell: %T", x)
		}
		res[i] = cell
	}
	return res, nil
}

// SetMode wraps or unwraps every cell in a DropoutCell
// according to the mode.
func (s Stack) SetMode(dropout float64, mode vidcap.Mode) {
	for i, cell := range s {
		if d, ok := cell.(*DropoutCell); ok {
			cell = d.Cell
		}
		do := vidcap.NewDropout(dropout, mode)
		if do.Enabled {
			cell = &DropoutCell{Cell: cell, Dropout: do}
		}
		s[i] = cell
	}
}

// Start returns the zero state for every layer.
func (s Stack) Start(n int) StackState {
	s.assertNonEmpty()
	res := make(StackState, len(s))
	for i, cell := range s {
		res[i] = cell.Start(n)
	}
	return res
}

// Step advances every layer by one timestep and returns
// the output of the last layer.
func (s Stack) Step(in anydiff.Res, st StackState, n int) (anydiff.Res, StackState) {
	s.assertNonEmpty()
	if len(st) != len(s) {
		panic("state does not match stack depth")
	}
	next := make(StackState, len(s))
	for i, cell := range s {
		in, next[i] = cell.Step(in, st[i], n)
	}
	return in, next
}

// OutSize returns the output size of the last layer.
func (s Stack) OutSize() int {
	s.assertNonEmpty()
	return s[len(s)-1].OutSize()
}

// Parameters returns the parameters of every layer.
func (s Stack) Parameters() []*anydiff.Var {
	var res []*anydiff.Var
	for _, cell := range s {
		res = append(res, cell.Parameters()...)
	}
	return res
}

func (s Stack) assertNonEmpty() {
	if len(s) == 0 {
		panic("empty Stack is invalid")
	}
}

// SerializerType returns the unique ID used to serialize
// a Stack with the serializer package.
func (s Stack) SerializerType() string {
	return "github.com/unixpickle/vidcap/caprnn.Stack"
}

// Serialize serializes every cell, including any dropout
// wrappers.
func (s Stack) Serialize() ([]byte, error) {
	var slice []serializer.Serializer
	for _, cell := range s {
		ser, ok := cell.(serializer.Serializer)
		if !ok {
			return nil, fmt.Errorf("serialize Stack: not a Serializer: %T", cell)
		}
		slice = append(slice, ser)
	}
	return serializer.SerializeSlice(slice)
}
