package caprnn

import (
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
	"github.com/unixpickle/vidcap"
)

func init() {
	var d DropoutCell
	serializer.RegisterTypedDeserializer(d.SerializerType(), DeserializeDropoutCell)
}

// DropoutCell applies dropout to the outputs of a cell.
// The state passed to the next step is left untouched.
type DropoutCell struct {
	Cell    Cell
	Dropout *vidcap.Dropout
}

// DeserializeDropoutCell deserializes a DropoutCell.
func DeserializeDropoutCell(d []byte) (*DropoutCell, error) {
	var inner serializer.Serializer
	var do *vidcap.Dropout
	if err := serializer.DeserializeAny(d, &inner, &do); err != nil {
		return nil, essentials.AddCtx("deserialize DropoutCell", err)
	}
	cell, ok := inner.(Cell)
	if !ok {
		return nil, fmt.Errorf("deserialize DropoutCell: not a Cell: %T", inner)
	}
	return &DropoutCell{Cell: cell, Dropout: do}, nil
}

// Start returns the wrapped cell's start state.
func (d *DropoutCell) Start(n int) State {
	return d.Cell.Start(n)
}

// Step applies the wrapped cell and drops out its output.
func (d *DropoutCell) Step(in anydiff.Res, s State, n int) (anydiff.Res, State) {
	out, next := d.Cell.Step(in, s, n)
	return d.Dropout.Apply(out, n), next
}

// OutSize returns the wrapped cell's output size.
func (d *DropoutCell) OutSize() int {
	return d.Cell.OutSize()
}

// Parameters returns the wrapped cell's parameters.
func (d *DropoutCell) Parameters() []*anydiff.Var {
	return d.Cell.Parameters()
}

// SerializerType returns the unique ID used to serialize
// a DropoutCell with the serializer package.
func (d *DropoutCell) SerializerType() string {
	return "github.com/unixpickle/vidcap/caprnn.DropoutCell"
}

// Serialize serializes the wrapped cell and the dropout
// settings.
func (d *DropoutCell) Serialize() ([]byte, error) {
	inner, ok := d.Cell.(serializer.Serializer)
	if !ok {
		return nil, fmt.Errorf("serialize DropoutCell: not a Serializer: %T", d.Cell)
	}
	return serializer.SerializeAny(inner, d.Dropout)
}
