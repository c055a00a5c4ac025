package caprnn

import (
	"reflect"
	"testing"

	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/serializer"
	"github.com/unixpickle/vidcap"
)

func TestCellSerialize(t *testing.T) {
	c := anyvec32.DefaultCreator{}
	for _, cellType := range cellTypes {
		t.Run(cellType, func(t *testing.T) {
			cell, err := NewCell(c, cellType, 3, 2)
			if err != nil {
				t.Fatal(err)
			}
			data, err := serializer.SerializeAny(cell.(serializer.Serializer))
			if err != nil {
				t.Fatal(err)
			}
			var newCell serializer.Serializer
			if err := serializer.DeserializeAny(data, &newCell); err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(cell, newCell) {
				t.Error("cells not equal")
			}
		})
	}
}

func TestStackSerialize(t *testing.T) {
	c := anyvec32.DefaultCreator{}
	for _, mode := range []vidcap.Mode{vidcap.Inference, vidcap.Training} {
		t.Run(mode.String(), func(t *testing.T) {
			stack, err := NewStack(c, CellLSTM, 3, 2, 2, 0.25, mode)
			if err != nil {
				t.Fatal(err)
			}
			data, err := serializer.SerializeAny(stack)
			if err != nil {
				t.Fatal(err)
			}
			var newStack Stack
			if err := serializer.DeserializeAny(data, &newStack); err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(stack, newStack) {
				t.Error("stacks not equal")
			}
			_, wrapped := newStack[0].(*DropoutCell)
			if wrapped != (mode == vidcap.Training) {
				t.Errorf("mode %s: dropout wrapper present = %v", mode, wrapped)
			}
		})
	}
}
