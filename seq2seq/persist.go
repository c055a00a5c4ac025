package seq2seq

import (
	"encoding"
	"errors"
	"fmt"

	"github.com/unixpickle/serializer"
	"github.com/unixpickle/vidcap"
	"github.com/unixpickle/vidcap/checkpoint"
)

// ErrNoSaver is returned by Save and Restore when no
// saver has been attached.
var ErrNoSaver = errors.New("no saver attached to model")

// AttachSaver sets the saver used by Save and Restore.
func (m *Model) AttachSaver(s *checkpoint.Saver) {
	m.saver = s
}

// Layers returns the serializable parts of the model, in
// the same order as Parameters.
func (m *Model) Layers() []serializer.Serializer {
	res := []serializer.Serializer{m.Projection, m.Encoder, m.Decoder, m.Embedding, m.Output}
	if m.Attention != nil {
		res = append(res, m.Attention)
	}
	return res
}

// Save writes the model's layers, and the optimizer state
// if opt is non-nil, as the checkpoint for step.
func (m *Model) Save(step int, opt encoding.BinaryMarshaler) error {
	if m.saver == nil {
		return ErrNoSaver
	}
	_, err := m.saver.Save(step, m.Layers(), opt)
	return err
}

// Restore loads the latest checkpoint, if there is one,
// and returns its step.
//
// The saved parameters are copied into the existing
// variables, so optimizers holding them stay valid.
func (m *Model) Restore(opt encoding.BinaryUnmarshaler) (int, error) {
	if m.saver == nil {
		return 0, ErrNoSaver
	}
	step, layers, err := m.saver.Restore(opt)
	if err != nil || layers == nil {
		return step, err
	}
	if err := m.loadLayers(layers); err != nil {
		return 0, err
	}
	return step, nil
}

func (m *Model) loadLayers(layers []serializer.Serializer) error {
	expected := m.Layers()
	if len(layers) != len(expected) {
		return fmt.Errorf("load checkpoint: expected %d layers but got %d",
			len(expected), len(layers))
	}
	objs := make([]interface{}, len(layers))
	for i, layer := range layers {
		if layer.SerializerType() != expected[i].SerializerType() {
			return fmt.Errorf("load checkpoint: layer %d is %s but model has %s", i,
				layer.SerializerType(), expected[i].SerializerType())
		}
		objs[i] = layer
	}
	saved := vidcap.AllParameters(objs...)
	params := m.Parameters()
	if len(saved) != len(params) {
		return fmt.Errorf("load checkpoint: expected %d parameters but got %d",
			len(params), len(saved))
	}
	for i, p := range params {
		if saved[i].Vector.Len() != p.Vector.Len() {
			return fmt.Errorf("load checkpoint: parameter %d has length %d but expected %d",
				i, saved[i].Vector.Len(), p.Vector.Len())
		}
	}
	for i, p := range params {
		p.Vector.Set(saved[i].Vector)
	}
	return nil
}
