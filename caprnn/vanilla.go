package caprnn

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
	"github.com/unixpickle/vidcap"
)

func init() {
	var v Vanilla
	serializer.RegisterTypedDeserializer(v.SerializerType(), DeserializeVanilla)
}

// Vanilla is a basic RNN cell:
//
//	h' = tanh(Wi*x + Ws*h + b)
type Vanilla struct {
	Gate *Gate
}

// NewVanilla creates a randomized Vanilla cell.
func NewVanilla(c anyvec.Creator, in, hidden int) *Vanilla {
	return &Vanilla{Gate: NewGate(c, in, hidden, vidcap.Tanh)}
}

// DeserializeVanilla deserializes a Vanilla cell.
func DeserializeVanilla(d []byte) (*Vanilla, error) {
	var g *Gate
	if err := serializer.DeserializeAny(d, &g); err != nil {
		return nil, essentials.AddCtx("deserialize Vanilla", err)
	}
	return &Vanilla{Gate: g}, nil
}

// Start returns a zero SingleState.
func (v *Vanilla) Start(n int) State {
	c := v.Gate.Biases.Vector.Creator()
	return &SingleState{H: zeroComponent(c, n, v.OutSize())}
}

// Step applies the cell.
func (v *Vanilla) Step(in anydiff.Res, s State, n int) (anydiff.Res, State) {
	h := v.Gate.Apply(in, s.Output(), n)
	return h, &SingleState{H: h}
}

// OutSize returns the hidden size.
func (v *Vanilla) OutSize() int {
	return v.Gate.OutCount
}

// Parameters returns the gate's parameters.
func (v *Vanilla) Parameters() []*anydiff.Var {
	return v.Gate.Parameters()
}

// SerializerType returns the unique ID used to serialize
// a Vanilla with the serializer package.
func (v *Vanilla) SerializerType() string {
	return "github.com/unixpickle/vidcap/caprnn.Vanilla"
}

// Serialize serializes the cell.
func (v *Vanilla) Serialize() ([]byte, error) {
	return serializer.SerializeAny(v.Gate)
}
