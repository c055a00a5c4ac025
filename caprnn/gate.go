package caprnn

import (
	"math"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvecsave"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
	"github.com/unixpickle/vidcap"
)

func init() {
	var g Gate
	serializer.RegisterTypedDeserializer(g.SerializerType(), DeserializeGate)
}

// A Gate computes an activation of the current input and
// a previous hidden state:
//
//	a(Wi*x + Ws*h + b)
type Gate struct {
	InCount      int
	OutCount     int
	InputWeights *anydiff.Var
	StateWeights *anydiff.Var
	Biases       *anydiff.Var
	Activation   vidcap.Activation
}

// NewGate creates a randomized gate.
// The weights are scaled so that the pre-activations
// have roughly unit variance.
func NewGate(c anyvec.Creator, in, out int, activation vidcap.Activation) *Gate {
	res := NewGateZero(c, in, out, activation)
	anyvec.Rand(res.InputWeights.Vector, anyvec.Normal, nil)
	anyvec.Rand(res.StateWeights.Vector, anyvec.Normal, nil)
	res.InputWeights.Vector.Scale(c.MakeNumeric(1 / math.Sqrt(float64(in+out))))
	res.StateWeights.Vector.Scale(c.MakeNumeric(1 / math.Sqrt(float64(in+out))))
	return res
}

// NewGateZero creates a gate with all parameters set to
// zero.
func NewGateZero(c anyvec.Creator, in, out int, activation vidcap.Activation) *Gate {
	return &Gate{
		InCount:      in,
		OutCount:     out,
		InputWeights: anydiff.NewVar(c.MakeVector(in * out)),
		StateWeights: anydiff.NewVar(c.MakeVector(out * out)),
		Biases:       anydiff.NewVar(c.MakeVector(out)),
		Activation:   activation,
	}
}

// DeserializeGate deserializes a Gate.
func DeserializeGate(d []byte) (*Gate, error) {
	var iw, sw, b *anyvecsave.S
	var a vidcap.Activation
	if err := serializer.DeserializeAny(d, &iw, &sw, &b, &a); err != nil {
		return nil, essentials.AddCtx("deserialize Gate", err)
	}
	out := b.Vector.Len()
	return &Gate{
		InCount:      iw.Vector.Len() / out,
		OutCount:     out,
		InputWeights: anydiff.NewVar(iw.Vector),
		StateWeights: anydiff.NewVar(sw.Vector),
		Biases:       anydiff.NewVar(b.Vector),
		Activation:   a,
	}, nil
}

// Apply computes the gate for a batch of inputs and
// states.
func (g *Gate) Apply(in, state anydiff.Res, n int) anydiff.Res {
	return g.Activation.Apply(g.preActivation(in, state), n)
}

func (g *Gate) preActivation(in, state anydiff.Res) anydiff.Res {
	inPart := applyWeights(g.InCount, g.OutCount, g.InputWeights, in)
	statePart := applyWeights(g.OutCount, g.OutCount, g.StateWeights, state)
	return anydiff.AddRepeated(anydiff.Add(inPart, statePart), g.Biases)
}

// Parameters returns the input weights, state weights,
// and biases.
func (g *Gate) Parameters() []*anydiff.Var {
	return []*anydiff.Var{g.InputWeights, g.StateWeights, g.Biases}
}

// SerializerType returns the unique ID used to serialize
// a Gate with the serializer package.
func (g *Gate) SerializerType() string {
	return "github.com/unixpickle/vidcap/caprnn.Gate"
}

// Serialize serializes the gate.
func (g *Gate) Serialize() ([]byte, error) {
	return serializer.SerializeAny(
		&anyvecsave.S{Vector: g.InputWeights.Vector},
		&anyvecsave.S{Vector: g.StateWeights.Vector},
		&anyvecsave.S{Vector: g.Biases.Vector},
		g.Activation,
	)
}

func applyWeights(in, out int, weights anydiff.Res, batch anydiff.Res) anydiff.Res {
	weightMat := &anydiff.Matrix{Data: weights, Rows: out, Cols: in}
	inMat := &anydiff.Matrix{Data: batch, Rows: batch.Output().Len() / in, Cols: in}
	return anydiff.MatMul(false, true, inMat, weightMat).Data
}
