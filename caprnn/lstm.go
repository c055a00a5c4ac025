package caprnn

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
	"github.com/unixpickle/vidcap"
)

// lstmForgetBias is added to the forget gate's
// pre-activation at every step.
const lstmForgetBias = 1

func init() {
	var l LSTM
	serializer.RegisterTypedDeserializer(l.SerializerType(), DeserializeLSTM)
}

// LSTM is a long short-term memory cell without
// peepholes:
//
//	c' = c*sigmoid(f+1) + sigmoid(i)*tanh(j)
//	h' = tanh(c')*sigmoid(o)
type LSTM struct {
	InValue  *Gate
	In       *Gate
	Remember *Gate
	Output   *Gate
}

// NewLSTM creates a randomized LSTM.
func NewLSTM(c anyvec.Creator, in, hidden int) *LSTM {
	return &LSTM{
		InValue:  NewGate(c, in, hidden, vidcap.Tanh),
		In:       NewGate(c, in, hidden, vidcap.Sigmoid),
		Remember: NewGate(c, in, hidden, vidcap.Sigmoid),
		Output:   NewGate(c, in, hidden, vidcap.Sigmoid),
	}
}

// DeserializeLSTM deserializes an LSTM.
func DeserializeLSTM(d []byte) (*LSTM, error) {
	var inVal, in, rem, out *Gate
	if err := serializer.DeserializeAny(d, &inVal, &in, &rem, &out); err != nil {
		return nil, essentials.AddCtx("deserialize LSTM", err)
	}
	return &LSTM{InValue: inVal, In: in, Remember: rem, Output: out}, nil
}

// Start returns a zero PairedState.
func (l *LSTM) Start(n int) State {
	c := l.In.Biases.Vector.Creator()
	return &PairedState{
		C: zeroComponent(c, n, l.OutSize()),
		H: zeroComponent(c, n, l.OutSize()),
	}
}

// Step applies the cell.
func (l *LSTM) Step(in anydiff.Res, s State, n int) (anydiff.Res, State) {
	comps := s.Components()
	cell, h := comps[0], comps[1]
	c := cell.Output().Creator()

	inVal := l.InValue.Apply(in, h, n)
	inGate := l.In.Apply(in, h, n)
	outGate := l.Output.Apply(in, h, n)

	remember := vidcap.Sigmoid.Apply(anydiff.AddScalar(
		l.Remember.preActivation(in, h),
		c.MakeNumeric(lstmForgetBias),
	), n)

	newCell := anydiff.Add(anydiff.Mul(cell, remember), anydiff.Mul(inGate, inVal))
	newH := anydiff.Mul(anydiff.Tanh(newCell), outGate)
	return newH, &PairedState{C: newCell, H: newH}
}

// OutSize returns the hidden size.
func (l *LSTM) OutSize() int {
	return l.In.OutCount
}

// Parameters returns the parameters of every gate.
func (l *LSTM) Parameters() []*anydiff.Var {
	var res []*anydiff.Var
	for _, g := range []*Gate{l.InValue, l.In, l.Remember, l.Output} {
		res = append(res, g.Parameters()...)
	}
	return res
}

// SerializerType returns the unique ID used to serialize
// an LSTM with the serializer package.
func (l *LSTM) SerializerType() string {
	return "github.com/unixpickle/vidcap/caprnn.LSTM"
}

// Serialize serializes the LSTM.
func (l *LSTM) Serialize() ([]byte, error) {
	return serializer.SerializeAny(l.InValue, l.In, l.Remember, l.Output)
}
