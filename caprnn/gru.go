package caprnn

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
	"github.com/unixpickle/vidcap"
)

// gruGateBias is the initial bias of the reset and update
// gates.
const gruGateBias = 1

func init() {
	var g GRU
	serializer.RegisterTypedDeserializer(g.SerializerType(), DeserializeGRU)
}

// GRU is a gated recurrent unit:
//
//	r, u = sigmoid(W[x,h] + b)
//	c = tanh(Wc[x, r*h] + bc)
//	h' = u*h + (1-u)*c
type GRU struct {
	Reset     *Gate
	Update    *Gate
	Candidate *Gate
}

// NewGRU creates a randomized GRU.
// The reset and update gates start out biased towards 1.
func NewGRU(c anyvec.Creator, in, hidden int) *GRU {
	res := &GRU{
		Reset:     NewGate(c, in, hidden, vidcap.Sigmoid),
		Update:    NewGate(c, in, hidden, vidcap.Sigmoid),
		Candidate: NewGate(c, in, hidden, vidcap.Tanh),
	}
	res.Reset.Biases.Vector.AddScalar(c.MakeNumeric(gruGateBias))
	res.Update.Biases.Vector.AddScalar(c.MakeNumeric(gruGateBias))
	return res
}

// DeserializeGRU deserializes a GRU.
func DeserializeGRU(d []byte) (*GRU, error) {
	var reset, update, cand *Gate
	if err := serializer.DeserializeAny(d, &reset, &update, &cand); err != nil {
		return nil, essentials.AddCtx("deserialize GRU", err)
	}
	return &GRU{Reset: reset, Update: update, Candidate: cand}, nil
}

// Start returns a zero SingleState.
func (g *GRU) Start(n int) State {
	c := g.Update.Biases.Vector.Creator()
	return &SingleState{H: zeroComponent(c, n, g.OutSize())}
}

// Step applies the cell.
func (g *GRU) Step(in anydiff.Res, s State, n int) (anydiff.Res, State) {
	h := s.Output()
	reset := g.Reset.Apply(in, h, n)
	update := g.Update.Apply(in, h, n)
	candidate := g.Candidate.Apply(in, anydiff.Mul(reset, h), n)
	newH := anydiff.Pool(update, func(update anydiff.Res) anydiff.Res {
		return anydiff.Add(
			anydiff.Mul(update, h),
			anydiff.Mul(anydiff.Complement(update), candidate),
		)
	})
	return newH, &SingleState{H: newH}
}

// OutSize returns the hidden size.
func (g *GRU) OutSize() int {
	return g.Update.OutCount
}

// Parameters returns the parameters of every gate.
func (g *GRU) Parameters() []*anydiff.Var {
	var res []*anydiff.Var
	for _, gate := range []*Gate{g.Reset, g.Update, g.Candidate} {
		res = append(res, gate.Parameters()...)
	}
	return res
}

// SerializerType returns the unique ID used to serialize
// a GRU with the serializer package.
func (g *GRU) SerializerType() string {
	return "github.com/unixpickle/vidcap/caprnn.GRU"
}

// Serialize serializes the GRU.
func (g *GRU) Serialize() ([]byte, error) {
	return serializer.SerializeAny(g.Reset, g.Update, g.Candidate)
}
