package capsgd

import (
	"errors"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
)

// Clip limits every gradient component to the range
// [-Bound, Bound].
type Clip struct {
	Bound float64
}

// Transform clips the gradient in place.
func (c *Clip) Transform(g anydiff.Grad) anydiff.Grad {
	for _, vec := range g {
		cr := vec.Creator()
		lower := cr.MakeVector(vec.Len())
		lower.AddScalar(cr.MakeNumeric(-c.Bound))
		anyvec.ElemMax(vec, lower)
		vec.Scale(cr.MakeNumeric(-1))
		anyvec.ElemMax(vec, lower)
		vec.Scale(cr.MakeNumeric(-1))
	}
	return g
}

// A Chain applies Transformers in order.
type Chain []Transformer

// Transform applies every transformer.
func (c Chain) Transform(g anydiff.Grad) anydiff.Grad {
	for _, t := range c {
		g = t.Transform(g)
	}
	return g
}

// MarshalBinary marshals the first TransformMarshaler in
// the chain, since the other transformers are stateless.
func (c Chain) MarshalBinary() ([]byte, error) {
	for _, t := range c {
		if m, ok := t.(TransformMarshaler); ok {
			return m.MarshalBinary()
		}
	}
	return nil, errNoMarshaler
}

// UnmarshalBinary restores the first TransformMarshaler
// in the chain.
func (c Chain) UnmarshalBinary(d []byte) error {
	for _, t := range c {
		if m, ok := t.(TransformMarshaler); ok {
			return m.UnmarshalBinary(d)
		}
	}
	return errNoMarshaler
}

var errNoMarshaler = errors.New("no marshalable transformer in chain")
