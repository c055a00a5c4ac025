package capsgd

import (
	"errors"
	"math"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

const (
	adamDefaultDecayRate1 = 0.9
	adamDefaultDecayRate2 = 0.999
	adamDefaultDamping    = 1e-8
)

// Adam implements the adaptive moments technique from
// https://arxiv.org/pdf/1412.6980.pdf.
type Adam struct {
	// Decay rates for the first and second moments.
	// If 0, the defaults from the paper are used.
	DecayRate1, DecayRate2 float64

	// Damping is used to prevent divisions by zero.
	// If it is 0, a default is used.
	Damping float64

	// Vars lists the variables in a fixed order.
	// It is only needed for marshalling.
	Vars []*anydiff.Var

	firstMoment  anydiff.Grad
	secondMoment anydiff.Grad
	iteration    float64
}

// Transform transforms the gradient using Adam.
//
// This is not thread-safe.
func (a *Adam) Transform(realGrad anydiff.Grad) anydiff.Grad {
	a.updateMoments(realGrad)

	a.iteration++
	scalingFactor := math.Sqrt(1-math.Pow(a.decayRate(2), a.iteration)) /
		(1 - math.Pow(a.decayRate(1), a.iteration))
	for variable, vec := range realGrad {
		vec.Set(a.firstMoment[variable])
		vec.Scale(vec.Creator().MakeNumeric(scalingFactor))

		divisor := a.secondMoment[variable].Copy()
		anyvec.Pow(divisor, divisor.Creator().MakeNumeric(0.5))
		divisor.AddScalar(divisor.Creator().MakeNumeric(a.damping()))
		vec.Div(divisor)
	}

	return realGrad
}

// MarshalBinary encodes the moments and iteration count.
func (a *Adam) MarshalBinary() ([]byte, error) {
	objs := []serializer.Serializer{serializer.Float64(a.iteration)}
	for _, moment := range []anydiff.Grad{a.firstMoment, a.secondMoment} {
		vecs, err := marshalGradient(a.Vars, moment)
		if err != nil {
			return nil, essentials.AddCtx("marshal Adam", err)
		}
		objs = append(objs, vecs...)
	}
	return serializer.SerializeSlice(objs)
}

// UnmarshalBinary restores state saved by MarshalBinary.
// The Vars field must already be set.
func (a *Adam) UnmarshalBinary(d []byte) error {
	objs, err := serializer.DeserializeSlice(d)
	if err != nil {
		return essentials.AddCtx("unmarshal Adam", err)
	}
	if len(objs) == 0 {
		return errors.New("unmarshal Adam: missing iteration")
	}
	iteration, ok := objs[0].(serializer.Float64)
	if !ok {
		return errors.New("unmarshal Adam: bad iteration")
	}
	objs = objs[1:]
	if len(objs) == 0 {
		a.firstMoment, a.secondMoment = nil, nil
		a.iteration = float64(iteration)
		return nil
	}
	if len(objs) != 2*len(a.Vars) {
		return essentials.AddCtx("unmarshal Adam", errVarsGradMismatch)
	}
	first, err := unmarshalGradient(a.Vars, objs[:len(a.Vars)])
	if err != nil {
		return essentials.AddCtx("unmarshal Adam", err)
	}
	second, err := unmarshalGradient(a.Vars, objs[len(a.Vars):])
	if err != nil {
		return essentials.AddCtx("unmarshal Adam", err)
	}
	a.firstMoment, a.secondMoment = first, second
	a.iteration = float64(iteration)
	return nil
}

func (a *Adam) updateMoments(grad anydiff.Grad) {
	if a.firstMoment == nil {
		a.firstMoment = copyGrad(grad)
		scaleGrad(a.firstMoment, 1-a.decayRate(1))
	} else {
		decayRate := a.decayRate(1)
		scaleGrad(a.firstMoment, decayRate)
		for variable, vec := range grad {
			v := vec.Copy()
			v.Scale(vec.Creator().MakeNumeric(1 - decayRate))
			a.firstMoment[variable].Add(v)
		}
	}

	if a.secondMoment == nil {
		a.secondMoment = copyGrad(grad)
		for _, v := range a.secondMoment {
			anyvec.Pow(v, v.Creator().MakeNumeric(2))
		}
		scaleGrad(a.secondMoment, 1-a.decayRate(2))
	} else {
		decayRate := a.decayRate(2)
		scaleGrad(a.secondMoment, decayRate)
		for variable, vec := range grad {
			v := vec.Copy()
			anyvec.Pow(v, v.Creator().MakeNumeric(2))
			v.Scale(v.Creator().MakeNumeric(1 - decayRate))
			a.secondMoment[variable].Add(v)
		}
	}
}

func (a *Adam) decayRate(moment int) float64 {
	switch moment {
	case 1:
		return valueOrDefault(a.DecayRate1, adamDefaultDecayRate1)
	case 2:
		return valueOrDefault(a.DecayRate2, adamDefaultDecayRate2)
	default:
		panic("invalid moment")
	}
}

func (a *Adam) damping() float64 {
	return valueOrDefault(a.Damping, adamDefaultDamping)
}

func valueOrDefault(value, def float64) float64 {
	if value == 0 {
		return def
	}
	return value
}
