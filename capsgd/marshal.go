package capsgd

import (
	"errors"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec/anyvecsave"
	"github.com/unixpickle/serializer"
)

var errVarsGradMismatch = errors.New("variable list does not match gradients")

// marshalGradient produces one vector per variable, in
// order, or nothing for a nil gradient.
func marshalGradient(vars []*anydiff.Var, grad anydiff.Grad) ([]serializer.Serializer, error) {
	if grad == nil {
		return nil, nil
	}
	if len(vars) != len(grad) {
		return nil, errVarsGradMismatch
	}
	var res []serializer.Serializer
	for _, v := range vars {
		vec, ok := grad[v]
		if !ok {
			return nil, errVarsGradMismatch
		}
		res = append(res, &anyvecsave.S{Vector: vec})
	}
	return res, nil
}

func unmarshalGradient(vars []*anydiff.Var, objs []serializer.Serializer) (anydiff.Grad, error) {
	res := anydiff.Grad{}
	for i, v := range vars {
		saved, ok := objs[i].(*anyvecsave.S)
		if !ok {
			return nil, errors.New("expected a vector")
		}
		if saved.Vector.Len() != v.Vector.Len() {
			return nil, errors.New("bad vector length")
		}
		res[v] = saved.Vector
	}
	return res, nil
}
