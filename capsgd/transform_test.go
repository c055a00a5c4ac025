package capsgd

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec64"
)

func TestClip(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	v := anydiff.NewVar(c.MakeVector(5))
	grad := anydiff.Grad{v: c.MakeVectorData([]float64{-3, -0.5, 0, 0.7, 2})}
	(&Clip{Bound: 1}).Transform(grad)
	expected := []float64{-1, -0.5, 0, 0.7, 1}
	if !reflect.DeepEqual(grad[v].Data(), expected) {
		t.Errorf("expected %v but got %v", expected, grad[v].Data())
	}
}

func TestAdamMarshal(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	vars := randomVars(c)
	adam := &Adam{Vars: vars}

	var inGrads []anydiff.Grad
	var outGrads []anydiff.Grad
	var checkpoints [][]byte
	for i := 0; i < 5; i++ {
		inGrad := randomGrad(vars)
		data, err := adam.MarshalBinary()
		if err != nil {
			t.Fatal(err)
		}
		outGrads = append(outGrads, copyGrad(adam.Transform(copyGrad(inGrad))))
		inGrads = append(inGrads, inGrad)
		checkpoints = append(checkpoints, data)
	}

	for _, i := range []int{2, 0, 3, 4, 1} {
		if err := adam.UnmarshalBinary(checkpoints[i]); err != nil {
			t.Fatal(err)
		}
		out := adam.Transform(copyGrad(inGrads[i]))
		if !reflect.DeepEqual(out, outGrads[i]) {
			t.Errorf("gradient %d came out wrong", i)
		}
	}
}

func TestChainMarshal(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	vars := randomVars(c)
	adam := &Adam{Vars: vars}
	chain := Chain{&Clip{Bound: 1}, adam}
	for i := 0; i < 3; i++ {
		chain.Transform(randomGrad(vars))
	}
	data, err := chain.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}

	restored := Chain{&Clip{Bound: 1}, &Adam{Vars: vars}}
	if err := restored.UnmarshalBinary(data); err != nil {
		t.Fatal(err)
	}
	grad := randomGrad(vars)
	expected := chain.Transform(copyGrad(grad))
	actual := restored.Transform(copyGrad(grad))
	if !reflect.DeepEqual(actual, expected) {
		t.Error("restored chain transforms differently")
	}

	if err := (&Adam{Vars: vars[1:]}).UnmarshalBinary(data); err == nil {
		t.Error("expected error for mismatched variables")
	}
	if err := (Chain{&Clip{Bound: 1}}).UnmarshalBinary(data); err == nil {
		t.Error("expected error without a marshaler")
	}
}

func randomVars(c anyvec.Creator) []*anydiff.Var {
	var vars []*anydiff.Var
	for i := 0; i < 10; i++ {
		vec := c.MakeVector(1 + rand.Intn(5))
		anyvec.Rand(vec, anyvec.Normal, nil)
		vars = append(vars, anydiff.NewVar(vec))
	}
	return vars
}

func randomGrad(vars []*anydiff.Var) anydiff.Grad {
	res := anydiff.Grad{}
	for _, v := range vars {
		vec := v.Vector.Creator().MakeVector(v.Vector.Len())
		anyvec.Rand(vec, anyvec.Normal, nil)
		res[v] = vec
	}
	return res
}
