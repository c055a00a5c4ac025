package vidcap

import (
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvecsave"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var f FC
	serializer.RegisterTypedDeserializer(f.SerializerType(), DeserializeFC)
}

// FC is a dense projection y = x*W + b applied to every
// row of a batch.
//
// Weights is an InCount by OutCount matrix, so column j
// holds the weights feeding output j.
type FC struct {
	InCount  int
	OutCount int
	Weights  *anydiff.Var
	Biases   *anydiff.Var
}

// DeserializeFC attempts to deserialize an FC.
func DeserializeFC(d []byte) (*FC, error) {
	var in, out serializer.Int
	var weights, biases *anyvecsave.S
	if err := serializer.DeserializeAny(d, &in, &out, &weights, &biases); err != nil {
		return nil, essentials.AddCtx("deserialize FC", err)
	}
	if weights.Vector.Len() != int(in*out) || biases.Vector.Len() != int(out) {
		return nil, fmt.Errorf("deserialize FC: %dx%d layer has %d weights and %d biases",
			in, out, weights.Vector.Len(), biases.Vector.Len())
	}
	return &FC{
		InCount:  int(in),
		OutCount: int(out),
		Weights:  anydiff.NewVar(weights.Vector),
		Biases:   anydiff.NewVar(biases.Vector),
	}, nil
}

// NewFC creates an FC with weights drawn from a normal
// distribution truncated at two standard deviations.
// The biases start at zero.
func NewFC(c anyvec.Creator, in, out int, stddev float64) *FC {
	res := NewFCZero(c, in, out)
	res.Weights.Vector.Set(TruncatedNormal(c, in*out, stddev))
	return res
}

// NewFCZero creates an FC with all parameters set to 0.
func NewFCZero(c anyvec.Creator, in, out int) *FC {
	return &FC{
		InCount:  in,
		OutCount: out,
		Weights:  anydiff.NewVar(c.MakeVector(in * out)),
		Biases:   anydiff.NewVar(c.MakeVector(out)),
	}
}

// Apply projects a batch of n rows.
func (f *FC) Apply(in anydiff.Res, n int) anydiff.Res {
	if in.Output().Len() != n*f.InCount {
		panic(fmt.Sprintf("FC input: expected %d values (%d rows of %d) but got %d",
			n*f.InCount, n, f.InCount, in.Output().Len()))
	}
	rows := &anydiff.Matrix{Data: in, Rows: n, Cols: f.InCount}
	weights := &anydiff.Matrix{Data: f.Weights, Rows: f.InCount, Cols: f.OutCount}
	return anydiff.AddRepeated(anydiff.MatMul(false, false, rows, weights).Data, f.Biases)
}

// Parameters returns the weights and biases.
func (f *FC) Parameters() []*anydiff.Var {
	return []*anydiff.Var{f.Weights, f.Biases}
}

// SerializerType returns the unique ID used to serialize
// an FC with the serializer package.
func (f *FC) SerializerType() string {
	return "github.com/unixpickle/vidcap.FC"
}

// Serialize serializes the FC along with its shape.
func (f *FC) Serialize() ([]byte, error) {
	return serializer.SerializeAny(
		serializer.Int(f.InCount),
		serializer.Int(f.OutCount),
		&anyvecsave.S{Vector: f.Weights.Vector},
		&anyvecsave.S{Vector: f.Biases.Vector},
	)
}
