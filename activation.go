package vidcap

import (
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/serializer"
)

func init() {
	var a Activation
	serializer.RegisterTypedDeserializer(a.SerializerType(), DeserializeActivation)
}

// An Activation is a standard activation function.
type Activation int

// These are the activations used by the recurrent cells
// and the output distribution.
const (
	Tanh Activation = iota
	Sigmoid
	LogSoftmax
	Softmax
)

// DeserializeActivation deserializes an Activation.
func DeserializeActivation(d []byte) (Activation, error) {
	if len(d) != 1 {
		return 0, fmt.Errorf("deserialize Activation: data length (%d) should be 1", len(d))
	}
	a := Activation(d[0])
	if a > Softmax {
		return 0, fmt.Errorf("deserialize Activation: unknown activation ID: %d", a)
	}
	return a, nil
}

// Apply applies the activation function.
//
// The softmax variants normalize each of the n packed
// vectors separately.
func (a Activation) Apply(in anydiff.Res, n int) anydiff.Res {
	switch a {
	case Tanh:
		return anydiff.Tanh(in)
	case Sigmoid:
		return anydiff.Sigmoid(in)
	case LogSoftmax:
		return anydiff.LogSoftmax(in, chunkSize(in, n))
	case Softmax:
		return anydiff.Exp(anydiff.LogSoftmax(in, chunkSize(in, n)))
	default:
		panic(fmt.Sprintf("unknown activation: %d", a))
	}
}

// SerializerType returns the unique ID used to serialize
// an Activation.
func (a Activation) SerializerType() string {
	return "github.com/unixpickle/vidcap.Activation"
}

// Serialize serializes the activation.
func (a Activation) Serialize() ([]byte, error) {
	return []byte{byte(a)}, nil
}

func chunkSize(in anydiff.Res, n int) int {
	inLen := in.Output().Len()
	if inLen%n != 0 {
		panic("batch size must divide input length")
	}
	return inLen / n
}
