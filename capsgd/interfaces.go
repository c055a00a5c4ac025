package capsgd

import (
	"encoding"

	"github.com/unixpickle/anydiff"
)

// A Transformer transforms gradients.
//
// After its first call, a Transformer expects to see
// gradients containing the same variables.
//
// A Transformer may modify its input and return it, but
// it must not retain a reference to it.
type Transformer interface {
	Transform(g anydiff.Grad) anydiff.Grad
}

// TransformMarshaler is a Transformer with support for
// binary marshalling and unmarshalling.
type TransformMarshaler interface {
	Transformer
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// A Batch is a fetched, ready-to-use mini-batch.
type Batch interface{}

// A Fetcher loads the data for a list of samples.
type Fetcher interface {
	Fetch(s SampleList) (Batch, error)
}

// A Gradienter computes a gradient for a Batch.
//
// The same gradient instance may be re-used by successive
// calls to Gradient.
type Gradienter interface {
	Gradient(b Batch) anydiff.Grad
}

// A Rater determines the learning rate given the epoch
// number.
// Fractional epochs are possible.
type Rater interface {
	Rate(epoch float64) float64
}

// A SampleList represents a list of training samples.
type SampleList interface {
	Len() int
	Swap(i, j int)
	Slice(i, j int) SampleList
}

// A Stopper decides when SGD should stop.
type Stopper interface {
	Done() bool
}
