package vidcap

import (
	"fmt"
	"math/rand"

	"github.com/unixpickle/anyvec"
)

// truncation bound, in standard deviations
const truncationBound = 2

// TruncatedNormal produces a vector of n samples from a
// zero-mean normal distribution with the given standard
// deviation, re-drawing any sample that lands more than
// two deviations from the mean.
func TruncatedNormal(c anyvec.Creator, n int, stddev float64) anyvec.Vector {
	vals := make([]float64, n)
	for i := range vals {
		x := rand.NormFloat64()
		for x > truncationBound || x < -truncationBound {
			x = rand.NormFloat64()
		}
		vals[i] = x * stddev
	}
	return c.MakeVectorData(c.MakeNumericList(vals))
}

// Floats copies the contents of a vector into a slice of
// float64 values.
//
// Only float32 and float64 vectors are supported.
func Floats(v anyvec.Vector) []float64 {
	switch data := v.Data().(type) {
	case []float64:
		return data
	case []float32:
		res := make([]float64, len(data))
		for i, x := range data {
			res[i] = float64(x)
		}
		return res
	default:
		panic(fmt.Sprintf("unsupported numeric list: %T", data))
	}
}

// OneHot creates a packed batch of one-hot vectors, one
// per index, each of the given size.
func OneHot(c anyvec.Creator, indices []int, size int) anyvec.Vector {
	vals := make([]float64, len(indices)*size)
	for i, idx := range indices {
		if idx < 0 || idx >= size {
			panic(fmt.Sprintf("index %d out of range [0, %d)", idx, size))
		}
		vals[i*size+idx] = 1
	}
	return c.MakeVectorData(c.MakeNumericList(vals))
}
