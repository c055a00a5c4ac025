package vidcap

import "github.com/unixpickle/anydiff"

// A Cost provides a way to measure the amount of error
// from the output of a neural network.
//
// Just like regular Layers, a Cost function is batched.
// It takes a packed batch of desired outputs and actual
// outputs, and produces a batch of costs.
type Cost interface {
	Cost(desired, actual anydiff.Res, n int) anydiff.Res
}

// DotCost computes the cost by taking the dot product of
// the desired and actual outputs, and then negating it.
//
// When you dot the output of a LogSoftmax with the
// desired probabilities, you get the cross-entropy.
type DotCost struct{}

// Cost takes the dot product of each actual output with
// each desired output, negates it, and uses that as the
// cost.
func (d DotCost) Cost(desired, actual anydiff.Res, n int) anydiff.Res {
	comb := anydiff.Mul(desired, actual)
	dots := anydiff.SumCols(&anydiff.Matrix{
		Data: comb,
		Rows: n,
		Cols: comb.Output().Len() / n,
	})
	return anydiff.Scale(dots, dots.Output().Creator().MakeNumeric(-1))
}

// SoftmaxCE combines a softmax over raw logits with the
// cross-entropy against the desired distributions.
//
// The desired outputs are usually one-hot vectors.
type SoftmaxCE struct{}

// Cost produces one cross-entropy value per row.
func (s SoftmaxCE) Cost(desired, logits anydiff.Res, n int) anydiff.Res {
	return DotCost{}.Cost(desired, LogSoftmax.Apply(logits, n), n)
}
