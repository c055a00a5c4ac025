// Package capsgd drives stochastic gradient descent for
// the captioning model.
package capsgd

import (
	"errors"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/essentials"
)

// SGD performs stochastic gradient descent.
type SGD struct {
	// Fetcher loads each mini-batch.
	Fetcher Fetcher

	// Gradienter computes the untransformed gradient for
	// each mini-batch.
	Gradienter Gradienter

	// Transformer, if non-nil, is applied to each gradient
	// before the step.
	Transformer Transformer

	// Samples is the list of training samples.
	// It is shuffled whenever a pass over it completes.
	Samples SampleList

	// Rater determines the learning rate for each step.
	Rater Rater

	// StatusFunc, if non-nil, is called before every
	// iteration with the next mini-batch.
	StatusFunc func(b Batch)

	// StepFunc, if non-nil, is called after every update
	// with the number of steps taken so far.
	// An error from StepFunc stops training.
	StepFunc func(step int) error

	// BatchSize is the mini-batch size.
	// If it is 0, the entire sample list is used.
	BatchSize int

	// NumProcessed counts the samples passed to the
	// Gradienter, for computing the epoch.
	NumProcessed int

	// NumSteps counts the updates performed so far.
	// It may be set to resume numbering.
	NumSteps int
}

// Run runs SGD until the stopper indicates to stop or an
// error occurs.
func (s *SGD) Run(stopper Stopper) error {
	if s.Samples.Len() == 0 {
		return errors.New("run SGD: empty sample list")
	}
	idx := s.Samples.Len()
	for !stopper.Done() {
		if idx == s.Samples.Len() {
			Shuffle(s.Samples)
			idx = 0
		}
		batchSize := s.batchSize(s.Samples.Len() - idx)
		samples := s.Samples.Slice(idx, idx+batchSize)
		idx += batchSize

		batch, err := s.Fetcher.Fetch(samples)
		if err != nil {
			return essentials.AddCtx("run SGD", err)
		}

		if s.StatusFunc != nil {
			s.StatusFunc(batch)
		}

		grad := s.Gradienter.Gradient(batch)
		if s.Transformer != nil {
			grad = s.Transformer.Transform(grad)
		}

		epoch := float64(s.NumProcessed) / float64(s.Samples.Len())
		scaleGrad(grad, -s.Rater.Rate(epoch))
		grad.AddToVars()

		s.NumProcessed += batchSize
		s.NumSteps++

		if s.StepFunc != nil {
			if err := s.StepFunc(s.NumSteps); err != nil {
				return essentials.AddCtx("run SGD", err)
			}
		}
	}
	return nil
}

func (s *SGD) batchSize(remaining int) int {
	if s.BatchSize == 0 || s.BatchSize > remaining {
		return remaining
	}
	return s.BatchSize
}

func scaleGrad(g anydiff.Grad, s float64) {
	for _, v := range g {
		v.Scale(v.Creator().MakeNumeric(s))
	}
}

func copyGrad(g anydiff.Grad) anydiff.Grad {
	res := anydiff.Grad{}
	for k, v := range g {
		res[k] = v.Copy()
	}
	return res
}
