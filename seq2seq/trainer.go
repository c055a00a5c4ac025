package seq2seq

import (
	"errors"
	"runtime"
	"sync"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/vidcap/capsgd"
)

// A SampleList is a capsgd.SampleList which can load its
// samples.
type SampleList interface {
	capsgd.SampleList
	GetSample(i int) (*Sample, error)
}

// A Trainer fetches batches and computes gradients for a
// Model.
type Trainer struct {
	Model *Model

	// Token indices used for teacher forcing.
	BOS int
	EOS int

	// LastCost is set to the loss of the most recent
	// gradient computation.
	LastCost anyvec.Numeric

	// MaxGos specifies the maximum goroutines to use
	// simultaneously for fetching samples.
	// If it is 0, GOMAXPROCS is used.
	MaxGos int
}

// Fetch loads a *Batch for the samples.
// The s argument must implement SampleList.
func (t *Trainer) Fetch(s capsgd.SampleList) (capsgd.Batch, error) {
	if s.Len() == 0 {
		return nil, errors.New("fetch batch: empty batch")
	}
	l := s.(SampleList)
	samples := make([]*Sample, l.Len())

	idxChan := make(chan int, l.Len())
	for i := 0; i < l.Len(); i++ {
		idxChan <- i
	}
	close(idxChan)

	maxGos := t.MaxGos
	if maxGos == 0 {
		maxGos = runtime.GOMAXPROCS(0)
	}

	var wg sync.WaitGroup
	errChan := make(chan error, maxGos)
	for i := 0; i < maxGos; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idxChan {
				sample, err := l.GetSample(i)
				if err != nil {
					errChan <- essentials.AddCtx("fetch batch", err)
					return
				}
				samples[i] = sample
			}
		}()
	}
	wg.Wait()
	close(errChan)
	if err := <-errChan; err != nil {
		return nil, err
	}

	c := t.Model.Embedding.Vectors.Vector.Creator()
	batch, err := NewBatch(c, &t.Model.Params, t.BOS, t.EOS, samples)
	if err != nil {
		return nil, essentials.AddCtx("fetch batch", err)
	}
	return batch, nil
}

// TotalCost computes the loss for a *Batch.
func (t *Trainer) TotalCost(b capsgd.Batch) anydiff.Res {
	return t.Model.Loss(b.(*Batch))
}

// Gradient computes the gradient of the loss with
// respect to every model parameter.
// It also sets t.LastCost.
func (t *Trainer) Gradient(b capsgd.Batch) anydiff.Grad {
	params := t.Model.Parameters()
	grad := anydiff.NewGrad(params...)
	cost := t.TotalCost(b)
	t.LastCost = anyvec.Sum(cost.Output())

	c := cost.Output().Creator()
	upstream := c.MakeVector(1)
	upstream.AddScalar(c.MakeNumeric(1))
	cost.Propagate(upstream, grad)
	return grad
}
