package seq2seq

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/vidcap"
	"github.com/unixpickle/vidcap/caprnn"
)

// Loss computes the teacher-forced cross-entropy of a
// batch: the sum over time of each example's loss,
// averaged over the batch.
func (m *Model) Loss(b *Batch) anydiff.Res {
	c := b.Video.Creator()
	n := b.N
	steps := len(b.Inputs)
	embedded := m.Embedding.Lookup(flatten(b.Inputs))
	targets := anydiff.NewConst(vidcap.OneHot(c, flatten(b.Targets), m.Params.VocabSize))
	return anydiff.Pool(embedded, func(embedded anydiff.Res) anydiff.Res {
		return m.encode(anydiff.NewConst(b.Video), n,
			func(encoded []caprnn.StackState) anydiff.Res {
				return m.decode(encoded, embedded, steps, n,
					func(outs []anydiff.Res) anydiff.Res {
						logits := m.Output.Apply(anydiff.Concat(outs...), n*steps)
						costs := vidcap.SoftmaxCE{}.Cost(targets, logits, n*steps)
						return anydiff.Scale(anydiff.Sum(costs), c.MakeNumeric(1/float64(n)))
					})
			})
	})
}
