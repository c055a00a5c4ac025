package seq2seq

import (
	"fmt"

	"github.com/unixpickle/anyvec"
)

// A Sample is one training example.
type Sample struct {
	// Video holds the frame features, one frame after
	// another.
	Video []float64

	// Caption is a list of token indices, optionally
	// starting with BOS and ending with EOS.
	Caption []int
}

// A Batch is a packed mini-batch.
type Batch struct {
	N int

	// Video is packed time-major: [step][example][feature].
	Video anyvec.Vector

	// Inputs and Targets are time-major token lists of
	// CaptionSteps-1 steps each.
	Inputs  [][]int
	Targets [][]int
}

// NewBatch packs samples into a Batch, applying teacher
// forcing to each caption.
func NewBatch(c anyvec.Creator, p *Params, bos, eos int, samples []*Sample) (*Batch, error) {
	video, err := PackVideo(c, p.VideoSteps, p.ImageDim, samples)
	if err != nil {
		return nil, err
	}
	steps := p.CaptionSteps - 1
	b := &Batch{
		N:       len(samples),
		Video:   video,
		Inputs:  make([][]int, steps),
		Targets: make([][]int, steps),
	}
	for t := 0; t < steps; t++ {
		b.Inputs[t] = make([]int, len(samples))
		b.Targets[t] = make([]int, len(samples))
	}
	for i, s := range samples {
		in, target := TeacherForce(s.Caption, bos, eos, p.CaptionSteps)
		for t := 0; t < steps; t++ {
			b.Inputs[t][i] = in[t]
			b.Targets[t][i] = target[t]
		}
	}
	return b, nil
}

// PackVideo packs the videos of samples time-major.
func PackVideo(c anyvec.Creator, steps, dim int, samples []*Sample) (anyvec.Vector, error) {
	packed := make([]float64, steps*len(samples)*dim)
	for i, s := range samples {
		if len(s.Video) != steps*dim {
			return nil, fmt.Errorf("pack video: sample %d has %d values but expected %d",
				i, len(s.Video), steps*dim)
		}
		for t := 0; t < steps; t++ {
			dst := packed[(t*len(samples)+i)*dim:]
			copy(dst[:dim], s.Video[t*dim:(t+1)*dim])
		}
	}
	return c.MakeVectorData(c.MakeNumericList(packed)), nil
}

// TeacherForce pads a caption to steps tokens and splits
// it into decoder inputs and targets.
//
// The caption is prefixed with bos and terminated with
// eos if needed, truncated to steps tokens (keeping a
// final eos), and padded with eos.
// The inputs are all but the last token and the targets
// are all but the first, so both have steps-1 entries.
func TeacherForce(caption []int, bos, eos, steps int) (inputs, targets []int) {
	var y []int
	if len(caption) == 0 || caption[0] != bos {
		y = append(y, bos)
	}
	y = append(y, caption...)
	if y[len(y)-1] != eos {
		y = append(y, eos)
	}
	if len(y) > steps {
		y = y[:steps]
		y[steps-1] = eos
	}
	for len(y) < steps {
		y = append(y, eos)
	}
	return y[:steps-1], y[1:]
}

func flatten(tokens [][]int) []int {
	var res []int
	for _, x := range tokens {
		res = append(res, x...)
	}
	return res
}
