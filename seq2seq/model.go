// Package seq2seq implements a video captioning model: a
// recurrent encoder reads per-frame features and a
// recurrent decoder, optionally attending over every
// encoder state, produces a caption one token at a time.
package seq2seq

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/vidcap"
	"github.com/unixpickle/vidcap/caprnn"
	"github.com/unixpickle/vidcap/checkpoint"
)

// A Model is an encoder-decoder captioning network.
type Model struct {
	Params Params
	Mode   vidcap.Mode

	// Projection maps each frame to the hidden size.
	Projection vidcap.Net

	Encoder caprnn.Stack
	Decoder caprnn.Stack

	Embedding *vidcap.Embedding

	// Output maps decoder outputs to vocabulary logits.
	Output *vidcap.FC

	// Attention is nil for the basic variant.
	Attention *Attention

	saver *checkpoint.Saver
}

// NewModel creates a randomly initialized model.
func NewModel(c anyvec.Creator, p *Params, mode vidcap.Mode) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, essentials.AddCtx("new model", err)
	}
	encoder, err := caprnn.NewStack(c, p.CellType, p.Hidden, p.Hidden, p.Layers,
		p.Dropout, mode)
	if err != nil {
		return nil, err
	}
	decoder, err := caprnn.NewStack(c, p.CellType, p.Hidden, p.Hidden, p.Layers,
		p.Dropout, mode)
	if err != nil {
		return nil, err
	}
	stddev := p.initStddev()
	m := &Model{
		Params:     *p,
		Mode:       mode,
		Projection: vidcap.Net{vidcap.NewFC(c, p.ImageDim, p.Hidden, stddev)},
		Encoder:    encoder,
		Decoder:    decoder,
		Embedding:  vidcap.NewEmbedding(c, p.VocabSize, p.Hidden, stddev),
		Output:     vidcap.NewFC(c, p.Hidden, p.VocabSize, stddev),
	}
	if p.Attention {
		m.Attention = NewAttention(c, p.Hidden, stddev)
	}
	return m, nil
}

// SetMode switches dropout on or off for both stacks.
func (m *Model) SetMode(mode vidcap.Mode) {
	m.Mode = mode
	m.Encoder.SetMode(m.Params.Dropout, mode)
	m.Decoder.SetMode(m.Params.Dropout, mode)
}

// Parameters returns every learnable variable in a fixed
// order.
func (m *Model) Parameters() []*anydiff.Var {
	res := vidcap.AllParameters(m.Projection, m.Encoder, m.Decoder, m.Embedding, m.Output)
	if m.Attention != nil {
		res = append(res, m.Attention.Parameters()...)
	}
	return res
}

// encode runs the encoder over a time-major video batch
// and passes every stack state, starting with the zero
// state, to f.
func (m *Model) encode(video anydiff.Res, n int, f func(states []caprnn.StackState) anydiff.Res) anydiff.Res {
	steps := m.Params.VideoSteps
	proj := m.Projection.Apply(video, n*steps)
	return anydiff.Pool(proj, func(proj anydiff.Res) anydiff.Res {
		stepLen := n * m.Params.Hidden
		return caprnn.Unroll(m.Encoder.Start(n), steps,
			func(t int, s caprnn.StackState) (anydiff.Res, caprnn.StackState) {
				in := anydiff.Slice(proj, t*stepLen, (t+1)*stepLen)
				return m.Encoder.Step(in, s, n)
			},
			func(states []caprnn.StackState, outs []anydiff.Res) anydiff.Res {
				return f(states)
			})
	})
}

// decode runs the decoder over a time-major batch of
// embedded tokens, starting from the final encoder state,
// and passes the outputs to f.
func (m *Model) decode(encoded []caprnn.StackState, embedded anydiff.Res, steps, n int,
	f func(outs []anydiff.Res) anydiff.Res) anydiff.Res {
	stepLen := n * m.Params.Hidden
	start := encoded[len(encoded)-1]
	input := func(t int) anydiff.Res {
		return anydiff.Slice(embedded, t*stepLen, (t+1)*stepLen)
	}
	done := func(states []caprnn.StackState, outs []anydiff.Res) anydiff.Res {
		return f(outs)
	}
	if m.Attention == nil {
		return caprnn.Unroll(start, steps,
			func(t int, s caprnn.StackState) (anydiff.Res, caprnn.StackState) {
				return m.Decoder.Step(input(t), s, n)
			}, done)
	}
	keys := m.Attention.Keys(encoded[1:], n)
	return PoolKeys(keys, func(keys *Keys) anydiff.Res {
		return caprnn.Unroll(start, steps,
			func(t int, s caprnn.StackState) (anydiff.Res, caprnn.StackState) {
				attended := m.Attention.AttendState(keys, s)
				return m.Decoder.Step(input(t), attended, n)
			}, done)
	})
}
