package seq2seq

import (
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
	"github.com/unixpickle/vidcap"
	"github.com/unixpickle/vidcap/caprnn"
)

func init() {
	var a Attention
	serializer.RegisterTypedDeserializer(a.SerializerType(), DeserializeAttention)
}

// Attention produces a decoder state by weighting every
// encoder state according to a query state.
//
// For a query q and encoder states e_1...e_N, the weight
// of e_t is the softmax over t of
//
//	OutTrans(QueryTrans(q) + EncTrans(e_t))
//
// where every transform is affine and OutTrans produces a
// scalar.
// The transforms are shared by every layer and state
// component, but each component is scored and normalized
// with its own query.
type Attention struct {
	QueryTrans vidcap.Layer
	EncTrans   vidcap.Layer
	OutTrans   vidcap.Layer
}

// NewAttention creates an attention module for the given
// hidden size.
func NewAttention(c anyvec.Creator, hidden int, stddev float64) *Attention {
	return &Attention{
		QueryTrans: vidcap.NewFC(c, hidden, hidden, stddev),
		EncTrans:   vidcap.NewFC(c, hidden, hidden, stddev),
		OutTrans:   vidcap.NewFC(c, hidden, 1, stddev),
	}
}

// DeserializeAttention deserializes an Attention.
func DeserializeAttention(d []byte) (*Attention, error) {
	var query, enc, out serializer.Serializer
	if err := serializer.DeserializeAny(d, &query, &enc, &out); err != nil {
		return nil, essentials.AddCtx("deserialize Attention", err)
	}
	var layers [3]vidcap.Layer
	for i, x := range []serializer.Serializer{query, enc, out} {
		layer, ok := x.(vidcap.Layer)
		if !ok {
			return nil, fmt.Errorf("deserialize Attention: not a Layer: %T", x)
		}
		layers[i] = layer
	}
	return &Attention{QueryTrans: layers[0], EncTrans: layers[1], OutTrans: layers[2]}, nil
}

// Parameters returns the parameters of every transform.
func (a *Attention) Parameters() []*anydiff.Var {
	return vidcap.AllParameters(a.QueryTrans, a.EncTrans, a.OutTrans)
}

// SerializerType returns the unique ID used to serialize
// an Attention with the serializer package.
func (a *Attention) SerializerType() string {
	return "github.com/unixpickle/vidcap/seq2seq.Attention"
}

// Serialize serializes the three transforms.
func (a *Attention) Serialize() ([]byte, error) {
	var slice []serializer.Serializer
	for _, layer := range []vidcap.Layer{a.QueryTrans, a.EncTrans, a.OutTrans} {
		ser, ok := layer.(serializer.Serializer)
		if !ok {
			return nil, fmt.Errorf("serialize Attention: not a Serializer: %T", layer)
		}
		slice = append(slice, ser)
	}
	return serializer.SerializeAny(slice[0], slice[1], slice[2])
}

// Keys stores the per-component encoder information
// needed to attend over a batch of encoded videos.
type Keys struct {
	Steps  int
	Batch  int
	Hidden int

	// Proj holds EncTrans of every encoder state for each
	// [layer][component], with rows ordered by step and
	// then by batch index.
	Proj [][]anydiff.Res

	// Rows holds, for each [layer][component][example],
	// a Steps by Hidden matrix of encoder states.
	Rows [][][]anydiff.Res
}

// Keys computes the encoder-side transforms for a list of
// encoder states, one per video step.
func (a *Attention) Keys(states []caprnn.StackState, n int) *Keys {
	template := states[0]
	hidden := template.Output().Output().Len() / n
	k := &Keys{Steps: len(states), Batch: n, Hidden: hidden}
	for layer, layerState := range template {
		var proj []anydiff.Res
		var rows [][]anydiff.Res
		for comp := range layerState.Components() {
			var all []anydiff.Res
			for _, s := range states {
				all = append(all, s[layer].Components()[comp])
			}
			joined := anydiff.Concat(all...)
			proj = append(proj, a.EncTrans.Apply(joined, n*len(states)))

			var compRows []anydiff.Res
			for b := 0; b < n; b++ {
				var exampleRows []anydiff.Res
				for _, x := range all {
					exampleRows = append(exampleRows, anydiff.Slice(x, b*hidden, (b+1)*hidden))
				}
				compRows = append(compRows, anydiff.Concat(exampleRows...))
			}
			rows = append(rows, compRows)
		}
		k.Proj = append(k.Proj, proj)
		k.Rows = append(k.Rows, rows)
	}
	return k
}

// PoolKeys pools every vector in k, since the keys are
// used once per decoding step.
func PoolKeys(k *Keys, f func(k *Keys) anydiff.Res) anydiff.Res {
	var all []anydiff.Res
	for layer := range k.Proj {
		for comp := range k.Proj[layer] {
			all = append(all, k.Proj[layer][comp])
			all = append(all, k.Rows[layer][comp]...)
		}
	}
	return caprnn.PoolAll(all, func(pooled []anydiff.Res) anydiff.Res {
		res := &Keys{Steps: k.Steps, Batch: k.Batch, Hidden: k.Hidden}
		for layer := range k.Proj {
			var proj []anydiff.Res
			var rows [][]anydiff.Res
			for range k.Proj[layer] {
				proj = append(proj, pooled[0])
				rows = append(rows, pooled[1:1+k.Batch])
				pooled = pooled[1+k.Batch:]
			}
			res.Proj = append(res.Proj, proj)
			res.Rows = append(res.Rows, rows)
		}
		return f(res)
	})
}

// Weights computes the attention weights for one state
// component.
// The result has one row of k.Steps weights per example.
func (a *Attention) Weights(k *Keys, layer, comp int, query anydiff.Res) anydiff.Res {
	n := k.Batch
	queryProj := a.QueryTrans.Apply(query, n)
	combined := anydiff.AddRepeated(k.Proj[layer][comp], queryProj)
	scores := a.OutTrans.Apply(combined, n*k.Steps)
	perExample := anydiff.Transpose(&anydiff.Matrix{
		Data: scores,
		Rows: k.Steps,
		Cols: n,
	})
	return vidcap.Softmax.Apply(perExample.Data, n)
}

// Attend computes one component of an attended state.
func (a *Attention) Attend(k *Keys, layer, comp int, query anydiff.Res) anydiff.Res {
	weights := a.Weights(k, layer, comp, query)
	return anydiff.Pool(weights, func(weights anydiff.Res) anydiff.Res {
		var results []anydiff.Res
		for b := 0; b < k.Batch; b++ {
			row := &anydiff.Matrix{
				Data: anydiff.Slice(weights, b*k.Steps, (b+1)*k.Steps),
				Rows: 1,
				Cols: k.Steps,
			}
			states := &anydiff.Matrix{
				Data: k.Rows[layer][comp][b],
				Rows: k.Steps,
				Cols: k.Hidden,
			}
			results = append(results, anydiff.MatMul(false, false, row, states).Data)
		}
		return anydiff.Concat(results...)
	})
}

// AttendState replaces every component of a decoder state
// with the encoder states attended by that component.
func (a *Attention) AttendState(k *Keys, s caprnn.StackState) caprnn.StackState {
	return s.Map(func(layer, comp int, r anydiff.Res) anydiff.Res {
		return a.Attend(k, layer, comp, r)
	})
}
