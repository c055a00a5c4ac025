package vidcap

import (
	"errors"
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvecsave"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var e Embedding
	serializer.RegisterTypedDeserializer(e.SerializerType(), DeserializeEmbedding)
}

// An Embedding maps token indices to learned vectors.
//
// Vectors is a Vocab by Dim matrix; row i is the vector
// for token i.
type Embedding struct {
	Vocab   int
	Dim     int
	Vectors *anydiff.Var
}

// NewEmbedding creates an embedding table initialized
// from a truncated normal distribution.
func NewEmbedding(c anyvec.Creator, vocab, dim int, stddev float64) *Embedding {
	return &Embedding{
		Vocab:   vocab,
		Dim:     dim,
		Vectors: anydiff.NewVar(TruncatedNormal(c, vocab*dim, stddev)),
	}
}

// DeserializeEmbedding deserializes an Embedding.
func DeserializeEmbedding(d []byte) (*Embedding, error) {
	var vocab, dim serializer.Int
	var vecs *anyvecsave.S
	if err := serializer.DeserializeAny(d, &vocab, &dim, &vecs); err != nil {
		return nil, essentials.AddCtx("deserialize Embedding", err)
	}
	if int(vocab)*int(dim) != vecs.Vector.Len() {
		return nil, errors.New("deserialize Embedding: invalid matrix dimensions")
	}
	return &Embedding{
		Vocab:   int(vocab),
		Dim:     int(dim),
		Vectors: anydiff.NewVar(vecs.Vector),
	}, nil
}

// Lookup produces a packed batch with one embedding
// vector per token.
//
// Tokens outside of [0, Vocab) cause a panic.
func (e *Embedding) Lookup(tokens []int) anydiff.Res {
	c := e.Vectors.Vector.Creator()
	for _, tok := range tokens {
		if tok < 0 || tok >= e.Vocab {
			panic(fmt.Sprintf("token %d out of range [0, %d)", tok, e.Vocab))
		}
	}
	oneHot := &anydiff.Matrix{
		Data: anydiff.NewConst(OneHot(c, tokens, e.Vocab)),
		Rows: len(tokens),
		Cols: e.Vocab,
	}
	table := &anydiff.Matrix{
		Data: e.Vectors,
		Rows: e.Vocab,
		Cols: e.Dim,
	}
	return anydiff.MatMul(false, false, oneHot, table).Data
}

// Parameters returns the embedding table.
func (e *Embedding) Parameters() []*anydiff.Var {
	return []*anydiff.Var{e.Vectors}
}

// SerializerType returns the unique ID used to serialize
// an Embedding with the serializer package.
func (e *Embedding) SerializerType() string {
	return "github.com/unixpickle/vidcap.Embedding"
}

// Serialize serializes the Embedding.
func (e *Embedding) Serialize() ([]byte, error) {
	return serializer.SerializeAny(
		serializer.Int(e.Vocab),
		serializer.Int(e.Dim),
		&anyvecsave.S{Vector: e.Vectors.Vector},
	)
}
