package seq2seq

import (
	"math/rand"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/vidcap"
	"github.com/unixpickle/vidcap/caprnn"
)

// A Selector picks a token from a probability
// distribution over the vocabulary.
type Selector interface {
	Select(probs []float64) int
}

// Greedy selects the most likely token.
type Greedy struct{}

// Select returns the index of the largest probability.
func (g Greedy) Select(probs []float64) int {
	var best int
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	return best
}

// A Sampler draws tokens at random from the distribution.
type Sampler struct {
	Rand *rand.Rand
}

// Select samples an index.
func (s *Sampler) Select(probs []float64) int {
	x := s.Rand.Float64()
	for i, p := range probs {
		x -= p
		if x < 0 {
			return i
		}
	}
	return len(probs) - 1
}

type genStatus int

const (
	awaitingFirst genStatus = iota
	generating
	terminated
)

// Generate produces captions for a time-major batch of n
// videos.
//
// Decoding starts from bos and feeds each selected token
// back into the decoder.
// An example stops at eos or after CaptionSteps tokens,
// and generation ends once every example has stopped.
// Each result includes the final eos, if one was chosen.
func (m *Model) Generate(video anyvec.Vector, n, bos, eos int, sel Selector) [][]int {
	encoded := m.encodeStates(video, n)
	state := encoded[len(encoded)-1]
	var keys *Keys
	if m.Attention != nil {
		keys = m.Attention.Keys(encoded[1:], n)
	}

	results := make([][]int, n)
	status := make([]genStatus, n)
	tokens := make([]int, n)
	for i := range tokens {
		tokens[i] = bos
	}

	for step := 0; step < m.Params.CaptionSteps; step++ {
		if allTerminated(status) {
			break
		}
		if keys != nil {
			state = m.Attention.AttendState(keys, state)
		}
		var out anydiff.Res
		out, state = m.Decoder.Step(m.Embedding.Lookup(tokens), state, n)
		logits := m.Output.Apply(out, n)
		probs := vidcap.Floats(vidcap.Softmax.Apply(logits, n).Output())
		vocab := m.Params.VocabSize
		for i := 0; i < n; i++ {
			if status[i] == terminated {
				continue
			}
			status[i] = generating
			tok := sel.Select(probs[i*vocab : (i+1)*vocab])
			results[i] = append(results[i], tok)
			tokens[i] = tok
			if tok == eos || len(results[i]) == m.Params.CaptionSteps {
				status[i] = terminated
			}
		}
	}
	return results
}

// TrimCaption returns the tokens before the first eos.
func TrimCaption(tokens []int, eos int) []int {
	for i, x := range tokens {
		if x == eos {
			return tokens[:i]
		}
	}
	return tokens
}

func (m *Model) encodeStates(video anyvec.Vector, n int) []caprnn.StackState {
	steps := m.Params.VideoSteps
	proj := m.Projection.Apply(anydiff.NewConst(video), n*steps)
	stepLen := n * m.Params.Hidden
	states := []caprnn.StackState{m.Encoder.Start(n)}
	for t := 0; t < steps; t++ {
		in := anydiff.Slice(proj, t*stepLen, (t+1)*stepLen)
		_, next := m.Encoder.Step(in, states[t], n)
		states = append(states, next)
	}
	return states
}

func allTerminated(status []genStatus) bool {
	for _, s := range status {
		if s != terminated {
			return false
		}
	}
	return true
}
