package caprnn

import "github.com/unixpickle/anydiff"

// A StepFunc advances a recurrence by one timestep t,
// returning the step's output and the next state.
type StepFunc func(t int, s StackState) (anydiff.Res, StackState)

// A DoneFunc reduces an unrolled computation.
//
// The states slice starts with the initial state and has
// one more entry than outs.
type DoneFunc func(states []StackState, outs []anydiff.Res) anydiff.Res

// Unroll composes n applications of step, starting from
// the given state, and passes everything to done.
//
// The initial state and every step's output and state are
// pooled, so step and done may reference them any number
// of times without repeating back-propagation.
func Unroll(start StackState, n int, step StepFunc, done DoneFunc) anydiff.Res {
	return anydiff.Pool(start.Pack(), func(packed anydiff.Res) anydiff.Res {
		s := start.Unpack(packed)
		return unrollFrom(s, 0, n, step, done, []StackState{s}, nil)
	})
}

func unrollFrom(s StackState, t, n int, step StepFunc, done DoneFunc,
	states []StackState, outs []anydiff.Res) anydiff.Res {
	if t == n {
		return done(states, outs)
	}
	out, next := step(t, s)
	outLen := out.Output().Len()
	joined := anydiff.Concat(out, next.Pack())
	return anydiff.Pool(joined, func(joined anydiff.Res) anydiff.Res {
		pooledOut := anydiff.Slice(joined, 0, outLen)
		pooledNext := next.Unpack(anydiff.Slice(joined, outLen, joined.Output().Len()))
		newStates := append(append([]StackState{}, states...), pooledNext)
		newOuts := append(append([]anydiff.Res{}, outs...), pooledOut)
		return unrollFrom(pooledNext, t+1, n, step, done, newStates, newOuts)
	})
}

// PoolAll pools every Res in a list and passes the pooled
// versions to f.
func PoolAll(rs []anydiff.Res, f func(pooled []anydiff.Res) anydiff.Res) anydiff.Res {
	if len(rs) == 0 {
		return f(nil)
	}
	return anydiff.Pool(rs[0], func(first anydiff.Res) anydiff.Res {
		return PoolAll(rs[1:], func(rest []anydiff.Res) anydiff.Res {
			return f(append([]anydiff.Res{first}, rest...))
		})
	})
}
