package capsgd

import "math/rand"

// Shuffle shuffles a list of samples.
func Shuffle(s SampleList) {
	for i := 0; i < s.Len(); i++ {
		j := i + rand.Intn(s.Len()-i)
		s.Swap(i, j)
	}
}

// A ConstRater is a Rater which always returns the same
// constant learning rate.
type ConstRater float64

// Rate returns float64(c).
func (c ConstRater) Rate(epoch float64) float64 {
	return float64(c)
}

// StepStopper stops after a fixed number of steps.
type StepStopper struct {
	Remaining int
}

// Done decrements the remaining count and reports if it
// has been exhausted.
func (s *StepStopper) Done() bool {
	if s.Remaining <= 0 {
		return true
	}
	s.Remaining--
	return false
}

// AnyStopper is done as soon as any of its stoppers is.
//
// Every stopper is consulted on every call, so counting
// stoppers stay in sync.
type AnyStopper []Stopper

// Done returns true if any stopper is done.
func (a AnyStopper) Done() bool {
	var done bool
	for _, s := range a {
		if s.Done() {
			done = true
		}
	}
	return done
}

// ChanStopper is done once its channel is closed, such as
// the channel from rip.NewRIP().Chan().
type ChanStopper <-chan struct{}

// Done checks if the channel is closed without blocking.
func (c ChanStopper) Done() bool {
	select {
	case <-c:
		return true
	default:
		return false
	}
}
