package gae

// Segment stores a single rollout segment of an A3C worker. The
// segment is filled step by step by the training loop, consumed once
// by the actor-critic loss, and then reset for the next segment.
//
// All per-step slices are aligned: index t of each slice refers to the
// same environment step. Hidden is the recurrent hidden state that was
// passed to the network on the first step of the segment.
type Segment struct {
	Hidden       []float64
	Observations [][]float64
	Actions      []int
	Rewards      []float64
	Values       []float64
	LogProbs     []float64
}

// NewSegment returns a new, empty Segment which starts from the
// recurrent hidden state hx.
func NewSegment(hx []float64) *Segment {
	s := &Segment{}
	s.Reset(hx)
	return s
}

// Store appends a single timestep observation, action, reward, value
// estimate, and action log-probability to the Segment.
func (s *Segment) Store(obs []float64, act int, rew, val, logProb float64) {
	s.Observations = append(s.Observations, append([]float64(nil), obs...))
	s.Actions = append(s.Actions, act)
	s.Rewards = append(s.Rewards, rew)
	s.Values = append(s.Values, val)
	s.LogProbs = append(s.LogProbs, logProb)
}

// Len returns the number of steps stored in the Segment
func (s *Segment) Len() int {
	return len(s.Rewards)
}

// Reset empties the Segment and sets the hidden state that the next
// segment starts from.
func (s *Segment) Reset(hx []float64) {
	s.Hidden = append([]float64(nil), hx...)
	s.Observations = s.Observations[:0]
	s.Actions = s.Actions[:0]
	s.Rewards = s.Rewards[:0]
	s.Values = s.Values[:0]
	s.LogProbs = s.LogProbs[:0]
}

// Validate returns an error if the Segment is empty or if its per-step
// slices are not aligned.
func (s *Segment) Validate() error {
	n := len(s.Rewards)
	if n == 0 {
		return &BufferError{Op: "validate", Err: errEmptySegment}
	}

	if len(s.Values) != n {
		return mismatch("validate", "values", n, len(s.Values))
	}
	if len(s.LogProbs) != n {
		return mismatch("validate", "log probabilities", n, len(s.LogProbs))
	}
	if len(s.Observations) != n {
		return mismatch("validate", "observations", n, len(s.Observations))
	}
	if len(s.Actions) != n {
		return mismatch("validate", "actions", n, len(s.Actions))
	}

	// All observations must share the same width
	width := len(s.Observations[0])
	for _, obs := range s.Observations[1:] {
		if len(obs) != width {
			return mismatch("validate", "observation width", width, len(obs))
		}
	}
	return nil
}
