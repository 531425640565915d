package cartpole

import (
	"fmt"
	"math"

	env "github.com/samuelfneumann/goa3c/environment"
	ts "github.com/samuelfneumann/goa3c/timestep"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

const (
	FailAngle float64 = 12 * 2 * math.Pi / 360
)

// Balance implements the classic control Cartpole Balance task. In this
// Task, the goal of the agent is to balance the pole on the cart in
// an upright position for as long as possible.
//
// The reward is +1 for every timestep on which the pole is within the
// fail angle of upright, and 0 otherwise.
//
// Episodes end in a terminal state when the pole falls past the fail
// angle or the cart leaves the track, and are cut off after a step
// limit.
type Balance struct {
	env.Starter
	stepLimiter  *env.StepLimit
	stateLimiter *env.IntervalLimit
	failAngle    float64
}

// NewBalance creates and returns a new Balance task
func NewBalance(s env.Starter, episodeSteps int,
	failAngle float64) (*Balance, error) {
	if episodeSteps <= 0 {
		return nil, fmt.Errorf("newBalance: episode steps must be positive "+
			"\n\twant(>0)\n\thave(%v)", episodeSteps)
	}
	stepLimiter := env.NewStepLimit(episodeSteps)

	// Reaching either end of the track or letting the pole fall are
	// both terminal
	legal := []r1.Interval{
		{Min: -PositionBounds + 1e-9, Max: PositionBounds - 1e-9},
		{Min: -failAngle, Max: failAngle},
	}
	stateLimiter, err := env.NewIntervalLimit(legal, []int{0, 2},
		ts.TerminalStateReached)
	if err != nil {
		return nil, fmt.Errorf("newBalance: %v", err)
	}

	return &Balance{s, stepLimiter, stateLimiter, failAngle}, nil
}

// End checks if a TimeStep is the last in an episode. If so, it adjusts
// the TimeStep's StepType to timestep.Last and returns true. Otherwise,
// the function does not adjust the TimeStep and returns false.
func (b *Balance) End(t *ts.TimeStep) bool {
	if end := b.stateLimiter.End(t); end {
		return true
	}
	if end := b.stepLimiter.End(t); end {
		return true
	}
	return false
}

// GetReward returns the reward for transitioning to nextState
func (b *Balance) GetReward(nextState mat.Vector) float64 {
	// Angle of 0 is pointing straight up, so we want angles to be
	// less than the failAngle
	if math.Abs(nextState.AtVec(2)) <= b.failAngle {
		return 1.0
	}
	return 0.0
}
