package experiment

import (
	"fmt"

	"github.com/aunum/log"
	"github.com/samuelfneumann/goa3c/agent/nonlinear/discrete/a3c"
	"github.com/samuelfneumann/goa3c/buffer/gae"
	env "github.com/samuelfneumann/goa3c/environment"
	"github.com/samuelfneumann/goa3c/experiment/trackers"
	ts "github.com/samuelfneumann/goa3c/timestep"
	"github.com/samuelfneumann/goa3c/utils/floatutils"
	"github.com/samuelfneumann/goa3c/utils/intutils"
	"github.com/samuelfneumann/goa3c/utils/plotutils"
	"gonum.org/v1/gonum/stat"
	G "gorgonia.org/gorgonia"
)

// Learner is a recurrent actor-critic which can be trained by a Worker.
// It is implemented by *a3c.ActorCritic.
type Learner interface {
	NewHidden() []float64
	Forward(state, hx []float64) (a3c.Step, error)
	CalcCost(newState, hx []float64, done bool, seg *gae.Segment,
		beta float64) (*a3c.Cost, error)
	Step(s G.Solver) error
}

// Worker runs a single A3C worker on a single environment. The worker
// collects rollout segments of at most segmentLength steps, threading
// the recurrent hidden state through each step, and after each segment
// updates the model with the gradient of the segment loss. The hidden
// state is reset to zero whenever an episode ends.
type Worker struct {
	env.Environment
	model  Learner
	solver G.Solver

	segmentLength int
	beta          float64

	step     ts.TimeStep
	hx       []float64
	seg      *gae.Segment
	episodes int

	scores   *trackers.Return
	trackers []trackers.Tracker
}

// NewWorker creates and returns a new Worker. The scores of all episodes
// are always tracked; additional Trackers are sent every TimeStep.
func NewWorker(e env.Environment, model Learner, s G.Solver,
	segmentLength int, beta float64, t ...trackers.Tracker) (*Worker,
	error) {
	if segmentLength <= 0 {
		return nil, fmt.Errorf("newWorker: segment length must be "+
			"positive \n\twant(>0)\n\thave(%v)", segmentLength)
	}

	w := &Worker{
		Environment:   e,
		model:         model,
		solver:        s,
		segmentLength: segmentLength,
		beta:          beta,
		hx:            model.NewHidden(),
		scores:        trackers.NewReturn(""),
	}
	w.trackers = append([]trackers.Tracker{w.scores}, t...)
	w.seg = gae.NewSegment(w.hx)

	if err := w.reset(); err != nil {
		return nil, fmt.Errorf("newWorker: %v", err)
	}
	return w, nil
}

// reset starts a new episode
func (w *Worker) reset() error {
	w.step = w.Environment.Reset()
	w.hx = w.model.NewHidden()
	return w.track(w.step)
}

// track sends a TimeStep to each Tracker
func (w *Worker) track(t ts.TimeStep) error {
	for _, tracker := range w.trackers {
		if err := tracker.Track(t); err != nil {
			return err
		}
	}
	return nil
}

// Episodes returns the number of finished episodes
func (w *Worker) Episodes() int {
	return w.episodes
}

// Scores returns the return of each finished episode
func (w *Worker) Scores() []float64 {
	return w.scores.Data()
}

// RunSegment collects a single rollout segment, which ends after
// segmentLength steps or at the end of the episode, and updates the
// model with it. The cost of the segment is returned.
func (w *Worker) RunSegment() (*a3c.Cost, error) {
	w.seg.Reset(w.hx)

	for w.seg.Len() < w.segmentLength && !w.step.Last() {
		state := w.step.Features()
		out, err := w.model.Forward(state, w.hx)
		if err != nil {
			return nil, fmt.Errorf("runSegment: %v", err)
		}

		next, _, err := w.Environment.Step(out.Action)
		if err != nil {
			return nil, fmt.Errorf("runSegment: %v", err)
		}
		if err := w.track(next); err != nil {
			return nil, fmt.Errorf("runSegment: %v", err)
		}

		w.seg.Store(state, out.Action, next.Reward, out.Value, out.LogProb)
		w.hx = out.Hidden
		w.step = next
	}

	// Episodes cut off by a step limit are bootstrapped
	done := w.step.Terminal()
	cost, err := w.model.CalcCost(w.step.Features(), w.hx, done, w.seg,
		w.beta)
	if err != nil {
		return nil, fmt.Errorf("runSegment: %v", err)
	}
	if !floatutils.IsFinite(cost.Loss) {
		return nil, fmt.Errorf("runSegment: non-finite loss %v", cost.Loss)
	}
	if err := w.model.Step(w.solver); err != nil {
		return nil, fmt.Errorf("runSegment: %v", err)
	}
	log.Debugf("segment of %v steps: loss %.4f actor %.4f critic %.4f "+
		"entropy %.4f", w.seg.Len(), cost.Loss, cost.Actor, cost.Critic,
		cost.Entropy)

	if w.step.Last() {
		w.episodes++
		w.logEpisode()
		if err := w.reset(); err != nil {
			return nil, fmt.Errorf("runSegment: %v", err)
		}
	}

	return cost, nil
}

// Run trains the model until the given number of episodes have
// finished
func (w *Worker) Run(episodes int) error {
	for w.episodes < episodes {
		if _, err := w.RunSegment(); err != nil {
			return fmt.Errorf("run: episode %v: %v", w.episodes, err)
		}
	}
	return nil
}

// Save saves the data of all Trackers passed to NewWorker
func (w *Worker) Save() error {
	for _, tracker := range w.trackers[1:] {
		if err := tracker.Save(); err != nil {
			return err
		}
	}
	return nil
}

// logEpisode logs the score of the last episode together with the
// running average score
func (w *Worker) logEpisode() {
	scores := w.scores.Data()
	if len(scores) == 0 {
		return
	}

	start := intutils.Max(0, len(scores)-plotutils.Window)
	avg := stat.Mean(scores[start:], nil)
	log.Infof("episode %d score %.1f average score %.1f", w.episodes,
		scores[len(scores)-1], avg)
}
