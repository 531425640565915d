// Package a3c implements the recurrent actor-critic network of an
// Asynchronous Advantage Actor-Critic (A3C) worker.
//
// The network stores only its learned parameters. The recurrent hidden
// state is owned by the caller and threaded explicitly through each
// call, so that a single ActorCritic can serve many independent rollout
// sequences.
package a3c

import (
	"math"

	"github.com/samuelfneumann/goa3c/buffer/gae"
	"github.com/samuelfneumann/goa3c/initwfn"
	"github.com/samuelfneumann/goa3c/network"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Step is the result of a single forward pass of an ActorCritic
type Step struct {
	Action  int       // Sampled action
	Value   float64   // State value estimate
	LogProb float64   // Log-probability of Action
	Probs   []float64 // Probabilities of all actions
	Hidden  []float64 // Next recurrent hidden state
}

// ActorCritic implements a recurrent actor-critic network with a
// convolutional feature extractor, a GRU cell, and linear policy and
// state value heads. Actions are sampled from the categorical
// distribution given by the soft-maxed policy logits.
//
// An ActorCritic is not safe for concurrent use.
type ActorCritic struct {
	config Config
	layers *layers
	params *network.Params

	// Single step graph used for acting and bootstrapping. It shares
	// the parameter tensors with params, so solver updates are seen
	// immediately.
	g        *G.ExprGraph
	state    *G.Node
	hx       *G.Node
	logProbs *G.Node
	value    *G.Node
	next     *G.Node
	vm       G.VM

	src rand.Source
}

// New returns a new ActorCritic. The seed determines both the initial
// weights (when no InitWFn is configured) and the stream of sampled
// actions, so two ActorCritics created from the same Config and seed
// behave identically.
func New(c Config, seed uint64) (*ActorCritic, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	init := c.InitWFn
	if init == nil {
		var err error
		init, err = initwfn.NewFanInU(1.0, seed)
		if err != nil {
			return nil, configError("new", "could not create weight "+
				"initializer: %v", err)
		}
	}

	l, err := newLayers(c)
	if err != nil {
		return nil, configError("new", "%v", err)
	}
	params := network.NewParams()
	if err := l.register(params, init.InitWFn()); err != nil {
		return nil, configError("new", "%v", err)
	}

	a := &ActorCritic{
		config: c,
		layers: l,
		params: params,
		src:    rand.NewSource(seed),
	}
	if err := a.buildStepGraph(); err != nil {
		return nil, &ModelError{Op: "new", Err: err}
	}

	return a, nil
}

// buildStepGraph builds the single step graph used by Forward and Value
func (a *ActorCritic) buildStepGraph() error {
	a.g = G.NewGraph()
	b := a.params.Bind(a.g, true)

	a.state = G.NewTensor(
		a.g,
		tensor.Float64,
		4,
		G.WithShape(1, a.config.InputDims, a.config.SignalLength, 1),
		G.WithName("state"),
	)
	a.hx = G.NewMatrix(
		a.g,
		tensor.Float64,
		G.WithShape(1, a.config.Hidden),
		G.WithName("hx"),
	)

	var err error
	a.logProbs, a.value, a.next, err = a.layers.step(b, a.state, a.hx)
	if err != nil {
		return err
	}

	a.vm = G.NewTapeMachine(a.g)
	return nil
}

// Config returns the configuration of the ActorCritic
func (a *ActorCritic) Config() Config {
	return a.config
}

// NewHidden returns the zero hidden state that starts each episode
func (a *ActorCritic) NewHidden() []float64 {
	return make([]float64, a.config.Hidden)
}

// Seed restarts the action sampling stream from seed
func (a *ActorCritic) Seed(seed uint64) {
	a.src = rand.NewSource(seed)
}

// Forward runs the network for a single state and hidden state,
// samples an action from the policy, and returns the action, its
// log-probability, the state value estimate, and the next hidden state.
// Forward does not change the parameters of the network.
func (a *ActorCritic) Forward(state, hx []float64) (Step, error) {
	logProbs, value, next, err := a.run("forward", state, hx)
	if err != nil {
		return Step{}, err
	}

	probs := make([]float64, len(logProbs))
	for i := range logProbs {
		probs[i] = math.Exp(logProbs[i])
	}
	action := int(distuv.NewCategorical(probs, a.src).Rand())

	return Step{
		Action:  action,
		Value:   value,
		LogProb: logProbs[action],
		Probs:   probs,
		Hidden:  next,
	}, nil
}

// Value returns the state value estimate of state given the hidden
// state hx. No action is sampled.
func (a *ActorCritic) Value(state, hx []float64) (float64, error) {
	_, value, _, err := a.run("value", state, hx)
	return value, err
}

// run runs the single step graph
func (a *ActorCritic) run(op string, state, hx []float64) ([]float64,
	float64, []float64, error) {
	if len(state) != a.config.Features() {
		return nil, 0, nil, mismatch(op, "state", a.config.Features(),
			len(state))
	}
	if len(hx) != a.config.Hidden {
		return nil, 0, nil, mismatch(op, "hidden state", a.config.Hidden,
			len(hx))
	}

	stateTensor := tensor.New(
		tensor.WithShape(a.state.Shape()...),
		tensor.WithBacking(append([]float64(nil), state...)),
	)
	if err := G.Let(a.state, stateTensor); err != nil {
		return nil, 0, nil, &ModelError{Op: op, Err: err}
	}
	hxTensor := tensor.New(
		tensor.WithShape(a.hx.Shape()...),
		tensor.WithBacking(append([]float64(nil), hx...)),
	)
	if err := G.Let(a.hx, hxTensor); err != nil {
		return nil, 0, nil, &ModelError{Op: op, Err: err}
	}

	defer a.vm.Reset()
	if err := a.vm.RunAll(); err != nil {
		return nil, 0, nil, &ModelError{Op: op, Err: err}
	}

	logProbs := append([]float64(nil), a.logProbs.Value().Data().([]float64)...)
	value := a.value.Value().Data().([]float64)[0]
	next := append([]float64(nil), a.next.Value().Data().([]float64)...)

	return logProbs, value, next, nil
}

// CalcR computes the bootstrapped discounted return of each step of a
// segment. The values must hold one more element than rewards; the last
// element is the bootstrap value, which is ignored if done is true.
func (a *ActorCritic) CalcR(done bool, rewards, values []float64) ([]float64,
	error) {
	returns, err := gae.Returns(done, rewards, values, a.config.Gamma)
	if err != nil {
		return nil, &ModelError{Op: "calcR", Err: err}
	}
	return returns, nil
}

// Model returns the parameters of the network together with the
// gradients computed by the last call to CalcCost, so that a Gorgonia
// Solver can update the parameters.
func (a *ActorCritic) Model() []G.ValueGrad {
	return a.params.Model()
}

// Learnables returns the names of all learnable parameters
func (a *ActorCritic) Learnables() []string {
	return a.params.Names()
}

// Params returns the parameters of the network
func (a *ActorCritic) Params() *network.Params {
	return a.params
}

// Step updates the parameters with the gradients computed by the last
// call to CalcCost using solver s.
func (a *ActorCritic) Step(s G.Solver) error {
	if err := s.Step(a.params.Model()); err != nil {
		return &ModelError{Op: "step", Err: err}
	}
	return nil
}

// Set sets the parameters of the network to those of source, which
// must have been created from a Config with identical layer sizes.
func (a *ActorCritic) Set(source *ActorCritic) error {
	if err := a.params.Set(source.params); err != nil {
		return &ModelError{Op: "set", Err: err}
	}
	return nil
}

// Close releases the resources held by the network
func (a *ActorCritic) Close() error {
	return a.vm.Close()
}
