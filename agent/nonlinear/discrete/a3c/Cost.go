package a3c

import (
	"fmt"

	"github.com/samuelfneumann/goa3c/buffer/gae"
	"github.com/samuelfneumann/goa3c/network"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Cost is the loss of a rollout segment computed by CalcCost
type Cost struct {
	Loss    float64 // Actor + Critic - β * Entropy
	Actor   float64 // -Σ gae_t log π(a_t)
	Critic  float64 // Mean squared error between values and returns
	Entropy float64 // Σ -log π(a_t) π(a_t)

	Bootstrap  float64   // Value of the state after the segment
	Returns    []float64 // Bootstrapped discounted returns
	Advantages []float64 // Generalized advantage estimates

	// LogProbs are the log-probabilities of the sampled actions when
	// the segment is replayed with the current parameters
	LogProbs []float64
}

// costGraph holds the graph of the segment loss
type costGraph struct {
	g       *G.ExprGraph
	loss    *G.Node
	actor   *G.Node
	critic  *G.Node
	entropy *G.Node

	// Log-probability of the sampled action at each step
	selected G.Nodes
}

// CalcCost computes the actor-critic loss of a rollout segment and
// stores its gradient with respect to every parameter, which can then
// be applied with Step.
//
// The segment must hold the observations, sampled actions, rewards,
// value estimates, and action log-probabilities of each step together
// with the hidden state it started from. The state newState reached
// after the last step and the hidden state hx after the last step are
// used to bootstrap the returns, unless done is true in which case the
// bootstrap value is 0. Returns and advantages are computed from the
// recorded values and are treated as constants. The segment is then
// replayed from its starting hidden state, so that the gradient flows
// back through the recurrent cell over the whole segment.
//
// The actor and entropy terms use the log-probabilities of the replay,
// reported in Cost.LogProbs, not seg.LogProbs. The two agree when the
// parameters have not changed since the segment was collected; if they
// have (for example after Set), the loss is that of the current
// parameters. seg.LogProbs is only checked for length.
//
// The loss is
//
//	actor   = -Σ gae_t log π(a_t)
//	critic  = mean((v_t - R_t)²)
//	entropy = Σ -log π(a_t) π(a_t)
//	loss    = actor + critic - beta * entropy
//
// No parameters are changed by CalcCost.
func (a *ActorCritic) CalcCost(newState, hx []float64, done bool,
	seg *gae.Segment, beta float64) (*Cost, error) {
	if err := seg.Validate(); err != nil {
		return nil, &ModelError{Op: "calcCost", Err: err}
	}
	if len(seg.Hidden) != a.config.Hidden {
		return nil, mismatch("calcCost", "segment hidden state",
			a.config.Hidden, len(seg.Hidden))
	}
	if width := len(seg.Observations[0]); width != a.config.Features() {
		return nil, mismatch("calcCost", "observation width",
			a.config.Features(), width)
	}
	for _, act := range seg.Actions {
		if act < 0 || act >= a.config.NActions {
			return nil, &ModelError{
				Op: "calcCost",
				Err: fmt.Errorf("action %v out of range [0, %v)", act,
					a.config.NActions),
			}
		}
	}

	var bootstrap float64
	if !done {
		var err error
		if bootstrap, err = a.Value(newState, hx); err != nil {
			return nil, err
		}
	}

	values := make([]float64, 0, seg.Len()+1)
	values = append(values, seg.Values...)
	values = append(values, bootstrap)

	returns, err := a.CalcR(done, seg.Rewards, values)
	if err != nil {
		return nil, err
	}
	deltas, err := gae.Deltas(seg.Rewards, values, a.config.Gamma)
	if err != nil {
		return nil, &ModelError{Op: "calcCost", Err: err}
	}
	advantages, err := gae.Advantages(deltas, a.config.Gamma*a.config.Tau,
		a.config.GAE)
	if err != nil {
		return nil, &ModelError{Op: "calcCost", Err: err}
	}

	cg, binding, err := a.buildCostGraph(seg, returns, advantages, beta)
	if err != nil {
		return nil, &ModelError{Op: "calcCost", Err: err}
	}

	if _, err := G.Grad(cg.loss, binding.Learnables()...); err != nil {
		return nil, &ModelError{
			Op:  "calcCost",
			Err: fmt.Errorf("could not compute gradient: %v", err),
		}
	}

	vm := G.NewTapeMachine(cg.g, G.BindDualValues(binding.Learnables()...))
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		return nil, &ModelError{Op: "calcCost", Err: err}
	}

	if err := a.params.StoreGrads(binding); err != nil {
		return nil, &ModelError{Op: "calcCost", Err: err}
	}

	logProbs := make([]float64, len(cg.selected))
	for t, node := range cg.selected {
		logProbs[t] = scalar(node)
	}

	return &Cost{
		Loss:       scalar(cg.loss),
		Actor:      scalar(cg.actor),
		Critic:     scalar(cg.critic),
		Entropy:    scalar(cg.entropy),
		Bootstrap:  bootstrap,
		Returns:    returns,
		Advantages: advantages,
		LogProbs:   logProbs,
	}, nil
}

// buildCostGraph builds a graph which replays the segment from its
// initial hidden state on a copy of the parameters and computes the
// segment loss. The loss terms of each step are reduced to scalars
// inside the unrolled loop and summed over the segment.
func (a *ActorCritic) buildCostGraph(seg *gae.Segment, returns,
	advantages []float64, beta float64) (*costGraph, *network.Binding,
	error) {
	n := seg.Len()
	g := G.NewGraph()
	binding := a.params.Bind(g, false)

	h := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(1, a.config.Hidden),
		G.WithName("hx0"),
		G.WithValue(tensor.New(
			tensor.WithShape(1, a.config.Hidden),
			tensor.WithBacking(append([]float64(nil), seg.Hidden...)),
		)),
	)

	selected := make(G.Nodes, n)
	actorTerms := make(G.Nodes, n)
	criticTerms := make(G.Nodes, n)
	entropyTerms := make(G.Nodes, n)
	for t := 0; t < n; t++ {
		shape := []int{1, a.config.InputDims, a.config.SignalLength, 1}
		state := G.NewTensor(
			g,
			tensor.Float64,
			4,
			G.WithShape(shape...),
			G.WithName(fmt.Sprintf("state%d", t)),
			G.WithValue(tensor.New(
				tensor.WithShape(shape...),
				tensor.WithBacking(append([]float64(nil),
					seg.Observations[t]...)),
			)),
		)

		var logProbs, value *G.Node
		var err error
		logProbs, value, h, err = a.layers.step(binding, state, h)
		if err != nil {
			return nil, nil, err
		}

		// Log-probability of the sampled action
		oneHot := make([]float64, a.config.NActions)
		oneHot[seg.Actions[t]] = 1
		mask := G.NewMatrix(
			g,
			tensor.Float64,
			G.WithShape(1, a.config.NActions),
			G.WithName(fmt.Sprintf("actionMask%d", t)),
			G.WithValue(tensor.New(
				tensor.WithShape(1, a.config.NActions),
				tensor.WithBacking(oneHot),
			)),
		)
		selected[t] = G.Must(G.Sum(G.Must(G.HadamardProd(logProbs, mask))))

		adv := scalarInput(g, fmt.Sprintf("advantage%d", t), advantages[t])
		actorTerms[t] = G.Must(G.Mul(adv, selected[t]))

		ret := scalarInput(g, fmt.Sprintf("return%d", t), returns[t])
		diff := G.Must(G.Sub(G.Must(G.Sum(value)), ret))
		criticTerms[t] = G.Must(G.Square(diff))

		entropyTerms[t] = G.Must(G.HadamardProd(selected[t],
			G.Must(G.Exp(selected[t]))))
	}

	actor := G.Must(G.Neg(G.Must(G.ReduceAdd(actorTerms))))

	length := scalarInput(g, "segmentLength", float64(n))
	critic := G.Must(G.Div(G.Must(G.ReduceAdd(criticTerms)), length))

	entropy := G.Must(G.Neg(G.Must(G.ReduceAdd(entropyTerms))))

	betaNode := scalarInput(g, "beta", beta)
	loss := G.Must(G.Add(actor, critic))
	loss = G.Must(G.Sub(loss, G.Must(G.HadamardProd(betaNode, entropy))))

	return &costGraph{
		g:        g,
		loss:     loss,
		actor:    actor,
		critic:   critic,
		entropy:  entropy,
		selected: selected,
	}, binding, nil
}

// scalarInput adds a constant scalar input to g
func scalarInput(g *G.ExprGraph, name string, value float64) *G.Node {
	return G.NewScalar(
		g,
		tensor.Float64,
		G.WithName(name),
		G.WithValue(value),
	)
}

// scalar returns the value of a scalar node
func scalar(n *G.Node) float64 {
	switch v := n.Value().Data().(type) {
	case float64:
		return v
	case []float64:
		return v[0]
	}
	panic(fmt.Sprintf("scalar: unexpected value %v", n.Value()))
}
