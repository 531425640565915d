package a3c

import (
	"fmt"

	"github.com/samuelfneumann/goa3c/network"
	"github.com/samuelfneumann/goa3c/utils/op"
	G "gorgonia.org/gorgonia"
)

// layers holds the layers of the recurrent actor-critic network
type layers struct {
	convs []network.FeedForward
	gru   *network.GRUCell
	pi    *network.FC
	v     *network.FC
}

// newLayers creates the layers described by c
func newLayers(c Config) (*layers, error) {
	act, err := network.ParseActivation(c.Activation)
	if err != nil {
		return nil, err
	}

	convs := make([]network.FeedForward, c.ConvLayers)
	in := c.InputDims
	for i := range convs {
		conv, err := network.NewConv1D(fmt.Sprintf("conv%d", i+1), in,
			c.ConvChannels, c.Kernel, c.Stride, c.Padding, act)
		if err != nil {
			return nil, err
		}
		convs[i] = conv
		in = c.ConvChannels
	}

	gru, err := network.NewGRUCell("gru", c.ConvChannels*c.FeatureLength(),
		c.Hidden)
	if err != nil {
		return nil, err
	}

	pi, err := network.NewFC("pi", c.Hidden, c.NActions, true, nil)
	if err != nil {
		return nil, err
	}

	v, err := network.NewFC("v", c.Hidden, 1, true, nil)
	if err != nil {
		return nil, err
	}

	return &layers{convs: convs, gru: gru, pi: pi, v: v}, nil
}

// register adds the parameters of all layers to p in a fixed order
func (l *layers) register(p *network.Params, init G.InitWFn) error {
	all := make([]network.Layer, 0, len(l.convs)+3)
	for _, conv := range l.convs {
		all = append(all, conv)
	}
	all = append(all, l.gru, l.pi, l.v)

	return network.Register(p, init, all...)
}

// step adds a single step of the network to the graph of b. The state
// must have shape (batch, InputDims, SignalLength, 1) and the hidden
// state shape (batch, Hidden). The log-probabilities of all actions,
// the state values, and the next hidden state are returned.
func (l *layers) step(b *network.Binding, state, hx *G.Node) (logProbs,
	value, next *G.Node, err error) {
	features, err := network.Stack(b, state, l.convs...)
	if err != nil {
		return nil, nil, nil, err
	}
	if features, err = network.Flatten(features); err != nil {
		return nil, nil, nil, fmt.Errorf("step: could not flatten "+
			"features: %v", err)
	}

	if next, err = l.gru.Fwd(b, features, hx); err != nil {
		return nil, nil, nil, err
	}

	logits, err := l.pi.Fwd(b, next)
	if err != nil {
		return nil, nil, nil, err
	}
	logProbs = op.LogSoftmax(logits)

	if value, err = l.v.Fwd(b, next); err != nil {
		return nil, nil, nil, err
	}

	return logProbs, value, next, nil
}
