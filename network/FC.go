package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// FC implements a fully connected layer. The input to an FC layer must
// be a matrix with one row per sample.
type FC struct {
	name string
	in   int
	out  int
	bias bool
	act  *Activation
}

// NewFC returns a new fully connected layer. A nil act is treated as
// the identity.
func NewFC(name string, in, out int, bias bool, act *Activation) (*FC, error) {
	if in <= 0 || out <= 0 {
		return nil, fmt.Errorf("newFC: layer %v must have positive input "+
			"and output sizes, have (%v, %v)", name, in, out)
	}
	return &FC{name: name, in: in, out: out, bias: bias, act: act}, nil
}

// Name returns the name of the layer
func (f *FC) Name() string {
	return f.name
}

// Out returns the number of output units
func (f *FC) Out() int {
	return f.out
}

// Register adds the weights and bias of the layer to p
func (f *FC) Register(p *Params, init G.InitWFn) error {
	if err := p.Add(paramName(f.name, "weights"), init, f.in,
		f.out); err != nil {
		return err
	}
	if f.bias {
		return p.Add(paramName(f.name, "bias"), G.Zeroes(), 1, f.out)
	}
	return nil
}

// Fwd adds the forward pass of the layer to the graph of b
func (f *FC) Fwd(b *Binding, x *G.Node) (*G.Node, error) {
	weights, err := node(b, f.name, "weights")
	if err != nil {
		return nil, fmt.Errorf("fwd: %v", err)
	}

	if x, err = G.Mul(x, weights); err != nil {
		return nil, fmt.Errorf("fwd: %v", err)
	}

	if f.bias {
		bias, err := node(b, f.name, "bias")
		if err != nil {
			return nil, fmt.Errorf("fwd: %v", err)
		}

		// Broadcast the bias weights to all samples along the batch
		// dimension
		if x, err = G.BroadcastAdd(x, bias, nil, []byte{0}); err != nil {
			return nil, fmt.Errorf("fwd: %v", err)
		}
	}

	return f.act.fwd(x)
}
