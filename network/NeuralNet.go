// Package network implements neural network layers whose learnable
// parameters are stored outside of any single computational graph.
//
// A layer registers its parameters with a Params once. Each time a
// graph is built, the Params are bound to the graph and the layers add
// their operations using the bound nodes. This allows a single set of
// weights to be used both by a small graph that acts one step at a time
// and by larger graphs that are unrolled over a sequence of steps.
package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// Layer is a layer of a neural network
type Layer interface {
	// Name returns the prefix of all parameter names of the layer
	Name() string

	// Register adds the learnable parameters of the layer to p. Weights
	// are initialized with init, biases are initialized to zero.
	Register(p *Params, init G.InitWFn) error
}

// FeedForward is a Layer which maps a single input to a single output
type FeedForward interface {
	Layer

	// Fwd adds the forward pass of the layer to the graph of b
	Fwd(b *Binding, x *G.Node) (*G.Node, error)
}

// Register registers the parameters of all layers with p
func Register(p *Params, init G.InitWFn, layers ...Layer) error {
	for _, layer := range layers {
		if err := layer.Register(p, init); err != nil {
			return fmt.Errorf("register: could not register layer %v: %v",
				layer.Name(), err)
		}
	}
	return nil
}

// Stack adds the forward pass of each layer to the graph of b, feeding
// the output of each layer to the next.
func Stack(b *Binding, x *G.Node, layers ...FeedForward) (*G.Node, error) {
	var err error
	for _, layer := range layers {
		x, err = layer.Fwd(b, x)
		if err != nil {
			return nil, fmt.Errorf("stack: could not compute forward pass "+
				"of layer %v: %v", layer.Name(), err)
		}
	}
	return x, nil
}

// paramName returns the name of a parameter of a layer
func paramName(layer, param string) string {
	return layer + "/" + param
}

// node returns the bound node of a parameter of a layer
func node(b *Binding, layer, param string) (*G.Node, error) {
	n := b.Node(paramName(layer, param))
	if n == nil {
		return nil, fmt.Errorf("parameter %v not bound", paramName(layer,
			param))
	}
	return n, nil
}

// affine returns xW + b, with the bias row broadcast along the batch
// dimension
func affine(x, weights, bias *G.Node) (*G.Node, error) {
	out, err := G.Mul(x, weights)
	if err != nil {
		return nil, err
	}
	return G.BroadcastAdd(out, bias, nil, []byte{0})
}
