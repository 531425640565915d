package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// gru gate parameter names, for the input and hidden projections of the
// reset, update, and new gates
var (
	gruInputWeights  = []string{"w_ir", "w_iz", "w_in"}
	gruHiddenWeights = []string{"w_hr", "w_hz", "w_hn"}
	gruInputBias     = []string{"b_ir", "b_iz", "b_in"}
	gruHiddenBias    = []string{"b_hr", "b_hz", "b_hn"}
)

// GRUCell implements a single step of a gated recurrent unit:
//
//	r = σ(x W_ir + b_ir + h W_hr + b_hr)
//	z = σ(x W_iz + b_iz + h W_hz + b_hz)
//	n = tanh(x W_in + b_in + r ⊙ (h W_hn + b_hn))
//	h' = (1 - z) ⊙ n + z ⊙ h
//
// Both x and h are matrices with one row per sample.
type GRUCell struct {
	name   string
	in     int
	hidden int
}

// NewGRUCell returns a new GRUCell
func NewGRUCell(name string, in, hidden int) (*GRUCell, error) {
	if in <= 0 || hidden <= 0 {
		return nil, fmt.Errorf("newGRUCell: cell %v must have positive "+
			"input and hidden sizes, have (%v, %v)", name, in, hidden)
	}
	return &GRUCell{name: name, in: in, hidden: hidden}, nil
}

// Name returns the name of the cell
func (c *GRUCell) Name() string {
	return c.name
}

// Hidden returns the size of the hidden state
func (c *GRUCell) Hidden() int {
	return c.hidden
}

// Register adds the weights and biases of all gates to p
func (c *GRUCell) Register(p *Params, init G.InitWFn) error {
	for i := range gruInputWeights {
		if err := p.Add(paramName(c.name, gruInputWeights[i]), init,
			c.in, c.hidden); err != nil {
			return err
		}
		if err := p.Add(paramName(c.name, gruHiddenWeights[i]), init,
			c.hidden, c.hidden); err != nil {
			return err
		}
		if err := p.Add(paramName(c.name, gruInputBias[i]), G.Zeroes(),
			1, c.hidden); err != nil {
			return err
		}
		if err := p.Add(paramName(c.name, gruHiddenBias[i]), G.Zeroes(),
			1, c.hidden); err != nil {
			return err
		}
	}
	return nil
}

// Fwd adds a single step of the cell to the graph of b and returns the
// next hidden state
func (c *GRUCell) Fwd(b *Binding, x, h *G.Node) (*G.Node, error) {
	var inputProj, hiddenProj [3]*G.Node
	for i := range inputProj {
		var err error
		inputProj[i], err = c.project(b, x, gruInputWeights[i],
			gruInputBias[i])
		if err != nil {
			return nil, fmt.Errorf("fwd: %v", err)
		}
		hiddenProj[i], err = c.project(b, h, gruHiddenWeights[i],
			gruHiddenBias[i])
		if err != nil {
			return nil, fmt.Errorf("fwd: %v", err)
		}
	}

	r := G.Must(G.Sigmoid(G.Must(G.Add(inputProj[0], hiddenProj[0]))))
	z := G.Must(G.Sigmoid(G.Must(G.Add(inputProj[1], hiddenProj[1]))))

	n := G.Must(G.HadamardProd(r, hiddenProj[2]))
	n = G.Must(G.Tanh(G.Must(G.Add(inputProj[2], n))))

	// (1 - z) ⊙ n + z ⊙ h == n + z ⊙ (h - n)
	return G.Add(n, G.Must(G.HadamardProd(z, G.Must(G.Sub(h, n)))))
}

func (c *GRUCell) project(b *Binding, x *G.Node, weights,
	bias string) (*G.Node, error) {
	w, err := node(b, c.name, weights)
	if err != nil {
		return nil, err
	}
	bi, err := node(b, c.name, bias)
	if err != nil {
		return nil, err
	}
	return affine(x, w, bi)
}
