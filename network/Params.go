package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Params stores the learnable parameters of a network independently
// of any computational graph. A network may build many graphs over its
// lifetime (for example a single-step graph for acting and a new
// unrolled graph for each rollout segment); each graph binds the same
// Params through Bind.
//
// Params also caches the most recent gradient of each parameter so that
// the parameters can be updated by any Gorgonia Solver through Model.
type Params struct {
	names  []string
	values map[string]*tensor.Dense
	grads  map[string]*tensor.Dense
}

// NewParams returns a new, empty Params
func NewParams() *Params {
	return &Params{
		values: make(map[string]*tensor.Dense),
		grads:  make(map[string]*tensor.Dense),
	}
}

// Add adds a new parameter with the given name and shape, initialized
// with init.
func (p *Params) Add(name string, init G.InitWFn, shape ...int) error {
	if _, ok := p.values[name]; ok {
		return fmt.Errorf("add: parameter %v already exists", name)
	}
	for _, dim := range shape {
		if dim <= 0 {
			return fmt.Errorf("add: illegal shape %v for parameter %v",
				shape, name)
		}
	}

	value := tensor.New(
		tensor.WithShape(shape...),
		tensor.WithBacking(init(tensor.Float64, shape...)),
	)

	p.names = append(p.names, name)
	p.values[name] = value
	p.grads[name] = tensor.New(tensor.Of(tensor.Float64),
		tensor.WithShape(shape...))
	return nil
}

// Names returns the names of all parameters in the order they were
// added.
func (p *Params) Names() []string {
	return append([]string(nil), p.names...)
}

// Len returns the number of parameters
func (p *Params) Len() int {
	return len(p.names)
}

// Value returns the current value of a parameter
func (p *Params) Value(name string) *tensor.Dense {
	return p.values[name]
}

// Grad returns the most recently stored gradient of a parameter
func (p *Params) Grad(name string) *tensor.Dense {
	return p.grads[name]
}

// Bind adds every parameter to the graph g as a learnable node. If
// share is true, the nodes are bound to the stored tensors themselves,
// so that in-place updates made by a Solver are immediately seen by the
// graph. Otherwise each node is bound to a copy.
func (p *Params) Bind(g *G.ExprGraph, share bool) *Binding {
	b := &Binding{
		g:     g,
		nodes: make(map[string]*G.Node, len(p.names)),
		order: make(G.Nodes, 0, len(p.names)),
	}

	for _, name := range p.names {
		value := p.values[name]
		if !share {
			value = value.Clone().(*tensor.Dense)
		}

		node := G.NewTensor(
			g,
			tensor.Float64,
			value.Dims(),
			G.WithShape(value.Shape()...),
			G.WithName(name),
			G.WithValue(value),
		)
		b.nodes[name] = node
		b.order = append(b.order, node)
	}
	return b
}

// StoreGrads copies the gradients computed for the learnable nodes of
// b, which must have been bound from p, into p. If any gradient is
// missing or malformed, no stored gradient is changed.
func (p *Params) StoreGrads(b *Binding) error {
	grads := make([]*tensor.Dense, len(p.names))
	for i, name := range p.names {
		node, ok := b.nodes[name]
		if !ok {
			return fmt.Errorf("storeGrads: parameter %v not bound", name)
		}

		grad, err := node.Grad()
		if err != nil {
			return fmt.Errorf("storeGrads: could not get gradient of %v: %v",
				name, err)
		}
		gradDense, ok := grad.(*tensor.Dense)
		if !ok {
			return fmt.Errorf("storeGrads: unexpected gradient type %T "+
				"for %v", grad, name)
		}
		if !gradDense.Shape().Eq(p.grads[name].Shape()) {
			return fmt.Errorf("storeGrads: invalid gradient shape for %v "+
				"\n\twant(%v)\n\thave(%v)", name, p.grads[name].Shape(),
				gradDense.Shape())
		}
		grads[i] = gradDense
	}

	for i, name := range p.names {
		if err := copyDense(p.grads[name], grads[i]); err != nil {
			return fmt.Errorf("storeGrads: could not copy gradient of %v: %v",
				name, err)
		}
	}
	return nil
}

// ZeroGrads sets all stored gradients to zero
func (p *Params) ZeroGrads() {
	for _, name := range p.names {
		p.grads[name].Zero()
	}
}

// Set sets the values of all parameters to the values of the parameters
// of another Params with identical names and shapes.
func (p *Params) Set(source *Params) error {
	if len(source.names) != len(p.names) {
		return fmt.Errorf("set: invalid number of parameters \n\twant(%v)"+
			"\n\thave(%v)", len(p.names), len(source.names))
	}

	for i, name := range p.names {
		if source.names[i] != name {
			return fmt.Errorf("set: parameter %v does not match %v", i, name)
		}
		src := source.values[name]
		if !src.Shape().Eq(p.values[name].Shape()) {
			return fmt.Errorf("set: invalid shape for %v \n\twant(%v)"+
				"\n\thave(%v)", name, p.values[name].Shape(), src.Shape())
		}
	}

	for _, name := range p.names {
		if err := copyDense(p.values[name], source.values[name]); err != nil {
			return fmt.Errorf("set: could not copy %v: %v", name, err)
		}
	}
	return nil
}

// Model returns the parameters with their stored gradients, in a form
// that Gorgonia Solvers can step on. Solvers update parameter values in
// place.
func (p *Params) Model() []G.ValueGrad {
	model := make([]G.ValueGrad, len(p.names))
	for i, name := range p.names {
		model[i] = valueGrad{p.values[name], p.grads[name]}
	}
	return model
}

// copyDense copies the backing data of src into dst
func copyDense(dst, src *tensor.Dense) error {
	dstData, ok := dst.Data().([]float64)
	if !ok {
		return fmt.Errorf("copyDense: unsupported dtype %v", dst.Dtype())
	}
	srcData, ok := src.Data().([]float64)
	if !ok {
		return fmt.Errorf("copyDense: unsupported dtype %v", src.Dtype())
	}
	if len(dstData) != len(srcData) {
		return fmt.Errorf("copyDense: size mismatch \n\twant(%v)\n\thave(%v)",
			len(dstData), len(srcData))
	}
	copy(dstData, srcData)
	return nil
}

// valueGrad pairs a parameter with its gradient and implements
// G.ValueGrad
type valueGrad struct {
	value *tensor.Dense
	grad  *tensor.Dense
}

func (v valueGrad) Value() G.Value { return v.value }

func (v valueGrad) Grad() (G.Value, error) { return v.grad, nil }

// Binding is the set of learnable nodes created when binding a Params
// to a computational graph.
type Binding struct {
	g     *G.ExprGraph
	nodes map[string]*G.Node
	order G.Nodes
}

// Graph returns the graph that the Binding belongs to
func (b *Binding) Graph() *G.ExprGraph {
	return b.g
}

// Node returns the learnable node of a named parameter
func (b *Binding) Node(name string) *G.Node {
	return b.nodes[name]
}

// Learnables returns all learnable nodes in parameter order
func (b *Binding) Learnables() G.Nodes {
	return b.order
}
