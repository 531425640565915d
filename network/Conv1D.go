package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// ConvOutputLength returns the length of the output signal of a 1D
// convolution over a signal of the given length. If the kernel does not
// fit in the padded signal, 0 is returned.
func ConvOutputLength(length, kernel, stride, padding int) int {
	padded := length + 2*padding
	if padded < kernel || stride <= 0 {
		return 0
	}
	return (padded-kernel)/stride + 1
}

// Conv1D implements a 1D convolutional layer with a per channel bias.
//
// The input to a Conv1D layer is a 4D tensor of shape
// (batch, channels, length, 1) and the output has shape
// (batch, filters, outputLength, 1). The layer is computed as a 2D
// convolution with a kernel of width 1.
type Conv1D struct {
	name     string
	in       int
	filters  int
	kernel   int
	stride   int
	padding  int
	dilation int
	act      *Activation
}

// NewConv1D returns a new 1D convolutional layer
func NewConv1D(name string, in, filters, kernel, stride, padding int,
	act *Activation) (*Conv1D, error) {
	if in <= 0 || filters <= 0 {
		return nil, fmt.Errorf("newConv1D: layer %v must have positive "+
			"input and output channels, have (%v, %v)", name, in, filters)
	}
	if kernel <= 0 || stride <= 0 {
		return nil, fmt.Errorf("newConv1D: layer %v must have positive "+
			"kernel and stride, have (%v, %v)", name, kernel, stride)
	}
	if padding < 0 {
		return nil, fmt.Errorf("newConv1D: layer %v has negative padding %v",
			name, padding)
	}

	return &Conv1D{
		name:     name,
		in:       in,
		filters:  filters,
		kernel:   kernel,
		stride:   stride,
		padding:  padding,
		dilation: 1,
		act:      act,
	}, nil
}

// Name returns the name of the layer
func (c *Conv1D) Name() string {
	return c.name
}

// Filters returns the number of output channels
func (c *Conv1D) Filters() int {
	return c.filters
}

// OutputLength returns the length of the output signal for an input
// signal of the given length
func (c *Conv1D) OutputLength(length int) int {
	return ConvOutputLength(length, c.kernel, c.stride, c.padding)
}

// Register adds the filters and bias of the layer to p
func (c *Conv1D) Register(p *Params, init G.InitWFn) error {
	if err := p.Add(paramName(c.name, "filters"), init, c.filters, c.in,
		c.kernel, 1); err != nil {
		return err
	}
	return p.Add(paramName(c.name, "bias"), G.Zeroes(), 1, c.filters, 1, 1)
}

// Fwd adds the forward pass of the layer to the graph of b
func (c *Conv1D) Fwd(b *Binding, x *G.Node) (*G.Node, error) {
	if x.Dims() != 4 {
		return nil, fmt.Errorf("fwd: expected 4D input, have %vD", x.Dims())
	}
	if x.Shape()[1] != c.in {
		return nil, fmt.Errorf("fwd: invalid number of input channels "+
			"\n\twant(%v)\n\thave(%v)", c.in, x.Shape()[1])
	}
	if c.OutputLength(x.Shape()[2]) <= 0 {
		return nil, fmt.Errorf("fwd: kernel %v does not fit signal of "+
			"length %v", c.kernel, x.Shape()[2])
	}

	filters, err := node(b, c.name, "filters")
	if err != nil {
		return nil, fmt.Errorf("fwd: %v", err)
	}
	bias, err := node(b, c.name, "bias")
	if err != nil {
		return nil, fmt.Errorf("fwd: %v", err)
	}

	out, err := G.Conv2d(
		x,
		filters,
		tensor.Shape{c.kernel, 1},
		[]int{c.padding, 0},
		[]int{c.stride, 1},
		[]int{c.dilation, 1},
	)
	if err != nil {
		return nil, fmt.Errorf("fwd: could not convolve: %v", err)
	}

	// One bias per channel, broadcast over the batch and the signal
	if out, err = G.BroadcastAdd(out, bias, nil, []byte{0, 2, 3}); err != nil {
		return nil, fmt.Errorf("fwd: %v", err)
	}

	return c.act.fwd(out)
}

// Flatten reshapes a (batch, channels, length, 1) feature map into a
// (batch, channels*length) matrix
func Flatten(x *G.Node) (*G.Node, error) {
	shape := x.Shape()
	size := 1
	for _, dim := range shape[1:] {
		size *= dim
	}
	return G.Reshape(x, tensor.Shape{shape[0], size})
}
