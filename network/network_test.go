package network

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func TestConvOutputLength(t *testing.T) {
	tests := []struct {
		length, kernel, stride, padding int
		want                            int
	}{
		{1, 3, 2, 1, 1},
		{10, 3, 1, 0, 8},
		{10, 3, 2, 1, 5},
		{8, 3, 2, 1, 4},
		{1, 3, 1, 0, 0},
		{2, 5, 1, 1, 0},
	}

	for _, test := range tests {
		got := ConvOutputLength(test.length, test.kernel, test.stride,
			test.padding)
		require.Equal(t, test.want, got, "%+v", test)
	}
}

func TestParams(t *testing.T) {
	p := NewParams()
	require.NoError(t, p.Add("a", G.Ones(), 2, 3))
	require.NoError(t, p.Add("b", G.Zeroes(), 1, 3))
	require.Error(t, p.Add("a", G.Ones(), 2, 3))
	require.Error(t, p.Add("c", G.Ones(), 0, 3))

	require.Equal(t, []string{"a", "b"}, p.Names())
	require.Equal(t, 2, p.Len())
	require.Equal(t, tensor.Shape{2, 3}, p.Value("a").Shape())

	q := NewParams()
	require.NoError(t, q.Add("a", G.Zeroes(), 2, 3))
	require.NoError(t, q.Add("b", G.Ones(), 1, 3))
	require.NoError(t, p.Set(q))
	require.Equal(t, []float64{0, 0, 0, 0, 0, 0}, p.Value("a").Data())
	require.Equal(t, []float64{1, 1, 1}, p.Value("b").Data())

	wrong := NewParams()
	require.NoError(t, wrong.Add("a", G.Zeroes(), 3, 2))
	require.NoError(t, wrong.Add("b", G.Ones(), 1, 3))
	require.Error(t, p.Set(wrong))

	model := p.Model()
	require.Len(t, model, 2)
	require.Same(t, p.Value("a"), model[0].Value())
}

func TestParamsBindShare(t *testing.T) {
	p := NewParams()
	require.NoError(t, p.Add("w", G.Ones(), 2, 2))

	shared := p.Bind(G.NewGraph(), true)
	copied := p.Bind(G.NewGraph(), false)
	require.Same(t, p.Value("w"), shared.Node("w").Value())
	require.NotSame(t, p.Value("w"), copied.Node("w").Value())
	require.Len(t, shared.Learnables(), 1)
}

// gradients computes the gradient of the sum of all elements of the
// named parameters with respect to those parameters
func gradients(t *testing.T, b *Binding, names ...string) {
	nodes := make(G.Nodes, len(names))
	for i, name := range names {
		nodes[i] = b.Node(name)
	}
	sums := make(G.Nodes, len(nodes))
	for i, n := range nodes {
		sums[i] = G.Must(G.Sum(n))
	}
	loss := G.Must(G.ReduceAdd(sums))

	_, err := G.Grad(loss, nodes...)
	require.NoError(t, err)
	vm := G.NewTapeMachine(b.Graph(), G.BindDualValues(nodes...))
	defer vm.Close()
	require.NoError(t, vm.RunAll())
}

func TestParamsStoreGrads(t *testing.T) {
	p := NewParams()
	require.NoError(t, p.Add("a", G.Ones(), 2, 3))
	require.NoError(t, p.Add("b", G.Ones(), 1, 3))

	// Only a has a gradient, so nothing is stored
	partial := p.Bind(G.NewGraph(), false)
	gradients(t, partial, "a")
	require.Error(t, p.StoreGrads(partial))
	require.Equal(t, make([]float64, 6), p.Grad("a").Data())
	require.Equal(t, make([]float64, 3), p.Grad("b").Data())

	full := p.Bind(G.NewGraph(), false)
	gradients(t, full, "a", "b")
	require.NoError(t, p.StoreGrads(full))
	require.Equal(t, []float64{1, 1, 1, 1, 1, 1}, p.Grad("a").Data())
	require.Equal(t, []float64{1, 1, 1}, p.Grad("b").Data())

	p.ZeroGrads()
	require.Equal(t, make([]float64, 3), p.Grad("b").Data())
}

// run runs all operations of the graph g
func run(t *testing.T, g *G.ExprGraph) {
	vm := G.NewTapeMachine(g)
	defer vm.Close()
	require.NoError(t, vm.RunAll())
}

func TestFC(t *testing.T) {
	fc, err := NewFC("fc", 3, 2, true, Nil())
	require.NoError(t, err)

	p := NewParams()
	require.NoError(t, fc.Register(p, G.Ones()))

	g := G.NewGraph()
	b := p.Bind(g, true)
	x := G.NewMatrix(g, tensor.Float64, G.WithShape(2, 3), G.WithName("x"),
		G.WithValue(tensor.New(
			tensor.WithShape(2, 3),
			tensor.WithBacking([]float64{1, 2, 3, -1, 0, 1}),
		)))
	out, err := fc.Fwd(b, x)
	require.NoError(t, err)

	run(t, g)
	require.Equal(t, []float64{6, 6, 0, 0}, out.Value().Data())

	_, err = NewFC("bad", 0, 2, true, nil)
	require.Error(t, err)
}

func TestConv1D(t *testing.T) {
	conv, err := NewConv1D("conv", 2, 1, 3, 2, 1, Nil())
	require.NoError(t, err)
	require.Equal(t, 1, conv.OutputLength(1))

	p := NewParams()
	require.NoError(t, conv.Register(p, G.Ones()))

	g := G.NewGraph()
	b := p.Bind(g, true)
	x := G.NewTensor(g, tensor.Float64, 4, G.WithShape(1, 2, 1, 1),
		G.WithName("x"), G.WithValue(tensor.New(
			tensor.WithShape(1, 2, 1, 1),
			tensor.WithBacking([]float64{0.5, -2}),
		)))
	out, err := conv.Fwd(b, x)
	require.NoError(t, err)
	require.Equal(t, tensor.Shape{1, 1, 1, 1}, out.Shape())

	flat, err := Flatten(out)
	require.NoError(t, err)
	require.Equal(t, tensor.Shape{1, 1}, flat.Shape())

	run(t, g)

	// Only the centre tap of the kernel sees the signal, the others see
	// padding
	require.InDelta(t, -1.5, flat.Value().Data().([]float64)[0], 1e-12)

	_, err = NewConv1D("bad", 2, 1, 3, 0, 1, nil)
	require.Error(t, err)
}

func TestGRUCellZeroWeights(t *testing.T) {
	cell, err := NewGRUCell("gru", 2, 3)
	require.NoError(t, err)

	p := NewParams()
	require.NoError(t, cell.Register(p, G.Zeroes()))
	require.Equal(t, 12, p.Len())

	g := G.NewGraph()
	b := p.Bind(g, true)
	x := G.NewMatrix(g, tensor.Float64, G.WithShape(1, 2), G.WithName("x"),
		G.WithValue(tensor.New(
			tensor.WithShape(1, 2),
			tensor.WithBacking([]float64{3, -4}),
		)))
	h := G.NewMatrix(g, tensor.Float64, G.WithShape(1, 3), G.WithName("h"),
		G.WithValue(tensor.New(
			tensor.WithShape(1, 3),
			tensor.WithBacking([]float64{1, -0.5, 0.2}),
		)))
	next, err := cell.Fwd(b, x, h)
	require.NoError(t, err)

	run(t, g)

	// With zero weights z = 0.5 and n = 0, so h' = h / 2
	want := []float64{0.5, -0.25, 0.1}
	got := next.Value().Data().([]float64)
	for i := range want {
		require.InDelta(t, want[i], got[i], 1e-12)
	}
}

func TestELU(t *testing.T) {
	g := G.NewGraph()
	x := G.NewVector(g, tensor.Float64, G.WithShape(3), G.WithName("x"),
		G.WithValue(tensor.New(
			tensor.WithShape(3),
			tensor.WithBacking([]float64{-1, 0, 2}),
		)))
	out, err := ELU().fwd(x)
	require.NoError(t, err)

	run(t, g)

	want := []float64{math.Exp(-1) - 1, 0, 2}
	got := out.Value().Data().([]float64)
	for i := range want {
		require.InDelta(t, want[i], got[i], 1e-12)
	}
}

func TestParseActivation(t *testing.T) {
	for _, name := range []string{"relu", "identity", "tanh", "elu"} {
		act, err := ParseActivation(name)
		require.NoError(t, err)
		require.Equal(t, name, act.String())
	}
	_, err := ParseActivation("softsign")
	require.Error(t, err)
}
