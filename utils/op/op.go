// Package op provides extended Gorgonia graph operations.
//
// Adapted from aunum/G.ld on GitHub
package op

import (
	G "gorgonia.org/gorgonia"
)

// ELU adds the exponential linear unit
//
//	elu(x) = x            if x > 0
//	elu(x) = exp(x) - 1   otherwise
//
// to the graph of x. ELU is computed as relu(x) + exp(min(x, 0)) - 1
// with min(x, 0) = -relu(-x), so the exponential is only ever taken of
// non-positive values.
func ELU(x *G.Node) (*G.Node, error) {
	one := G.NewConstant(1.0)

	linear, err := G.Rectify(x)
	if err != nil {
		return nil, err
	}

	negX, err := G.Neg(x)
	if err != nil {
		return nil, err
	}
	nonPositive, err := G.Rectify(negX)
	if err != nil {
		return nil, err
	}
	nonPositive, err = G.Neg(nonPositive)
	if err != nil {
		return nil, err
	}

	expm1, err := G.Exp(nonPositive)
	if err != nil {
		return nil, err
	}
	expm1, err = G.Sub(expm1, one)
	if err != nil {
		return nil, err
	}

	return G.Add(linear, expm1)
}

// LogSumExp calculates the log of the summation of exponentials of
// all logits along the given axis.
//
// Use this in place of Gorgonia's LogSumExp, which has the final sum
// and log interchanged, which is incorrect.
func LogSumExp(logits *G.Node, along int) *G.Node {
	max := G.Must(G.Max(logits, along))

	exponent := G.Must(G.BroadcastSub(logits, max, nil, []byte{1}))
	exponent = G.Must(G.Exp(exponent))

	sum := G.Must(G.Sum(exponent, along))
	log := G.Must(G.Log(sum))

	return G.Must(G.Add(max, log))
}

// LogSoftmax returns the log of the softmax of a batch of logits. The
// logits must be a matrix with one row per sample; normalization is
// performed along the rows.
func LogSoftmax(logits *G.Node) *G.Node {
	lse := LogSumExp(logits, 1)
	return G.Must(G.BroadcastSub(logits, lse, nil, []byte{1}))
}
