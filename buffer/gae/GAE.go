// Package gae implements the rollout segment buffer of an A3C worker
// and the return and generalized advantage estimate computations
// performed on it.
//
// Advantages follow GAE(λ) from https://arxiv.org/abs/1506.02438.
package gae

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Mode determines how the generalized advantage estimate is summed
type Mode string

const (
	// Direct sums the discounted residuals of every future step
	// explicitly, which takes O(n²) time for a segment of length n.
	Direct Mode = "direct"

	// Recursive computes gae_t = δ_t + γλ gae_{t+1} backwards in O(n)
	// time.
	Recursive Mode = "recursive"
)

// Validate returns an error if the Mode is not a known summation mode
func (m Mode) Validate() error {
	switch m {
	case Direct, Recursive:
		return nil
	}
	return fmt.Errorf("validate: unknown GAE mode %q", string(m))
}

// Returns computes the bootstrapped discounted return of each step in a
// segment. The values slice must hold one more element than rewards;
// its last element is the bootstrap value, which is treated as 0 if
// done is true. Returns are computed backwards with R ← ℽR + r_t and
// are aligned step-for-step with rewards.
func Returns(done bool, rewards, values []float64, gamma float64) ([]float64,
	error) {
	if len(values) != len(rewards)+1 {
		return nil, mismatch("returns", "values", len(rewards)+1,
			len(values))
	}

	R := values[len(values)-1]
	if done {
		R = 0.0
	}

	returns := make([]float64, len(rewards))
	for t := len(rewards) - 1; t >= 0; t-- {
		R = gamma*R + rewards[t]
		returns[t] = R
	}
	return returns, nil
}

// Deltas computes the temporal difference residuals
// δ_t = r_t + ℽv_{t+1} - v_t of a segment. The values slice must hold
// the bootstrap value as its last element.
func Deltas(rewards, values []float64, gamma float64) ([]float64, error) {
	if len(values) != len(rewards)+1 {
		return nil, mismatch("deltas", "values", len(rewards)+1, len(values))
	}
	n := len(rewards)
	if n == 0 {
		return []float64{}, nil
	}

	stateVals := mat.NewVecDense(n, append([]float64(nil), values[:n]...))
	nextStateVals := mat.NewVecDense(n, append([]float64(nil), values[1:]...))
	r := mat.NewVecDense(n, append([]float64(nil), rewards...))

	deltas := mat.NewVecDense(n, nil)
	deltas.AddScaledVec(r, gamma, nextStateVals)
	deltas.SubVec(deltas, stateVals)

	return deltas.RawVector().Data, nil
}

// DirectGAE computes the generalized advantage estimate of each step
// by summing over all future residuals:
//
//	gae_t = Σ_{k=0}^{n-t-1} (ℽλ)^k δ_{t+k}
//
// where discount = ℽλ.
func DirectGAE(deltas []float64, discount float64) []float64 {
	n := len(deltas)
	gae := make([]float64, n)
	terms := make([]float64, n)

	for t := 0; t < n; t++ {
		for k := 0; k < n-t; k++ {
			terms[k] = math.Pow(discount, float64(k)) * deltas[t+k]
		}
		gae[t] = floats.Sum(terms[:n-t])
	}
	return gae
}

// RecursiveGAE computes the generalized advantage estimate of each
// step with the backward recursion gae_t = δ_t + ℽλ gae_{t+1}, where
// discount = ℽλ.
func RecursiveGAE(deltas []float64, discount float64) []float64 {
	gae := make([]float64, len(deltas))

	next := 0.0
	for t := len(deltas) - 1; t >= 0; t-- {
		next = deltas[t] + discount*next
		gae[t] = next
	}
	return gae
}

// Advantages computes generalized advantage estimates from TD residuals
// using the summation mode m.
func Advantages(deltas []float64, discount float64, m Mode) ([]float64,
	error) {
	switch m {
	case Direct:
		return DirectGAE(deltas, discount), nil
	case Recursive:
		return RecursiveGAE(deltas, discount), nil
	}
	return nil, fmt.Errorf("advantages: %v", m.Validate())
}
