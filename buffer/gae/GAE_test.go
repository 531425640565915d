package gae

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestReturns(t *testing.T) {
	rewards := []float64{1.0, 0.0, -1.0, 2.0}
	values := []float64{0.5, 0.2, 0.1, 0.3, 4.0}
	gamma := 0.9

	returns, err := Returns(false, rewards, values, gamma)
	require.NoError(t, err)
	require.Len(t, returns, len(rewards))

	// Fold rewards in reverse, seeded with the bootstrap value
	R := 4.0
	want := make([]float64, len(rewards))
	for i := len(rewards) - 1; i >= 0; i-- {
		R = gamma*R + rewards[i]
		want[i] = R
	}
	require.InDeltaSlice(t, want, returns, 1e-12)
	require.InDelta(t, 2.0+0.9*4.0, returns[3], 1e-12)
}

func TestReturnsDoneIgnoresBootstrap(t *testing.T) {
	rewards := []float64{1.0, 1.0, 1.0}

	for _, bootstrap := range []float64{0.0, 10.0, -1e6} {
		values := []float64{0, 0, 0, bootstrap}
		returns, err := Returns(true, rewards, values, 0.5)
		require.NoError(t, err)
		require.InDeltaSlice(t, []float64{1.75, 1.5, 1.0}, returns, 1e-12)
	}
}

func TestReturnsDimensionMismatch(t *testing.T) {
	_, err := Returns(false, []float64{1, 2}, []float64{1, 2}, 0.99)
	require.Error(t, err)
	require.True(t, IsDimensionMismatch(err))

	_, err = Deltas([]float64{1, 2}, []float64{1, 2, 3, 4}, 0.99)
	require.True(t, IsDimensionMismatch(err))
}

func TestDeltas(t *testing.T) {
	rewards := []float64{1.0, 2.0}
	values := []float64{0.5, 1.5, 3.0}

	deltas, err := Deltas(rewards, values, 0.5)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{1.0 + 0.75 - 0.5, 2.0 + 1.5 - 1.5},
		deltas, 1e-12)

	// Inputs are left untouched
	require.Equal(t, []float64{0.5, 1.5, 3.0}, values)
}

func TestGAELastStepIsDelta(t *testing.T) {
	deltas := []float64{0.3, -1.2, 0.7, 2.5}

	for _, mode := range []Mode{Direct, Recursive} {
		adv, err := Advantages(deltas, 0.99*0.95, mode)
		require.NoError(t, err)
		require.Equal(t, deltas[len(deltas)-1], adv[len(adv)-1], "mode %v",
			mode)
	}
}

func TestGAEFormsAgree(t *testing.T) {
	src := rand.NewSource(1)
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: src}

	for _, n := range []int{1, 2, 17, 64} {
		deltas := make([]float64, n)
		for i := range deltas {
			deltas[i] = normal.Rand()
		}
		direct := DirectGAE(deltas, 0.99*0.9)
		recursive := RecursiveGAE(deltas, 0.99*0.9)
		require.InDeltaSlice(t, direct, recursive, 1e-9)
	}
}

// With λ = 1, GAE reduces to the Monte Carlo advantage R_t - v_t.
func TestGAEUnitTraceIsMonteCarloAdvantage(t *testing.T) {
	gamma := 0.97
	rewards := []float64{0.1, -0.4, 1.0, 0.0, 0.5}
	values := []float64{0.2, 0.3, -0.1, 0.6, 0.4, 1.5}

	for _, done := range []bool{false, true} {
		vals := append([]float64(nil), values...)
		if done {
			vals[len(vals)-1] = 0
		}

		returns, err := Returns(done, rewards, vals, gamma)
		require.NoError(t, err)
		deltas, err := Deltas(rewards, vals, gamma)
		require.NoError(t, err)

		for _, mode := range []Mode{Direct, Recursive} {
			adv, err := Advantages(deltas, gamma*1.0, mode)
			require.NoError(t, err)
			for i := range adv {
				require.InDelta(t, returns[i]-vals[i], adv[i], 1e-9)
			}
		}
	}
}

func TestAdvantagesUnknownMode(t *testing.T) {
	_, err := Advantages([]float64{1}, 0.9, Mode("bogus"))
	require.Error(t, err)
	require.Error(t, Mode("bogus").Validate())
	require.NoError(t, Direct.Validate())
}

func BenchmarkDirectGAE(b *testing.B) {
	deltas := make([]float64, 128)
	for i := range deltas {
		deltas[i] = float64(i%7) - 3.0
	}

	for i := 0; i < b.N; i++ {
		DirectGAE(deltas, 0.99)
	}
}

func BenchmarkRecursiveGAE(b *testing.B) {
	deltas := make([]float64, 128)
	for i := range deltas {
		deltas[i] = float64(i%7) - 3.0
	}

	for i := 0; i < b.N; i++ {
		RecursiveGAE(deltas, 0.99)
	}
}
