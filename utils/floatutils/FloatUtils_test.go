package floatutils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r1"
)

func TestClip(t *testing.T) {
	require.Equal(t, 1.0, Clip(3.0, -1.0, 1.0))
	require.Equal(t, -1.0, Clip(-3.0, -1.0, 1.0))
	require.Equal(t, 0.5, ClipInterval(0.5, r1.Interval{Min: 0, Max: 1}))
	require.True(t, Within(1.0, r1.Interval{Min: 0, Max: 1}))
	require.False(t, Within(1.1, r1.Interval{Min: 0, Max: 1}))
}

func TestIsFinite(t *testing.T) {
	require.True(t, IsFinite())
	require.True(t, IsFinite(0, -1e300, 1e300))
	require.False(t, IsFinite(1, math.NaN()))
	require.False(t, IsFinite(math.Inf(-1)))
}
