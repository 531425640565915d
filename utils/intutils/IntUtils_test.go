package intutils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMinMax(t *testing.T) {
	require.Equal(t, -3, Min(4, -3, 0))
	require.Equal(t, 4, Max(4, -3, 0))
	require.Equal(t, 7, Max(7))
	require.Equal(t, 0, Max(0, -100))
}
