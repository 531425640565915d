package gae

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSegmentStoreAndReset(t *testing.T) {
	hx := []float64{0.1, 0.2}
	s := NewSegment(hx)
	hx[0] = 9.0
	require.Equal(t, []float64{0.1, 0.2}, s.Hidden)

	obs := []float64{1, 2, 3}
	s.Store(obs, 2, 1.0, 0.5, -0.3)
	obs[0] = 100
	s.Store([]float64{4, 5, 6}, 0, 0.0, 0.4, -1.1)

	require.Equal(t, 2, s.Len())
	require.Equal(t, []float64{1, 2, 3}, s.Observations[0])
	require.Equal(t, []int{2, 0}, s.Actions)
	require.NoError(t, s.Validate())

	s.Reset([]float64{0, 0})
	require.Equal(t, 0, s.Len())
	require.Equal(t, []float64{0, 0}, s.Hidden)
	require.True(t, IsEmptySegment(s.Validate()))
}

func TestSegmentValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Segment)
	}{
		{"values", func(s *Segment) { s.Values = s.Values[:1] }},
		{"log probabilities", func(s *Segment) {
			s.LogProbs = append(s.LogProbs, 0)
		}},
		{"observations", func(s *Segment) {
			s.Observations = s.Observations[:1]
		}},
		{"actions", func(s *Segment) { s.Actions = nil }},
		{"observation width", func(s *Segment) {
			s.Observations[1] = []float64{1}
		}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := NewSegment(nil)
			s.Store([]float64{1, 2}, 0, 1, 1, -1)
			s.Store([]float64{3, 4}, 1, 1, 1, -1)
			test.modify(s)

			err := s.Validate()
			require.Error(t, err)
			require.True(t, IsDimensionMismatch(err))
			require.Contains(t, err.Error(), test.name)
		})
	}
}
