package solver

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	G "gorgonia.org/gorgonia"
)

func TestSolverJSON(t *testing.T) {
	tests := []struct {
		name   string
		solver func() (*Solver, error)
	}{
		{"Adam", func() (*Solver, error) { return NewDefaultAdam(1e-4, 1) }},
		{"RMSProp", func() (*Solver, error) {
			return NewDefaultRMSProp(7e-4, 1)
		}},
		{"Vanilla", func() (*Solver, error) { return NewVanilla(0.1, 1, 5.0) }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s, err := test.solver()
			require.NoError(t, err)

			data, err := json.Marshal(s)
			require.NoError(t, err)

			var decoded Solver
			require.NoError(t, json.Unmarshal(data, &decoded))
			require.Equal(t, s.Type, decoded.Type)
			require.Equal(t, s.Config, decoded.Config)
			require.NotNil(t, decoded.Solver)
		})
	}
}

func TestFromSpec(t *testing.T) {
	s, err := FromSpec(Spec{Type: "RMSProp", StepSize: 7e-4})
	require.NoError(t, err)
	require.Equal(t, RMSProp, s.Type)
	require.IsType(t, &G.RMSPropSolver{}, s.Solver)

	s, err = FromSpec(Spec{Type: "Vanilla", StepSize: 0.1, Clip: 1.0})
	require.NoError(t, err)
	require.Equal(t, 1.0, s.Config.(VanillaConfig).Clip)

	_, err = FromSpec(Spec{Type: "Bogus", StepSize: 0.1})
	require.Error(t, err)

	_, err = FromSpec(Spec{Type: "Adam"})
	require.Error(t, err)
}
