package experiment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/goa3c/agent/nonlinear/discrete/a3c"
	"github.com/samuelfneumann/goa3c/buffer/gae"
	env "github.com/samuelfneumann/goa3c/environment"
	"github.com/samuelfneumann/goa3c/environment/cartpole"
	"github.com/samuelfneumann/goa3c/experiment/trackers"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r1"
	G "gorgonia.org/gorgonia"
)

func newTestWorker(t *testing.T, episodeSteps, segmentLength int,
	tr ...trackers.Tracker) *Worker {
	bounds := make([]r1.Interval, cartpole.ObservationDims)
	for i := range bounds {
		bounds[i] = r1.Interval{Min: -0.05, Max: 0.05}
	}
	task, err := cartpole.NewBalance(env.NewUniformStarter(bounds, 3),
		episodeSteps, cartpole.FailAngle)
	require.NoError(t, err)
	e, _, err := cartpole.New(task, DefaultDiscount)
	require.NoError(t, err)

	c := a3c.DefaultConfig(cartpole.ObservationDims)
	c.Hidden = 8
	c.ConvLayers = 2
	c.ConvChannels = 4
	c.GAE = gae.Recursive
	model, err := a3c.New(c, 3)
	require.NoError(t, err)
	t.Cleanup(func() { model.Close() })

	w, err := NewWorker(e, model, G.NewVanillaSolver(G.WithLearnRate(1e-3)),
		segmentLength, a3c.DefaultBeta, tr...)
	require.NoError(t, err)
	return w
}

func TestWorkerRun(t *testing.T) {
	lengths := trackers.NewEpisodeLength(filepath.Join(t.TempDir(),
		"lengths.bin"))
	w := newTestWorker(t, 12, 5, lengths)

	require.NoError(t, w.Run(3))
	require.Equal(t, 3, w.Episodes())

	scores := w.Scores()
	require.Len(t, scores, 3)
	for i, score := range scores {
		require.Greater(t, score, 0.0)
		require.LessOrEqual(t, score, 12.0)
		require.LessOrEqual(t, lengths.Data()[i], 12.0)
	}
	require.NoError(t, w.Save())
}

func TestWorkerSegmentLength(t *testing.T) {
	w := newTestWorker(t, 100, 4)

	cost, err := w.RunSegment()
	require.NoError(t, err)
	require.Len(t, cost.Returns, 4)
	require.Len(t, cost.Advantages, 4)
}

func TestNewWorkerInvalidSegment(t *testing.T) {
	w := newTestWorker(t, 10, 1)
	_, err := NewWorker(w.Environment, w.model, w.solver, 0, 0.01)
	require.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
seed: 7
episodes: 20
segment_length: 10
model:
  hidden: 64
  gae: recursive
solver:
  type: RMSProp
  step_size: 0.0007
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, uint64(7), c.Seed)
	require.Equal(t, 20, c.Episodes)
	require.Equal(t, 10, c.SegmentLength)
	require.Equal(t, 64, c.Model.Hidden)
	require.Equal(t, gae.Recursive, c.Model.GAE)
	require.Equal(t, "RMSProp", c.Solver.Type)

	// Unset values keep their defaults
	require.Equal(t, DefaultEpisodeSteps, c.EpisodeSteps)
	require.Equal(t, a3c.DefaultGamma, c.Model.Gamma)
	require.Equal(t, cartpole.ObservationDims, c.Model.InputDims)
}

func TestConfigSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	c := DefaultConfig()
	c.Episodes = 3
	c.Model.Tau = 0.95
	require.NoError(t, c.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, c, loaded)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	c := DefaultConfig()
	c.SegmentLength = 0
	require.Error(t, c.Validate())

	c = DefaultConfig()
	c.Model.InputDims = 3
	require.Error(t, c.Validate())

	c = DefaultConfig()
	c.Model.Kernel = 9
	c.Model.Padding = 0
	err := c.Validate()
	require.Error(t, err)
	require.True(t, a3c.IsConfigError(err))
}

func TestConfigNewModel(t *testing.T) {
	c := DefaultConfig()
	c.Model.Hidden = 8
	c.Model.ConvChannels = 4

	first, err := c.NewModel()
	require.NoError(t, err)
	defer first.Close()
	second, err := c.NewModel()
	require.NoError(t, err)
	defer second.Close()

	state := make([]float64, cartpole.ObservationDims)
	state[2] = 0.1
	v1, err := first.Value(state, first.NewHidden())
	require.NoError(t, err)
	v2, err := second.Value(state, second.NewHidden())
	require.NoError(t, err)
	require.Equal(t, v1, v2)

	c.Init.Type = "Bogus"
	_, err = c.NewModel()
	require.Error(t, err)
}
