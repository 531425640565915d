// Package experiment implements the training loop of a single A3C
// worker together with its configuration
package experiment

import (
	"fmt"
	"os"

	"github.com/samuelfneumann/goa3c/agent/nonlinear/discrete/a3c"
	"github.com/samuelfneumann/goa3c/environment/cartpole"
	"github.com/samuelfneumann/goa3c/initwfn"
	"github.com/samuelfneumann/goa3c/solver"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Default experiment settings
const (
	DefaultEpisodes      = 1000
	DefaultEpisodeSteps  = 500
	DefaultSegmentLength = 5
	DefaultDiscount      = 0.99
)

// Config represents a configuration of an experiment in which a single
// A3C worker learns on Cartpole
type Config struct {
	Seed          uint64  `yaml:"seed" mapstructure:"seed"`
	Episodes      int     `yaml:"episodes" mapstructure:"episodes"`
	EpisodeSteps  int     `yaml:"episode_steps" mapstructure:"episode_steps"`
	SegmentLength int     `yaml:"segment_length" mapstructure:"segment_length"`
	Beta          float64 `yaml:"beta" mapstructure:"beta"`

	Model  a3c.Config   `yaml:"model" mapstructure:"model"`
	Init   initwfn.Spec `yaml:"init" mapstructure:"init"`
	Solver solver.Spec  `yaml:"solver" mapstructure:"solver"`

	// Output files
	ScoresFile string `yaml:"scores_file" mapstructure:"scores_file"`
	FigureFile string `yaml:"figure_file" mapstructure:"figure_file"`
}

// DefaultConfig returns the default experiment Config
func DefaultConfig() Config {
	return Config{
		Seed:          0,
		Episodes:      DefaultEpisodes,
		EpisodeSteps:  DefaultEpisodeSteps,
		SegmentLength: DefaultSegmentLength,
		Beta:          a3c.DefaultBeta,
		Model:         a3c.DefaultConfig(cartpole.ObservationDims),
		Init: initwfn.Spec{
			Type: string(initwfn.FanInU),
			Gain: 1.0,
		},
		Solver: solver.Spec{
			Type:     string(solver.Adam),
			StepSize: 1e-4,
		},
		ScoresFile: "scores.bin",
		FigureFile: "a3c_cartpole.png",
	}
}

// LoadConfig reads a Config from a YAML, JSON, or TOML file. Settings
// missing from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	if err := vp.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("loadConfig: could not read %v: %v",
			path, err)
	}

	c := DefaultConfig()
	if err := vp.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("loadConfig: could not decode %v: %v",
			path, err)
	}

	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("loadConfig: %v", err)
	}
	return c, nil
}

// Save writes the Config to a YAML file
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("save: could not encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("save: could not write config: %v", err)
	}
	return nil
}

// Validate checks a Config to ensure it describes a valid experiment
func (c Config) Validate() error {
	if c.Episodes <= 0 {
		return fmt.Errorf("validate: episodes must be positive "+
			"\n\twant(>0)\n\thave(%v)", c.Episodes)
	}
	if c.EpisodeSteps <= 0 {
		return fmt.Errorf("validate: episode steps must be positive "+
			"\n\twant(>0)\n\thave(%v)", c.EpisodeSteps)
	}
	if c.SegmentLength <= 0 {
		return fmt.Errorf("validate: segment length must be positive "+
			"\n\twant(>0)\n\thave(%v)", c.SegmentLength)
	}
	if c.Beta < 0 {
		return fmt.Errorf("validate: entropy weight must be non-negative "+
			"\n\twant(>=0)\n\thave(%v)", c.Beta)
	}
	if c.Model.InputDims != cartpole.ObservationDims {
		return fmt.Errorf("validate: model input dimensions must match "+
			"the environment \n\twant(%v)\n\thave(%v)",
			cartpole.ObservationDims, c.Model.InputDims)
	}
	if c.Model.NActions != cartpole.MaxDiscreteAction+1 {
		return fmt.Errorf("validate: model actions must match the "+
			"environment \n\twant(%v)\n\thave(%v)",
			cartpole.MaxDiscreteAction+1, c.Model.NActions)
	}
	return c.Model.Validate()
}

// NewModel creates the ActorCritic described by the Config, with its
// weights initialized as described by Init
func (c Config) NewModel() (*a3c.ActorCritic, error) {
	init, err := initwfn.FromSpec(c.Init, c.Seed)
	if err != nil {
		return nil, fmt.Errorf("newModel: %v", err)
	}

	model := c.Model
	model.InitWFn = init
	return a3c.New(model, c.Seed)
}
