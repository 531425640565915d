package a3c

import (
	"github.com/samuelfneumann/goa3c/buffer/gae"
	"github.com/samuelfneumann/goa3c/initwfn"
	"github.com/samuelfneumann/goa3c/network"
)

// Default hyperparameters of an ActorCritic
const (
	DefaultNActions     = 3
	DefaultGamma        = 0.99
	DefaultTau          = 1.0
	DefaultHidden       = 256
	DefaultConvLayers   = 4
	DefaultConvChannels = 32
	DefaultKernel       = 3
	DefaultStride       = 2
	DefaultPadding      = 1
	DefaultSignalLength = 1
	DefaultActivation   = "elu"

	// DefaultBeta is the default weight of the entropy bonus in the
	// loss computed by CalcCost
	DefaultBeta = 0.01
)

// Config implements a configuration of an ActorCritic.
//
// Each observation is a vector of InputDims*SignalLength features
// which is viewed as a signal with InputDims channels and SignalLength
// positions. The signal is passed through ConvLayers 1D convolutions
// with ELU activations by default, flattened, and given to a GRU cell with Hidden
// units. The policy and state value heads are linear in the output of
// the GRU cell.
type Config struct {
	InputDims int `yaml:"input_dims" mapstructure:"input_dims"`
	NActions  int `yaml:"n_actions" mapstructure:"n_actions"`

	Gamma float64 `yaml:"gamma" mapstructure:"gamma"` // Discount factor
	Tau   float64 `yaml:"tau" mapstructure:"tau"`     // GAE trace decay

	Hidden int `yaml:"hidden" mapstructure:"hidden"`

	// Convolution stack
	ConvLayers   int `yaml:"conv_layers" mapstructure:"conv_layers"`
	ConvChannels int `yaml:"conv_channels" mapstructure:"conv_channels"`
	Kernel       int `yaml:"kernel" mapstructure:"kernel"`
	Stride       int `yaml:"stride" mapstructure:"stride"`
	Padding      int `yaml:"padding" mapstructure:"padding"`
	SignalLength int `yaml:"signal_length" mapstructure:"signal_length"`

	// Activation of the convolution stack: elu, relu, tanh, or identity
	Activation string `yaml:"activation" mapstructure:"activation"`

	// GAE determines how generalized advantage estimates are summed
	GAE gae.Mode `yaml:"gae" mapstructure:"gae"`

	// InitWFn initializes all weights. If nil, a fan-in uniform
	// initializer seeded with the seed of the ActorCritic is used.
	// Biases are always initialized to zero.
	InitWFn *initwfn.InitWFn `yaml:"-" mapstructure:"-"`
}

// DefaultConfig returns the default Config for observations of
// inputDims features
func DefaultConfig(inputDims int) Config {
	return Config{
		InputDims:    inputDims,
		NActions:     DefaultNActions,
		Gamma:        DefaultGamma,
		Tau:          DefaultTau,
		Hidden:       DefaultHidden,
		ConvLayers:   DefaultConvLayers,
		ConvChannels: DefaultConvChannels,
		Kernel:       DefaultKernel,
		Stride:       DefaultStride,
		Padding:      DefaultPadding,
		SignalLength: DefaultSignalLength,
		Activation:   DefaultActivation,
		GAE:          gae.Direct,
	}
}

// Features returns the width of observations
func (c Config) Features() int {
	return c.InputDims * c.SignalLength
}

// FeatureLength returns the length of the signal output by the
// convolution stack
func (c Config) FeatureLength() int {
	length := c.SignalLength
	for i := 0; i < c.ConvLayers; i++ {
		length = network.ConvOutputLength(length, c.Kernel, c.Stride,
			c.Padding)
	}
	return length
}

// Validate checks a Config to ensure it describes a valid ActorCritic
func (c Config) Validate() error {
	if c.InputDims <= 0 {
		return configError("validate", "input dimensions must be "+
			"positive \n\twant(>0)\n\thave(%v)", c.InputDims)
	}
	if c.NActions <= 0 {
		return configError("validate", "number of actions must be "+
			"positive \n\twant(>0)\n\thave(%v)", c.NActions)
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return configError("validate", "discount factor out of range "+
			"\n\twant([0, 1])\n\thave(%v)", c.Gamma)
	}
	if c.Tau < 0 || c.Tau > 1 {
		return configError("validate", "trace decay out of range "+
			"\n\twant([0, 1])\n\thave(%v)", c.Tau)
	}
	if c.Hidden <= 0 {
		return configError("validate", "hidden size must be positive "+
			"\n\twant(>0)\n\thave(%v)", c.Hidden)
	}
	if c.ConvLayers <= 0 || c.ConvChannels <= 0 {
		return configError("validate", "convolution stack must have "+
			"positive layers and channels, have (%v, %v)", c.ConvLayers,
			c.ConvChannels)
	}
	if c.Kernel <= 0 || c.Stride <= 0 || c.Padding < 0 {
		return configError("validate", "illegal kernel %v, stride %v, "+
			"or padding %v", c.Kernel, c.Stride, c.Padding)
	}
	if c.SignalLength <= 0 {
		return configError("validate", "signal length must be positive "+
			"\n\twant(>0)\n\thave(%v)", c.SignalLength)
	}
	if c.FeatureLength() <= 0 {
		return configError("validate", "convolution stack produces an "+
			"empty feature map from a signal of length %v", c.SignalLength)
	}
	if _, err := network.ParseActivation(c.Activation); err != nil {
		return configError("validate", "%v", err)
	}
	if err := c.GAE.Validate(); err != nil {
		return configError("validate", "%v", err)
	}
	return nil
}
