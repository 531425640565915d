package initwfn

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// FanInUConfig implements a configuration of a seeded uniform weight
// initializer with bounds ±Gain/sqrt(fan_in). With Gain = 1 this is
// the default initialization of linear, convolutional, and recurrent
// layers in most deep learning frameworks.
//
// The fan-in of a weight tensor is derived from its shape: the number
// of rows of a matrix, or the product of all but the first dimension
// of a convolutional filter.
//
// Each call to Create restarts the random stream from Seed, so two
// networks built layer by layer in the same order from the same
// configuration are identical.
type FanInUConfig struct {
	Gain float64
	Seed uint64
}

// NewFanInU returns a new seeded fan-in uniform weight initializer
func NewFanInU(gain float64, seed uint64) (*InitWFn, error) {
	config := FanInUConfig{
		Gain: gain,
		Seed: seed,
	}

	return newInitWFn(config)
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (f FanInUConfig) Type() Type {
	return FanInU
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn
func (f FanInUConfig) Create() G.InitWFn {
	src := rand.NewSource(f.Seed)

	return func(dt tensor.Dtype, s ...int) interface{} {
		bound := f.Gain / math.Sqrt(float64(FanIn(s...)))
		dist := distuv.Uniform{Min: -bound, Max: bound, Src: src}

		size := tensor.Shape(s).TotalSize()
		switch dt {
		case tensor.Float64:
			values := make([]float64, size)
			for i := range values {
				values[i] = dist.Rand()
			}
			return values

		case tensor.Float32:
			values := make([]float32, size)
			for i := range values {
				values[i] = float32(dist.Rand())
			}
			return values
		}
		panic("fanInU: unsupported dtype " + dt.String())
	}
}

// FanIn returns the number of inputs feeding each output unit of a
// weight tensor with shape s.
func FanIn(s ...int) int {
	switch len(s) {
	case 0:
		return 1
	case 1, 2:
		return s[0]
	}

	fanIn := 1
	for _, dim := range s[1:] {
		fanIn *= dim
	}
	return fanIn
}
