package initwfn

import G "gorgonia.org/gorgonia"

// GlorotUConfig configures Gorgonia's Glorot uniform initializer
type GlorotUConfig struct {
	Gain float64
}

// NewGlorotU returns a new Glorot uniform weight initializer
func NewGlorotU(gain float64) (*InitWFn, error) {
	return newInitWFn(GlorotUConfig{Gain: gain})
}

// Type returns GlorotU
func (g GlorotUConfig) Type() Type { return GlorotU }

// Create returns the configured Gorgonia InitWFn
func (g GlorotUConfig) Create() G.InitWFn { return G.GlorotU(g.Gain) }

// GlorotNConfig configures Gorgonia's Glorot normal initializer
type GlorotNConfig struct {
	Gain float64
}

// NewGlorotN returns a new Glorot normal weight initializer
func NewGlorotN(gain float64) (*InitWFn, error) {
	return newInitWFn(GlorotNConfig{Gain: gain})
}

// Type returns GlorotN
func (g GlorotNConfig) Type() Type { return GlorotN }

// Create returns the configured Gorgonia InitWFn
func (g GlorotNConfig) Create() G.InitWFn { return G.GlorotN(g.Gain) }

// ZeroesConfig configures an initializer which sets all weights to 0
type ZeroesConfig struct{}

// NewZeroes returns a new zero weight initializer
func NewZeroes() (*InitWFn, error) {
	return newInitWFn(ZeroesConfig{})
}

// Type returns Zeroes
func (z ZeroesConfig) Type() Type { return Zeroes }

// Create returns the configured Gorgonia InitWFn
func (z ZeroesConfig) Create() G.InitWFn { return G.Zeroes() }

// OnesConfig configures an initializer which sets all weights to 1
type OnesConfig struct{}

// NewOnes returns a new weight initializer that sets all weights to 1
func NewOnes() (*InitWFn, error) {
	return newInitWFn(OnesConfig{})
}

// Type returns Ones
func (o OnesConfig) Type() Type { return Ones }

// Create returns the configured Gorgonia InitWFn
func (o OnesConfig) Create() G.InitWFn { return G.Ones() }

// ConstantConfig configures an initializer which sets all weights to
// Value
type ConstantConfig struct {
	Value float64
}

// NewConstant returns a new constant weight initializer
func NewConstant(value float64) (*InitWFn, error) {
	return newInitWFn(ConstantConfig{Value: value})
}

// Type returns Constant
func (c ConstantConfig) Type() Type { return Constant }

// Create returns the configured Gorgonia InitWFn
func (c ConstantConfig) Create() G.InitWFn { return G.ValuesOf(c.Value) }
