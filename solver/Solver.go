// Package solver implements functionality to wrap Gorgonia Solvers
// so that they can be JSON serialized into configuraiton files.
package solver

import (
	"encoding/json"
	"fmt"
	"reflect"

	G "gorgonia.org/gorgonia"
)

// Type describes different types of solvers that are available
type Type string

// Available solver types
const (
	Adam    Type = "Adam"
	RMSProp Type = "RMSProp"
	Vanilla Type = "Vanilla"
)

// registered maps each solver Type to its concrete Config type
var registered = map[string]reflect.Type{
	string(Adam):    reflect.TypeOf(AdamConfig{}),
	string(RMSProp): reflect.TypeOf(RMSPropConfig{}),
	string(Vanilla): reflect.TypeOf(VanillaConfig{}),
}

// Solver wraps Gorgonia Solvers so that they can be JSON marshalled and
// unmarshalled.
type Solver struct {
	G.Solver `json:"-"`
	Type
	Config
}

// newSolver returns a new solver with the given type and configuration.
func newSolver(t Type, c Config) (*Solver, error) {
	if !c.ValidType(t) {
		return nil, fmt.Errorf("newSolver: invalid solver type %v for "+
			"configuration %T", t, c)
	}
	solver := Solver{Type: t, Config: c}
	solver.Solver = solver.Config.Create()

	return &solver, nil
}

// UnmarshalJSON implements the json.Unmarshaller interface
func (s *Solver) UnmarshalJSON(data []byte) error {
	config, typeName, err := unmarshalConfig(data, "Type", "Config",
		registered)
	if err != nil {
		return fmt.Errorf("unmarshalJSON: %v", err)
	}

	s.Type = typeName
	s.Config = config
	s.Solver = s.Config.Create()

	return nil
}

// unmarshalConfig uses reflection to unmarshall a Config into its
// concrete type. Both the Config and its Type are returned.
func unmarshalConfig(data []byte, typeJsonField, valueJsonField string,
	customTypes map[string]reflect.Type) (Config, Type, error) {
	m := map[string]interface{}{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, "", err
	}

	typeName, ok := m[typeJsonField].(string)
	if !ok {
		return nil, "", fmt.Errorf("missing %v field", typeJsonField)
	}
	ty, found := customTypes[typeName]
	if !found {
		return nil, "", fmt.Errorf("unknown solver type %v", typeName)
	}
	value := reflect.New(ty).Interface()

	valueBytes, err := json.Marshal(m[valueJsonField])
	if err != nil {
		return nil, "", err
	}

	if err = json.Unmarshal(valueBytes, value); err != nil {
		return nil, "", err
	}

	return reflect.ValueOf(value).Elem().Interface().(Config), Type(typeName),
		nil
}

// Config implements a Gorgonia Solver configuration and can be used to
// create Gorgonia Solvers they describe.
type Config interface {
	Create() G.Solver

	// ValidType returns whether a specific Solver type can be created
	// with the Config
	ValidType(Type) bool
}

// Spec is a flat description of a solver, suitable for configuration
// files where the typed JSON layout of Solver is inconvenient. Fields
// that do not apply to the chosen Type are ignored, and zero values
// are replaced by the defaults of that solver.
type Spec struct {
	Type     string  `mapstructure:"type" yaml:"type"`
	StepSize float64 `mapstructure:"step_size" yaml:"step_size"`
	Batch    int     `mapstructure:"batch" yaml:"batch"`
	Clip     float64 `mapstructure:"clip" yaml:"clip"`
}

// FromSpec creates the Solver described by a Spec
func FromSpec(s Spec) (*Solver, error) {
	if s.StepSize <= 0 {
		return nil, fmt.Errorf("fromSpec: step size must be positive, "+
			"have(%v)", s.StepSize)
	}
	batch := s.Batch
	if batch <= 0 {
		batch = 1
	}
	clip := s.Clip
	if clip <= 0 {
		clip = -1.0
	}

	switch Type(s.Type) {
	case Adam:
		return NewAdam(s.StepSize, 1e-8, 0.9, 0.999, batch, clip)
	case RMSProp:
		return NewRMSProp(s.StepSize, 1e-8, 0.001, 0.999, batch, clip)
	case Vanilla:
		return NewVanilla(s.StepSize, batch, clip)
	}
	return nil, fmt.Errorf("fromSpec: unknown solver type %q", s.Type)
}
