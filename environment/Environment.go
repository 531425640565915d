// Package environment outlines the interfaces and structs needed to
// implement concrete environments with discrete actions
package environment

import (
	"github.com/samuelfneumann/goa3c/timestep"
	"gonum.org/v1/gonum/mat"
)

// Starter implements a distribution of starting states and samples starting
// states for environments
type Starter interface {
	Start() *mat.VecDense
}

// Ender determines when episodes end. If a TimeStep ends an episode,
// End changes its StepType to timestep.Last, records why the episode
// ended, and returns true.
type Ender interface {
	End(t *timestep.TimeStep) bool
}

// Environment implements a simulated environment with a finite set of
// actions, numbered from 0.
type Environment interface {
	// Reset starts a new episode and returns its first TimeStep
	Reset() timestep.TimeStep

	// Step takes an action and returns the next TimeStep together with
	// whether or not the episode has ended. Illegal actions return an
	// error.
	Step(action int) (timestep.TimeStep, bool, error)

	ObservationSpec() Spec
	ActionSpec() Spec
}
