// Package environment outlines the interfaces and structs needed to
// implement concrete environments
package environment

import (
	"gonum.org/v1/gonum/mat"

	ts "github.com/samuelfneumann/gocrawler/timestep"
)

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() *mat.VecDense
}

// Ender determines when an episode should end. If the argument
// TimeStep is the last in the episode, End changes its StepType to
// timestep.Last, records the ending type, and returns true.
type Ender interface {
	End(*ts.TimeStep) bool
}

// Task implements the reward scheme for taking actions in some
// environment, as well as the conditions under which episodes end
type Task interface {
	Ender
	GetReward(state, action, nextState mat.Vector) float64
	AtGoal(state mat.Matrix) bool
	RewardSpec() Spec
}

// Environment implements a simualted environment, which includes a Task
// to complete
type Environment interface {
	Task
	Reset() (ts.TimeStep, error)
	Step(action *mat.VecDense) (ts.TimeStep, bool, error)
	CurrentTimeStep() ts.TimeStep
	DiscountSpec() Spec
	ObservationSpec() Spec
	ActionSpec() Spec
}
