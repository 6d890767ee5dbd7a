// Package agent defines the interfaces of agents acting in an
// environment, and JSON serializable configurations for creating them
package agent

import (
	"github.com/samuelfneumann/gocrawler/timestep"
	"gonum.org/v1/gonum/mat"
)

// Agent acts in an environment through its Policy and learns from the
// resulting experience through its Learner
type Agent interface {
	Learner
	Policy
}

// Learner updates an Agent's Policy from experience
type Learner interface {
	// Step performs a single update
	Step() error

	// Observe records that action led to nextObs
	Observe(action mat.Vector, nextObs timestep.TimeStep) error

	// ObserveFirst records the first timestep of an episode
	ObserveFirst(timestep.TimeStep) error

	// EndEpisode is called once the last timestep of an episode has
	// been observed
	EndEpisode()
}

// Policy selects an action for each timestep. Actions must have the
// length of the environment's action Spec.
type Policy interface {
	SelectAction(t timestep.TimeStep) *mat.VecDense
	Eval()        // Set policy to evaluation mode
	Train()       // Set policy to training mode
	IsEval() bool // Indicates if in evaluation mode
}
