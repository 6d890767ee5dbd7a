// Package random implements an agent which acts uniformly at random
package random

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/gocrawler/environment"
	ts "github.com/samuelfneumann/gocrawler/timestep"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
)

// Random is an agent which selects each action dimension uniformly at
// random from [Low, High]. Random does not learn, so all Learner
// methods are no-ops.
type Random struct {
	seed    uint64
	actions int
	eval    bool
	policy  *distmv.Uniform
}

// New returns a new Random agent acting in env
func New(env environment.Environment, c Config, seed uint64) (*Random,
	error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	actions := env.ActionSpec().Shape.Len()
	if actions == 0 {
		return nil, fmt.Errorf("new: environment has no action dimensions")
	}

	bounds := make([]r1.Interval, actions)
	for i := range bounds {
		bounds[i] = r1.Interval{Min: c.Low, Max: c.High}
	}

	return &Random{
		seed:    seed,
		actions: actions,
		policy:  distmv.NewUniform(bounds, rand.NewSource(seed)),
	}, nil
}

// SelectAction returns an action sampled uniformly at random
func (r *Random) SelectAction(t ts.TimeStep) *mat.VecDense {
	return mat.NewVecDense(r.actions, r.policy.Rand(nil))
}

// Eval sets the agent to evaluation mode
func (r *Random) Eval() { r.eval = true }

// Train sets the agent to training mode
func (r *Random) Train() { r.eval = false }

// IsEval returns whether the agent is in evaluation mode
func (r *Random) IsEval() bool { return r.eval }

// Step performs no update
func (r *Random) Step() error { return nil }

// Observe ignores the observed transition
func (r *Random) Observe(action mat.Vector, nextObs ts.TimeStep) error {
	return nil
}

// ObserveFirst ignores the first step of an episode
func (r *Random) ObserveFirst(t ts.TimeStep) error { return nil }

// EndEpisode does nothing
func (r *Random) EndEpisode() {}
