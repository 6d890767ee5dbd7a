package crawler

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/gocrawler/environment"
	"gonum.org/v1/gonum/mat"
)

// Walk implements the Walk task. In this task, a crawler must walk to
// a target placed somewhere in the arena. The reward on each step is
// the crawler's shaped reward, which is a function of the core body's
// velocity toward the target and of how closely the core body faces
// the target. Reaching the target or touching the ground with a
// penalized segment ends the episode, and episodes are cut off after a
// step limit.
//
// The Walk Task must be registered with a Crawler before it can be
// used.
type Walk struct {
	env        *Crawler
	registered bool
	*environment.StepLimit
}

// NewWalk returns a new Walk Task with episodes cut off after cutoff
// steps
func NewWalk(cutoff int) environment.Task {
	stepLimit := environment.NewStepLimit(cutoff).(*environment.StepLimit)

	return &Walk{
		registered: false,
		StepLimit:  stepLimit,
	}
}

// GetReward returns the reward for some transition. The reward only
// depends on the current state of the registered crawler.
func (w *Walk) GetReward(state, action, nextState mat.Vector) float64 {
	if !w.registered {
		panic("getReward: must register with Crawler environment first")
	}
	return w.env.agent.ComputeReward()
}

// AtGoal returns whether the (x, y, z) position given by state lies
// within the target radius of the target, measured in the horizontal
// plane
func (w *Walk) AtGoal(state mat.Matrix) bool {
	if !w.registered {
		panic("atGoal: must register with Crawler environment first")
	}
	rows, c := state.Dims()
	if c != 1 || rows != 3 {
		panic(fmt.Sprintf("atGoal: argument state should be (x, y, z) " +
			"coordinates"))
	}

	target := w.env.arena.Target()
	dx := state.At(0, 0) - target.X
	dz := state.At(2, 0) - target.Z

	return math.Hypot(dx, dz) < w.env.arena.TargetRadius()
}

// RewardSpec returns the reward specification for the Task
func (w *Walk) RewardSpec() environment.Spec {
	return environment.NewUnboundedSpec(1, environment.Reward)
}

// register registers a Crawler environment with the Walk Task. This is
// required because rewards are computed from the crawler's body.
func (w *Walk) register(env *Crawler) {
	w.env = env
	w.registered = true
}
