package crawler

import (
	"fmt"

	"github.com/samuelfneumann/gocrawler/environment"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// SpawnHeight is the height at which targets are placed
	SpawnHeight float64 = 5.0

	// TargetRadius is the default contact radius of the target
	TargetRadius float64 = 1.5
)

// Arena owns the state shared by every crawler in a scene: the target
// and the rule used to place it. Targets are placed when the Arena is
// initialized and each time the target is reached.
//
// ResetEpisode and StepEpisode are called by the environment at every
// episode boundary and every step. They only count calls.
type Arena struct {
	starter      environment.Starter
	target       r3.Vec
	targetRadius float64
	initialized  bool

	placements int
	episodes   int
	steps      int

	onTargetMoved []func(r3.Vec)
}

// NewArena returns a new Arena which places targets at positions drawn
// from starter. The starter must return 3-dimensional (x, y, z)
// positions.
func NewArena(starter environment.Starter, targetRadius float64) (*Arena,
	error) {
	if starter == nil {
		return nil, fmt.Errorf("newArena: starter must not be nil")
	}
	if targetRadius <= 0 {
		return nil, fmt.Errorf("newArena: target radius must be positive "+
			"\n\thave(%v)", targetRadius)
	}

	return &Arena{
		starter:      starter,
		targetRadius: targetRadius,
	}, nil
}

// NewDiscArena returns a new Arena which places targets uniformly in a
// horizontal disc of radius spawnRadius at height SpawnHeight
func NewDiscArena(spawnRadius float64, seed uint64) (*Arena, error) {
	starter, err := environment.NewDiscStarter(spawnRadius, SpawnHeight, seed)
	if err != nil {
		return nil, fmt.Errorf("newDiscArena: %v", err)
	}
	return NewArena(starter, TargetRadius)
}

// Initialize performs one-time setup and places the target. Calling
// Initialize more than once has no effect.
func (a *Arena) Initialize() {
	if a.initialized {
		return
	}
	a.initialized = true
	a.PlaceTargetRandomly()
}

// Initialized returns whether the Arena has been initialized
func (a *Arena) Initialized() bool {
	return a.initialized
}

// ResetEpisode is called at the start of every episode
func (a *Arena) ResetEpisode() {
	a.episodes++
}

// StepEpisode is called after every environment step
func (a *Arena) StepEpisode() {
	a.steps++
}

// PlaceTargetRandomly moves the target to a new position drawn from
// the Arena's starter
func (a *Arena) PlaceTargetRandomly() {
	start := a.starter.Start()
	if start.Len() != 3 {
		panic(fmt.Sprintf("placeTargetRandomly: starter must return (x, y, "+
			"z) positions \n\thave(%v values)", start.Len()))
	}

	a.target = r3.Vec{X: start.AtVec(0), Y: start.AtVec(1), Z: start.AtVec(2)}
	a.placements++

	for _, f := range a.onTargetMoved {
		f(a.target)
	}
}

// OnTargetMoved registers f to be called with the new target position
// every time the target is placed
func (a *Arena) OnTargetMoved(f func(r3.Vec)) {
	a.onTargetMoved = append(a.onTargetMoved, f)
}

// Target returns the position of the target
func (a *Arena) Target() r3.Vec {
	return a.target
}

// TargetRadius returns the contact radius of the target
func (a *Arena) TargetRadius() float64 {
	return a.targetRadius
}

// Placements returns the number of times the target has been placed
func (a *Arena) Placements() int {
	return a.placements
}

// Episodes returns the number of calls to ResetEpisode
func (a *Arena) Episodes() int {
	return a.episodes
}

// Steps returns the number of calls to StepEpisode
func (a *Arena) Steps() int {
	return a.steps
}
