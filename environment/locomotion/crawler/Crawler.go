// Package crawler implements the Crawler environment. In this
// environment, an agent controls a four-legged crawler made of a core
// body and eight leg segments, and must learn to walk toward a target.
// The target is placed at random in a disc around the origin when the
// environment is created and each time the crawler reaches it.
//
// State observations are vectors with the following features:
// [
//	direction to target (x, y, z)
//	core forward vector (x, y, z)
//	core up vector (x, y, z)
//	core height
//	for each segment, in Segment order:
//		ground contact flag
//		linear velocity (x, y, z)
//		angular velocity (x, y, z)
//		position in the core body's frame (x, y, z)
//		joint rotation (x, y, z, w), for segments other than Body
// ]
// which is 132 features for the default body.
//
// Actions are 20-dimensional, continuous vectors. Indices [0, 12) hold
// an (x angle, y angle, strength) triple for each upper leg, and
// indices [12, 20) hold an (x angle, strength) pair for each lower leg.
// Nominal action values lie in [-1, 1] and are mapped onto each joint's
// angular limits and drive strength. Actions are not clipped, values
// outside [-1, 1] are extrapolated.
package crawler

import (
	"fmt"

	"github.com/samuelfneumann/gocrawler/environment"
	"github.com/samuelfneumann/gocrawler/environment/locomotion/internal/physics"
	ts "github.com/samuelfneumann/gocrawler/timestep"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Config holds the parameters of a Crawler environment
type Config struct {
	// GoalDirection is the direction the crawler faces at the start of
	// each episode
	GoalDirection r3.Vec

	// FrameSkip is the number of physics substeps per environment step
	// and Dt is the duration of each substep in seconds
	FrameSkip int
	Dt        float64

	// PenalizedSegments end the episode with reward ContactPenalty
	// when they touch the ground
	PenalizedSegments []Segment
	ContactPenalty    float64

	// ObservationSize, if positive, is checked against the length of
	// the crawler's observations, which must match the input size of
	// the policy acting in the environment
	ObservationSize int

	Physics physics.Config
}

// DefaultConfig returns the default Crawler configuration, in which
// the crawler faces +Z and no segment is penalized for touching the
// ground
func DefaultConfig() Config {
	p := physics.DefaultConfig()
	p.TargetRadius = TargetRadius

	return Config{
		GoalDirection: r3.Vec{Z: 1},
		FrameSkip:     5,
		Dt:            0.01,
		Physics:       p,
	}
}

// Crawler implements the crawler environment. The Crawler glues
// together an Arena, which owns the target, an Agent, which maps the
// crawler's body to observations and actions to joint targets, and a
// simulation of the crawler's body. Contact events produced by the
// simulation are delivered to the body's contact sensors after every
// substep and applied by the Agent before observations are collected.
//
// Episodes end with ts.TerminalStateReached when the crawler reaches
// the target or touches the ground with a penalized segment, and with
// ts.Timeout when the Task's step limit is reached.
//
// The Crawler struct satisfies the environment.Environment interface.
type Crawler struct {
	environment.Task
	arena    *Arena
	agent    *Agent
	world    *physics.World
	skeleton Skeleton
	sensors  [Segments]*GroundContact

	frameSkip       int
	dt              float64
	discount        float64
	obsLen          int
	currentTimeStep ts.TimeStep
}

// New returns a new Crawler environment and its first time step. The
// arena is initialized, placing its target, before the agent.
func New(t environment.Task, arena *Arena, c Config,
	discount float64) (environment.Environment, ts.TimeStep, error) {
	if arena == nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: arena must not be nil")
	}
	if c.FrameSkip < 1 {
		return nil, ts.TimeStep{}, fmt.Errorf("new: frameSkip must be "+
			"positive \n\thave(%v)", c.FrameSkip)
	}
	if c.Dt <= 0 {
		return nil, ts.TimeStep{}, fmt.Errorf("new: dt must be positive "+
			"\n\thave(%v)", c.Dt)
	}

	penalized := make(map[Segment]bool, len(c.PenalizedSegments))
	for _, s := range c.PenalizedSegments {
		if s < 0 || int(s) >= Segments {
			return nil, ts.TimeStep{}, fmt.Errorf("new: cannot penalize "+
				"unknown segment %v", s)
		}
		penalized[s] = true
	}

	skeleton := NewSkeleton(r3.Vec{Y: StartHeight})
	c.Physics.TargetRadius = arena.TargetRadius()
	world, err := physics.NewWorld(skeleton.Links(), c.Physics)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %v", err)
	}

	cr := &Crawler{
		Task:      t,
		arena:     arena,
		world:     world,
		skeleton:  skeleton,
		frameSkip: c.FrameSkip,
		dt:        c.Dt,
		discount:  discount,
	}
	for i := range cr.sensors {
		s := Segment(i)
		cr.sensors[i] = NewGroundContact(s, penalized[s], c.ContactPenalty)
	}

	// The arena may be shared and already initialized
	arena.OnTargetMoved(world.SetTarget)
	world.SetTarget(arena.Target())
	arena.Initialize()

	cr.agent, err = NewAgent(arena, c.GoalDirection)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %v", err)
	}
	if err := cr.agent.Initialize(skeleton.Limbs(cr.sensors)); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %v", err)
	}

	cr.obsLen = cr.agent.ObservationSize()
	if c.ObservationSize > 0 && c.ObservationSize != cr.obsLen {
		return nil, ts.TimeStep{}, fmt.Errorf("new: crawler observations "+
			"have length %v but %v was expected", cr.obsLen,
			c.ObservationSize)
	}

	// Register task if needed
	walk, ok := t.(*Walk)
	if ok {
		walk.register(cr)
	}

	firstStep, err := cr.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %v", err)
	}
	return cr, firstStep, nil
}

// Reset resets the environment to begin a new episode
func (c *Crawler) Reset() (ts.TimeStep, error) {
	if err := c.agent.ResetEpisode(); err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %v", err)
	}
	c.arena.ResetEpisode()
	c.world.Settle()
	c.world.Reset()

	obs, err := c.getObs()
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: could not get starting "+
			"state observation: %v", err)
	}
	firstStep := ts.New(ts.First, 0, c.discount, obs, 0)
	c.currentTimeStep = firstStep

	return firstStep, nil
}

// Step takes one environmental step given some action. The shaped
// reward is computed from the state before the physics simulation
// advances and is overridden by the goal reward or a ground contact
// penalty.
func (c *Crawler) Step(action *mat.VecDense) (ts.TimeStep, bool, error) {
	if c.currentTimeStep.Last() {
		return ts.TimeStep{}, true, fmt.Errorf("step: episode has ended, " +
			"the environment must be reset")
	}
	if action.Len() != ActionSize {
		return ts.TimeStep{}, true, fmt.Errorf("step: action must have "+
			"length %v \n\thave(%v)", ActionSize, action.Len())
	}

	a := make([]float64, action.Len())
	for i := range a {
		a[i] = action.AtVec(i)
	}
	if err := c.agent.ApplyAction(a); err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: %v", err)
	}

	// The task's state is the core body position
	state := c.corePosition()
	c.agent.AddReward(c.GetReward(state, action, state))

	for i := 0; i < c.frameSkip && !c.agent.IsDone(); i++ {
		c.dispatch(c.world.Step(c.dt))
		c.agent.HandleContacts()
	}
	c.arena.StepEpisode()

	obs, err := c.getObs()
	if err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: could not get next "+
			"state observation: %v", err)
	}

	t := ts.New(ts.Mid, c.agent.Reward(), c.discount, obs,
		c.CurrentTimeStep().Number+1)
	c.agent.ResetReward()

	var done bool
	if c.agent.IsDone() {
		t.StepType = ts.Last
		t.SetEnd(ts.TerminalStateReached)
		done = true
	} else {
		done = c.End(&t)
		if done {
			c.agent.Done()
		}
	}
	c.currentTimeStep = t

	return t, done, nil
}

// dispatch delivers collision events to the contact sensors of the
// segments involved
func (c *Crawler) dispatch(collisions []physics.Collision) {
	for _, col := range collisions {
		sensor := c.sensors[col.Link]
		if col.Phase == physics.Enter {
			sensor.OnCollisionEnter(col.Surface)
		} else {
			sensor.OnCollisionExit(col.Surface)
		}
	}
}

// corePosition returns the position of the core body as a vector
func (c *Crawler) corePosition() *mat.VecDense {
	pos := c.skeleton.Bodies[Body].Position
	return mat.NewVecDense(3, []float64{pos.X, pos.Y, pos.Z})
}

// getObs returns a state observation
func (c *Crawler) getObs() (*mat.VecDense, error) {
	obs, err := c.agent.CollectObservations()
	if err != nil {
		return nil, fmt.Errorf("getObs: %v", err)
	}
	if len(obs) != c.obsLen {
		return nil, fmt.Errorf("getObs: observation has length %v but "+
			"%v was expected", len(obs), c.obsLen)
	}
	return mat.NewVecDense(c.obsLen, obs), nil
}

// CurrentTimeStep returns the current time step
func (c *Crawler) CurrentTimeStep() ts.TimeStep {
	return c.currentTimeStep
}

// CoreAtGoal returns whether the core body of the crawler is at the
// target
func (c *Crawler) CoreAtGoal() bool {
	return c.Task.AtGoal(c.corePosition())
}

// Agent returns the agent controlling the crawler
func (c *Crawler) Agent() *Agent {
	return c.agent
}

// Arena returns the arena the crawler walks in
func (c *Crawler) Arena() *Arena {
	return c.arena
}

// ObservationSpec returns the observation specification of the
// environment
func (c *Crawler) ObservationSpec() environment.Spec {
	return environment.NewUnboundedSpec(c.obsLen, environment.Observation)
}

// ActionSpec returns the action specification of the environment
func (c *Crawler) ActionSpec() environment.Spec {
	return environment.NewBoxSpec(ActionSize, environment.Action, -1.0, 1.0)
}

// DiscountSpec returns the discount specification of the environment
func (c *Crawler) DiscountSpec() environment.Spec {
	return environment.NewBoxSpec(1, environment.Discount, 0.0, 1.0)
}
