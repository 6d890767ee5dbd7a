package crawler

import (
	"fmt"

	"github.com/samuelfneumann/gocrawler/environment/locomotion/internal/physics"
	"github.com/samuelfneumann/gocrawler/utils/matutils"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// ActionSize is the length of crawler action vectors
	ActionSize int = 4*3 + 4*2

	// Weights of the shaped reward
	VelocityWeight float64 = 0.03
	FacingWeight   float64 = 0.01

	// GoalReward is the reward of the step on which the target is
	// reached
	GoalReward float64 = 1.0
)

// State is the lifecycle state of an Agent
type State int

const (
	Uninitialized State = iota
	Active
	Terminating
	Resetting
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Active:
		return "Active"
	case Terminating:
		return "Terminating"
	case Resetting:
		return "Resetting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Outcome is the reason an episode ended
type Outcome int

const (
	Running Outcome = iota
	ReachedTarget
	Penalized
	Stopped
)

func (o Outcome) String() string {
	switch o {
	case Running:
		return "Running"
	case ReachedTarget:
		return "ReachedTarget"
	case Penalized:
		return "Penalized"
	case Stopped:
		return "Stopped"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Limb is what the simulation provides for a single segment of the
// crawler when the Agent is initialized
type Limb struct {
	Body   *physics.Rigidbody
	Joint  *physics.Joint
	Sensor *GroundContact
}

// Agent controls a crawler body. It maps the state of the body to
// observations, maps actions to joint drive targets, computes the
// shaped reward, and decides when an episode ends.
//
// Contact sensors push events onto a queue owned by the Agent. Events
// are applied in arrival order by HandleContacts, and the first event
// to end an episode wins: later terminal events in the same episode
// are ignored.
type Agent struct {
	arena *Arena

	// GoalDirection is the horizontal direction that the core body
	// faces at the start of every episode. A zero vector keeps the
	// body's original facing.
	GoalDirection r3.Vec

	parts    [Segments]*BodyPart
	contacts ContactQueue

	// Pose of the body at initialization, before it is turned toward
	// GoalDirection
	basePos [Segments]r3.Vec
	baseRot [Segments]quat.Number

	dirToTarget r3.Vec
	reward      float64
	done        bool
	outcome     Outcome
	state       State
}

// NewAgent returns a new, uninitialized Agent which walks toward the
// target of arena
func NewAgent(arena *Arena, goalDirection r3.Vec) (*Agent, error) {
	if arena == nil {
		return nil, fmt.Errorf("newAgent: arena must not be nil")
	}
	return &Agent{
		arena:         arena,
		GoalDirection: goalDirection,
		state:         Uninitialized,
	}, nil
}

// Initialize binds the Agent to the body described by limbs, indexed
// by Segment. Every segment needs a body and a sensor, and every
// segment other than Body needs a joint. Starting poses are captured
// from the bodies after they are turned to face GoalDirection.
func (a *Agent) Initialize(limbs [Segments]Limb) error {
	if a.state != Uninitialized {
		return fmt.Errorf("initialize: agent already initialized")
	}

	for i, limb := range limbs {
		s := Segment(i)
		if limb.Body == nil {
			return fmt.Errorf("initialize: segment %v has no body", s)
		}
		if s != Body && limb.Joint == nil {
			return fmt.Errorf("initialize: segment %v has no joint", s)
		}
		if limb.Sensor == nil {
			return fmt.Errorf("initialize: segment %v has no contact "+
				"sensor", s)
		}
		if limb.Sensor.Segment != s {
			return fmt.Errorf("initialize: sensor of segment %v reports "+
				"segment %v", s, limb.Sensor.Segment)
		}
	}

	for i, limb := range limbs {
		a.basePos[i] = limb.Body.Position
		a.baseRot[i] = limb.Body.Rotation

		joint := limb.Joint
		if Segment(i) == Body {
			joint = nil
		}
		a.parts[i] = newBodyPart(Segment(i), limb.Body, joint, limb.Sensor)
		limb.Sensor.Subscribe(&a.contacts)
	}

	a.faceGoal()
	for _, part := range a.parts {
		part.Reset()
	}

	a.state = Active
	return nil
}

// faceGoal sets the starting pose of every part to the pose captured
// at initialization, turned about the core body so that the core faces
// GoalDirection in the horizontal plane
func (a *Agent) faceGoal() {
	goal := r3.Vec{X: a.GoalDirection.X, Z: a.GoalDirection.Z}
	turn := physics.Identity
	if r3.Norm(goal) > 0 {
		forward := physics.Rotate(a.baseRot[Body], physics.Forward)
		forward.Y = 0
		turn = quat.Mul(physics.LookRotation(goal),
			quat.Conj(physics.LookRotation(forward)))
	}

	pivot := a.basePos[Body]
	for i, part := range a.parts {
		part.StartingPos = pivot.Add(physics.Rotate(turn,
			a.basePos[i].Sub(pivot)))
		part.StartingRot = physics.Normalize(quat.Mul(turn, a.baseRot[i]))
	}
}

// Part returns the body part of segment s
func (a *Agent) Part(s Segment) *BodyPart {
	return a.parts[s]
}

// State returns the lifecycle state of the Agent
func (a *Agent) State() State {
	return a.state
}

// Outcome returns how the current episode ended, or Running
func (a *Agent) Outcome() Outcome {
	return a.outcome
}

// ObservationSize returns the length of the Agent's observations
func (a *Agent) ObservationSize() int {
	size := 10
	for i := 0; i < Segments; i++ {
		size += 10
		if Segment(i) != Body {
			size += 4
		}
	}
	return size
}

// DirToTarget returns the vector from the core body to the target
// computed by the last observation or reward
func (a *Agent) DirToTarget() r3.Vec {
	return a.dirToTarget
}

func (a *Agent) updateDirToTarget() {
	a.dirToTarget = a.arena.Target().Sub(a.parts[Body].Rigidbody.Position)
}

// CollectObservations applies pending contact events and returns the
// observation of the current state. Observations consist of the
// direction to the target, the forward and up vectors of the core
// body, and the height of the core body. Then, for every segment in
// order: the ground contact flag, linear velocity, angular velocity,
// position in the core body's frame and, for jointed segments, the
// joint rotation as a quaternion (x, y, z, w).
//
// Reading the ground contact flag clears it.
func (a *Agent) CollectObservations() ([]float64, error) {
	if a.state == Uninitialized {
		return nil, fmt.Errorf("collectObservations: agent not initialized")
	}
	a.HandleContacts()

	core := a.parts[Body].Rigidbody
	a.updateDirToTarget()

	obs := make([]float64, 0, a.ObservationSize())
	obs = matutils.AppendR3(obs, a.dirToTarget, core.Forward(), core.Up())
	obs = append(obs, core.Position.Y)

	for _, part := range a.parts {
		touching := 0.0
		if part.consumeGroundContact() {
			touching = 1.0
		}
		obs = append(obs, touching)

		obs = matutils.AppendR3(obs, part.Rigidbody.Velocity,
			part.Rigidbody.AngularVelocity,
			core.InverseTransformPoint(part.Rigidbody.Position))

		if part.Joint != nil {
			obs = matutils.AppendQuat(obs, part.jointRotation())
		}
	}

	return obs, nil
}

// ApplyAction sets the joint drive targets of the legs. Indices
// [0, 12) hold an (x, y, strength) triple for each upper leg and
// indices [12, 20) hold an (x, strength) pair for each lower leg.
// Values are nominally in [-1, 1] and are not clipped.
func (a *Agent) ApplyAction(action []float64) error {
	if a.state != Active {
		return fmt.Errorf("applyAction: agent must be %v to act \n\thave(%v)",
			Active, a.state)
	}
	if len(action) != ActionSize {
		return fmt.Errorf("applyAction: action must have length %v "+
			"\n\thave(%v)", ActionSize, len(action))
	}

	for leg := 0; leg < Legs; leg++ {
		u := action[3*leg : 3*leg+3]
		a.parts[Upper(leg)].SetNormalizedTargetRotation(u[0], u[1], 0, u[2])

		l := action[12+2*leg : 12+2*leg+2]
		a.parts[Lower(leg)].SetNormalizedTargetRotation(l[0], 0, 0, l[1])
	}

	return nil
}

// ComputeReward returns the shaped reward of the current state, which
// rewards velocity toward the target and facing the target
func (a *Agent) ComputeReward() float64 {
	a.updateDirToTarget()
	core := a.parts[Body].Rigidbody

	dir := r3.Vec{}
	if r3.Norm(a.dirToTarget) > 0 {
		dir = r3.Unit(a.dirToTarget)
	}

	return VelocityWeight*core.Velocity.Dot(dir) +
		FacingWeight*core.Forward().Dot(dir)
}

// AddReward adds r to the reward of the current step
func (a *Agent) AddReward(r float64) {
	a.reward += r
}

// SetReward overwrites the reward of the current step
func (a *Agent) SetReward(r float64) {
	a.reward = r
}

// Reward returns the reward accumulated in the current step
func (a *Agent) Reward() float64 {
	return a.reward
}

// ResetReward clears the reward accumulated in the current step
func (a *Agent) ResetReward() {
	a.reward = 0
}

// Done ends the current episode
func (a *Agent) Done() {
	a.done = true
	if a.outcome == Running {
		a.outcome = Stopped
	}
	if a.state == Active {
		a.state = Terminating
	}
}

// IsDone returns whether the current episode has ended
func (a *Agent) IsDone() bool {
	return a.done
}

// OnTargetReached sets the reward of the step to GoalReward, moves the
// target, and ends the episode. It has no effect if the episode has
// already ended.
func (a *Agent) OnTargetReached() {
	if a.done {
		return
	}
	a.SetReward(GoalReward)
	a.arena.PlaceTargetRandomly()
	a.outcome = ReachedTarget
	a.Done()
}

// penalize sets the reward of the step to penalty and ends the
// episode. It has no effect if the episode has already ended.
func (a *Agent) penalize(penalty float64) {
	if a.done {
		return
	}
	a.SetReward(penalty)
	a.outcome = Penalized
	a.Done()
}

// HandleContacts applies all pending contact events in arrival order
func (a *Agent) HandleContacts() {
	for _, e := range a.contacts.Drain() {
		switch e.Kind {
		case GroundEnter:
			if e.Penalize {
				a.penalize(e.Penalty)
			}

		case TargetEnter:
			a.OnTargetReached()
		}
	}
}

// ResetEpisode turns the body to face GoalDirection and returns every
// body part to its starting pose at rest. Pending contact events are
// discarded.
func (a *Agent) ResetEpisode() error {
	if a.state == Uninitialized {
		return fmt.Errorf("resetEpisode: agent not initialized")
	}
	a.state = Resetting

	a.faceGoal()
	for _, part := range a.parts {
		part.Reset()
	}
	a.contacts.Drain()

	a.reward = 0
	a.done = false
	a.outcome = Running
	a.updateDirToTarget()

	a.state = Active
	return nil
}
