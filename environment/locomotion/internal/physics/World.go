package physics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// DriveScale converts drive stiffness into a relaxation rate toward
	// the joint target, in 1/s per unit mass
	DriveScale float64 = 500.0

	// ContactSlop is the distance above the ground within which a body
	// is considered touching the ground
	ContactSlop float64 = 1e-3
)

// Surface tags what a body collided with
type Surface int

const (
	Ground Surface = iota
	Target
)

func (s Surface) String() string {
	if s == Target {
		return "Target"
	}
	return "Ground"
}

// Phase is the phase of a collision
type Phase int

const (
	Enter Phase = iota
	Exit
)

func (p Phase) String() string {
	if p == Exit {
		return "Exit"
	}
	return "Enter"
}

// Collision is a collision event between a body in the World and a
// tagged surface. Link is the index of the body in the World.
type Collision struct {
	Link int
	Surface
	Phase
}

// Link is a body in a World together with the joint attaching it to
// its parent. The root link has a nil Joint.
type Link struct {
	Body  *Rigidbody
	Joint *Joint
}

// Config holds the physical parameters of a World
type Config struct {
	Gravity r3.Vec

	// Traction scales how much of the horizontal velocity of grounded
	// links relative to the root is transferred to the root, pushing
	// the root in the opposite direction
	Traction float64

	// Friction is the rate at which the horizontal velocity of a
	// grounded root decays, in 1/s
	Friction float64

	// AngularDamping is the rate at which the root's angular velocity
	// decays, in 1/s
	AngularDamping float64

	// TargetRadius is the radius of the target volume, measured in the
	// horizontal plane
	TargetRadius float64
}

// DefaultConfig returns a Config with earth gravity
func DefaultConfig() Config {
	return Config{
		Gravity:        r3.Vec{Y: -9.81},
		Traction:       0.5,
		Friction:       2.0,
		AngularDamping: 2.0,
		TargetRadius:   1.5,
	}
}

// World simulates a tree of jointed bodies resting on a ground plane at
// height zero. The first link is the root and is the only link
// integrated freely; every other link follows its connected body and is
// driven toward its joint's target rotation.
type World struct {
	Config
	links    []Link
	grounded []bool
	sensors  *planarSensors
}

// NewWorld returns a new World. Links must be ordered so that every
// joint's connected body appears before the link it is attached to.
// Jointed links are placed relative to their parents according to their
// current rotations.
func NewWorld(links []Link, c Config) (*World, error) {
	if len(links) == 0 {
		return nil, fmt.Errorf("newWorld: no links")
	}
	if links[0].Joint != nil {
		return nil, fmt.Errorf("newWorld: root link must not have a joint")
	}

	index := make(map[*Rigidbody]int, len(links))
	radii := make([]float64, len(links))
	for i, link := range links {
		if link.Body == nil {
			return nil, fmt.Errorf("newWorld: link %v has no body", i)
		}
		if i > 0 {
			if link.Joint == nil {
				return nil, fmt.Errorf("newWorld: link %v has no joint", i)
			}
			if _, ok := index[link.Joint.Connected]; !ok {
				return nil, fmt.Errorf("newWorld: link %v connected to a "+
					"body which does not precede it", i)
			}
		}
		if link.Body.Mass <= 0 {
			return nil, fmt.Errorf("newWorld: link %v must have positive "+
				"mass \n\thave(%v)", i, link.Body.Mass)
		}
		index[link.Body] = i
		radii[i] = link.Body.Radius
	}

	w := &World{
		Config:   c,
		links:    links,
		grounded: make([]bool, len(links)),
		sensors:  newPlanarSensors(radii, c.TargetRadius),
	}
	w.Settle()

	return w, nil
}

// Links returns the number of links in the World
func (w *World) Links() int {
	return len(w.links)
}

// Body returns the body of link i
func (w *World) Body(i int) *Rigidbody {
	return w.links[i].Body
}

// SetTarget moves the target volume so that it is centred on pos
func (w *World) SetTarget(pos r3.Vec) {
	w.sensors.setTarget(pos.X, pos.Z)
}

// Settle places every jointed link at its kinematic position given the
// current rotations, without integrating velocities. It should be
// called after bodies have been teleported.
func (w *World) Settle() {
	for _, link := range w.links[1:] {
		j := link.Joint
		link.Body.Position = j.Connected.TransformPoint(j.Anchor).
			Add(Rotate(link.Body.Rotation, j.Offset))
	}
}

// Reset forgets all ground and target contacts. Links touching the
// ground or the target are reported as entering them on the next Step.
// It should be called after bodies have been teleported.
func (w *World) Reset() {
	for i := range w.grounded {
		w.grounded[i] = false
	}
	w.sensors.reset()
}

// Step advances the simulation by dt seconds and returns the collision
// events produced by the step, ground events first.
func (w *World) Step(dt float64) []Collision {
	if dt <= 0 {
		return nil
	}

	// Rotations of jointed links relative to their parents, taken before
	// the root moves
	locals := make([]quat.Number, len(w.links))
	for i, link := range w.links[1:] {
		locals[i+1] = link.Joint.Rotation(link.Body)
	}

	w.integrateRoot(dt)
	w.driveJoints(locals, dt)
	w.resolveGround(dt)

	collisions := w.groundCollisions()
	positions := make([]r3.Vec, len(w.links))
	for i, link := range w.links {
		positions[i] = link.Body.Position
	}
	return append(collisions, w.sensors.update(positions, dt)...)
}

// integrateRoot applies gravity to the root and integrates its pose
func (w *World) integrateRoot(dt float64) {
	root := w.links[0].Body

	root.Velocity = root.Velocity.Add(w.Gravity.Scale(dt))
	root.Position = root.Position.Add(root.Velocity.Scale(dt))

	root.AngularVelocity = root.AngularVelocity.Scale(
		math.Max(0, 1-w.AngularDamping*dt))
	omega := root.AngularVelocity
	spin := quat.Mul(quat.Number{Imag: omega.X, Jmag: omega.Y, Kmag: omega.Z},
		root.Rotation)
	root.Rotation = Normalize(quat.Add(root.Rotation, quat.Scale(0.5*dt, spin)))
}

// driveJoints moves each jointed link toward its joint target and
// places it relative to its parent
func (w *World) driveJoints(locals []quat.Number, dt float64) {
	for i, link := range w.links[1:] {
		body, j := link.Body, link.Joint

		stiffness := math.Min(j.SlerpDrive.PositionSpring,
			j.SlerpDrive.MaximumForce)
		rate := math.Max(0, stiffness) / (body.Mass * DriveScale)
		alpha := 1 - math.Exp(-rate*dt)
		local := Slerp(locals[i+1], j.Target(), alpha)

		prevPos, prevRot := body.Position, body.Rotation
		body.Rotation = Normalize(quat.Mul(j.Connected.Rotation, local))
		body.Position = j.Connected.TransformPoint(j.Anchor).
			Add(Rotate(body.Rotation, j.Offset))

		body.Velocity = body.Position.Sub(prevPos).Scale(1 / dt)
		body.AngularVelocity = AngularVelocity(prevRot, body.Rotation, dt)
	}
}

// resolveGround lifts the whole body out of the ground plane and
// transfers traction from grounded links to the root
func (w *World) resolveGround(dt float64) {
	root := w.links[0].Body

	var penetration float64
	for _, link := range w.links {
		depth := link.Body.Radius - link.Body.Position.Y
		penetration = math.Max(penetration, depth)
	}
	if penetration <= 0 {
		return
	}

	lift := r3.Vec{Y: penetration}
	for _, link := range w.links {
		link.Body.Position = link.Body.Position.Add(lift)
	}
	if root.Velocity.Y < 0 {
		root.Velocity.Y = 0
	}

	// Grounded links pushing backward relative to the root push the
	// root forward
	var push r3.Vec
	for _, link := range w.links[1:] {
		body := link.Body
		if body.Position.Y-body.Radius > ContactSlop {
			continue
		}
		rel := body.Velocity.Sub(root.Velocity)
		push = push.Add(r3.Vec{X: rel.X, Z: rel.Z})
	}
	root.Velocity = root.Velocity.Sub(push.Scale(w.Traction))

	decay := math.Max(0, 1-w.Friction*dt)
	root.Velocity.X *= decay
	root.Velocity.Z *= decay
}

// groundCollisions returns ground enter and exit events for links whose
// ground contact changed since the last step
func (w *World) groundCollisions() []Collision {
	var collisions []Collision
	for i, link := range w.links {
		touching := link.Body.Position.Y-link.Body.Radius <= ContactSlop
		if touching == w.grounded[i] {
			continue
		}
		w.grounded[i] = touching

		phase := Exit
		if touching {
			phase = Enter
		}
		collisions = append(collisions, Collision{
			Link:    i,
			Surface: Ground,
			Phase:   phase,
		})
	}
	return collisions
}
