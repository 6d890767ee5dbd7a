package physics

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Rigidbody is a single simulated body. Contacts are computed using a
// sphere of radius Radius centred on Position.
type Rigidbody struct {
	Position        r3.Vec
	Rotation        quat.Number
	Velocity        r3.Vec
	AngularVelocity r3.Vec
	Mass            float64
	Radius          float64
}

// Forward returns the body's forward (+Z) axis in world coordinates
func (b *Rigidbody) Forward() r3.Vec {
	return Rotate(b.Rotation, Forward)
}

// Up returns the body's up (+Y) axis in world coordinates
func (b *Rigidbody) Up() r3.Vec {
	return Rotate(b.Rotation, Up)
}

// TransformPoint converts a point from the body's local frame to world
// coordinates
func (b *Rigidbody) TransformPoint(local r3.Vec) r3.Vec {
	return b.Position.Add(Rotate(b.Rotation, local))
}

// InverseTransformPoint converts a point in world coordinates to the
// body's local frame
func (b *Rigidbody) InverseTransformPoint(world r3.Vec) r3.Vec {
	return Rotate(quat.Conj(b.Rotation), world.Sub(b.Position))
}

// Drive determines how strongly a Joint pulls its body toward the
// joint's target rotation
type Drive struct {
	PositionSpring float64
	MaximumForce   float64
}

// Joint connects a body to a parent body. The joint is located at
// Anchor in the connected body's frame, and the body's centre sits at
// Offset from the joint in the body's own frame.
//
// Angular limits are in degrees. The x axis has an asymmetric range
// [LowAngularXLimit, HighAngularXLimit], while the y and z axes are
// symmetric about zero.
type Joint struct {
	Connected *Rigidbody
	Anchor    r3.Vec
	Offset    r3.Vec
	Axis      r3.Vec

	LowAngularXLimit  float64
	HighAngularXLimit float64
	AngularYLimit     float64
	AngularZLimit     float64

	// Rest is the rotation of the body relative to the connected body
	// when the joint is at rest. TargetRotation is measured from Rest.
	Rest           quat.Number
	TargetRotation quat.Number
	SlerpDrive     Drive
}

// Rotation returns the orientation of the body attached to the joint
// relative to the connected body
func (j *Joint) Rotation(body *Rigidbody) quat.Number {
	return Normalize(quat.Mul(quat.Conj(j.Connected.Rotation), body.Rotation))
}

// Target returns the orientation, relative to the connected body, that
// the joint's drive pulls toward
func (j *Joint) Target() quat.Number {
	return Normalize(quat.Mul(Normalize(j.Rest), Normalize(j.TargetRotation)))
}
