package crawler

import (
	"github.com/samuelfneumann/gocrawler/environment/locomotion/internal/physics"
	"github.com/samuelfneumann/gocrawler/utils/floatutils"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// MaxJointSpring is the drive spring applied at full strength
	MaxJointSpring float64 = 10000.0

	// MaxJointForce is the force limit of every joint drive
	MaxJointForce float64 = 250000.0
)

// BodyPart is a single segment of the crawler. The Body segment has a
// nil Joint.
type BodyPart struct {
	Segment
	Joint     *physics.Joint
	Rigidbody *physics.Rigidbody

	StartingPos r3.Vec
	StartingRot quat.Number

	groundContact *GroundContact
}

// newBodyPart returns a BodyPart with its starting pose captured from
// the current pose of body
func newBodyPart(s Segment, body *physics.Rigidbody, joint *physics.Joint,
	sensor *GroundContact) *BodyPart {
	return &BodyPart{
		Segment:       s,
		Joint:         joint,
		Rigidbody:     body,
		StartingPos:   body.Position,
		StartingRot:   body.Rotation,
		groundContact: sensor,
	}
}

// Reset returns the body part to its starting pose at rest
func (b *BodyPart) Reset() {
	b.Rigidbody.Position = b.StartingPos
	b.Rigidbody.Rotation = b.StartingRot
	b.Rigidbody.Velocity = r3.Vec{}
	b.Rigidbody.AngularVelocity = r3.Vec{}

	if b.Joint != nil {
		b.Joint.TargetRotation = physics.Identity
	}
}

// SetNormalizedTargetRotation sets the joint's drive target from
// normalized angles and strength, each nominally in [-1, 1]. The x
// angle maps onto [LowAngularXLimit, HighAngularXLimit], the y and z
// angles onto their symmetric limits, and strength onto
// [0, MaxJointSpring]. Values outside [-1, 1] are extrapolated.
func (b *BodyPart) SetNormalizedTargetRotation(x, y, z, strength float64) {
	if b.Joint == nil {
		return
	}
	j := b.Joint

	xRot := floatutils.Remap(x, j.LowAngularXLimit, j.HighAngularXLimit)
	yRot := floatutils.Remap(y, -j.AngularYLimit, j.AngularYLimit)
	zRot := floatutils.Remap(z, -j.AngularZLimit, j.AngularZLimit)
	j.TargetRotation = physics.Euler(xRot, yRot, zRot)

	j.SlerpDrive = physics.Drive{
		PositionSpring: (strength + 1) * 0.5 * MaxJointSpring,
		MaximumForce:   MaxJointForce,
	}
}

// TouchingGround returns whether the body part's sensor currently
// reports ground contact, without clearing it
func (b *BodyPart) TouchingGround() bool {
	return b.groundContact.TouchingGround
}

// consumeGroundContact returns the ground contact flag and clears it
func (b *BodyPart) consumeGroundContact() bool {
	touching := b.groundContact.TouchingGround
	b.groundContact.TouchingGround = false
	return touching
}

// jointRotation returns the joint rotation observed for the part: the
// shortest rotation from the joint axis to the Euler angles, in
// degrees, of the joint's connected body
func (b *BodyPart) jointRotation() quat.Number {
	return physics.FromToRotation(b.Joint.Axis,
		physics.EulerAngles(b.Joint.Connected.Rotation))
}
