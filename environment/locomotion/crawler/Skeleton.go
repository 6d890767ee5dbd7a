package crawler

import (
	"github.com/samuelfneumann/gocrawler/environment/locomotion/internal/physics"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Physical dimensions of the default crawler
const (
	BodyRadius float64 = 0.5
	BodyMass   float64 = 4.0

	UpperLegLength float64 = 0.8
	UpperLegRadius float64 = 0.2
	UpperLegMass   float64 = 1.0

	LowerLegLength float64 = 1.0
	LowerLegRadius float64 = 0.15
	LowerLegMass   float64 = 0.8

	// LowerLegPitch is the downward pitch of a lower leg at rest, in
	// degrees
	LowerLegPitch float64 = 60.0

	// StartHeight is the height of the core body at spawn
	StartHeight float64 = 0.6
)

// Joint limits of the default crawler, in degrees
const (
	UpperLowXLimit  float64 = -60.0
	UpperHighXLimit float64 = 60.0
	UpperYLimit     float64 = 30.0
	UpperZLimit     float64 = 0.0

	LowerLowXLimit  float64 = -45.0
	LowerHighXLimit float64 = 45.0
)

// Skeleton is a crawler body: a core and four two-segment legs spaced
// evenly around it. Bodies and Joints are indexed by Segment and the
// Body segment has a nil joint.
type Skeleton struct {
	Bodies [Segments]*physics.Rigidbody
	Joints [Segments]*physics.Joint
}

// NewSkeleton returns the default crawler body with its core at
// position, facing +Z. Leg i points outward at a yaw of 45° + 90°·i.
func NewSkeleton(position r3.Vec) Skeleton {
	var s Skeleton

	core := &physics.Rigidbody{
		Position: position,
		Rotation: physics.Identity,
		Mass:     BodyMass,
		Radius:   BodyRadius,
	}
	s.Bodies[Body] = core

	for leg := 0; leg < Legs; leg++ {
		yaw := 45.0 + 90.0*float64(leg)
		outward := physics.Rotate(physics.Euler(0, yaw, 0), physics.Forward)

		upperJoint := &physics.Joint{
			Connected:         core,
			Anchor:            outward.Scale(BodyRadius),
			Offset:            r3.Vec{Z: UpperLegLength / 2},
			Axis:              physics.Right,
			LowAngularXLimit:  UpperLowXLimit,
			HighAngularXLimit: UpperHighXLimit,
			AngularYLimit:     UpperYLimit,
			AngularZLimit:     UpperZLimit,
			Rest:              physics.Euler(0, yaw, 0),
			TargetRotation:    physics.Identity,
			SlerpDrive:        physics.Drive{MaximumForce: MaxJointForce},
		}
		upper := &physics.Rigidbody{
			Rotation: quat.Mul(core.Rotation, upperJoint.Rest),
			Mass:     UpperLegMass,
			Radius:   UpperLegRadius,
		}
		upper.Position = core.TransformPoint(upperJoint.Anchor).
			Add(physics.Rotate(upper.Rotation, upperJoint.Offset))

		lowerJoint := &physics.Joint{
			Connected:         upper,
			Anchor:            r3.Vec{Z: UpperLegLength / 2},
			Offset:            r3.Vec{Z: LowerLegLength / 2},
			Axis:              physics.Right,
			LowAngularXLimit:  LowerLowXLimit,
			HighAngularXLimit: LowerHighXLimit,
			Rest:              physics.Euler(LowerLegPitch, 0, 0),
			TargetRotation:    physics.Identity,
			SlerpDrive:        physics.Drive{MaximumForce: MaxJointForce},
		}
		lower := &physics.Rigidbody{
			Rotation: quat.Mul(upper.Rotation, lowerJoint.Rest),
			Mass:     LowerLegMass,
			Radius:   LowerLegRadius,
		}
		lower.Position = upper.TransformPoint(lowerJoint.Anchor).
			Add(physics.Rotate(lower.Rotation, lowerJoint.Offset))

		s.Bodies[Upper(leg)], s.Joints[Upper(leg)] = upper, upperJoint
		s.Bodies[Lower(leg)], s.Joints[Lower(leg)] = lower, lowerJoint
	}

	return s
}

// Links returns the skeleton's bodies and joints in Segment order,
// with the core body as the root
func (s Skeleton) Links() []physics.Link {
	links := make([]physics.Link, Segments)
	for i := range links {
		links[i] = physics.Link{Body: s.Bodies[i], Joint: s.Joints[i]}
	}
	return links
}

// Limbs returns the skeleton's bodies and joints paired with the given
// sensors, ready for Agent initialization
func (s Skeleton) Limbs(sensors [Segments]*GroundContact) [Segments]Limb {
	var limbs [Segments]Limb
	for i := range limbs {
		limbs[i] = Limb{
			Body:   s.Bodies[i],
			Joint:  s.Joints[i],
			Sensor: sensors[i],
		}
	}
	return limbs
}
