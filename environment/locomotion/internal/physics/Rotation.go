// Package physics implements a small rigid-body stand-in for a physics
// engine, sufficient to drive jointed locomotion environments. Bodies
// carry quaternion rotations, jointed bodies follow their connected
// body through forward kinematics and are driven toward joint target
// rotations, and contact events are reported for the ground plane and
// for a target volume.
//
// Conventions follow common game-engine usage: +Y is up, +Z is
// forward, and Euler angles are given in degrees and applied in Z, X,
// Y order.
package physics

import (
	"math"

	"github.com/samuelfneumann/gocrawler/utils/floatutils"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// Identity is the identity rotation
	Identity = quat.Number{Real: 1}

	Right   = r3.Vec{X: 1}
	Up      = r3.Vec{Y: 1}
	Forward = r3.Vec{Z: 1}
)

const epsilon float64 = 1e-9

// Rotate returns v rotated by the unit quaternion q
func Rotate(q quat.Number, v r3.Vec) r3.Vec {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q, p), quat.Conj(q))
	return r3.Vec{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// Normalize returns q scaled to unit length. The zero quaternion is
// mapped to the identity rotation.
func Normalize(q quat.Number) quat.Number {
	abs := quat.Abs(q)
	if abs < epsilon {
		return Identity
	}
	return quat.Scale(1/abs, q)
}

// AxisAngle returns the rotation of rad radians about axis
func AxisAngle(axis r3.Vec, rad float64) quat.Number {
	if r3.Norm(axis) < epsilon {
		return Identity
	}
	a := r3.Unit(axis)
	s := math.Sin(rad / 2)
	return quat.Number{
		Real: math.Cos(rad / 2),
		Imag: a.X * s,
		Jmag: a.Y * s,
		Kmag: a.Z * s,
	}
}

// Euler returns the rotation that rotates z degrees about the z axis,
// x degrees about the x axis, and y degrees about the y axis, in that
// order.
func Euler(x, y, z float64) quat.Number {
	qx := AxisAngle(Right, x*math.Pi/180)
	qy := AxisAngle(Up, y*math.Pi/180)
	qz := AxisAngle(Forward, z*math.Pi/180)

	return quat.Mul(quat.Mul(qy, qx), qz)
}

// EulerAngles returns the Euler angles, in degrees within [0, 360), of
// the unit quaternion q such that Euler(EulerAngles(q)) is equivalent
// to q.
func EulerAngles(q quat.Number) r3.Vec {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag

	var ax, ay, az float64
	sinX := floatutils.Clip(2*(w*x-y*z), -1, 1)
	if math.Abs(sinX) < 0.9999 {
		ax = math.Asin(sinX)
		ay = math.Atan2(2*(w*y+x*z), 1-2*(x*x+y*y))
		az = math.Atan2(2*(w*z+x*y), 1-2*(x*x+z*z))
	} else {
		// Gimbal lock, fold all yaw into y
		ax = math.Copysign(math.Pi/2, sinX)
		ay = math.Atan2(-2*(x*z-w*y), 1-2*(y*y+z*z))
		az = 0
	}

	return r3.Vec{X: wrapDegrees(ax), Y: wrapDegrees(ay), Z: wrapDegrees(az)}
}

// wrapDegrees converts radians to degrees within [0, 360)
func wrapDegrees(rad float64) float64 {
	deg := math.Mod(rad*180/math.Pi, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// FromToRotation returns the shortest rotation which takes the
// direction of from to the direction of to. If either vector is zero,
// the identity rotation is returned.
func FromToRotation(from, to r3.Vec) quat.Number {
	if r3.Norm(from) < epsilon || r3.Norm(to) < epsilon {
		return Identity
	}
	f, t := r3.Unit(from), r3.Unit(to)
	d := f.Dot(t)

	if d >= 1-epsilon {
		return Identity
	}
	if d <= -1+epsilon {
		// Opposite directions, rotate half a turn about any
		// perpendicular axis
		axis := f.Cross(Right)
		if r3.Norm(axis) < 1e-6 {
			axis = f.Cross(Up)
		}
		return AxisAngle(axis, math.Pi)
	}

	c := f.Cross(t)
	return Normalize(quat.Number{Real: 1 + d, Imag: c.X, Jmag: c.Y, Kmag: c.Z})
}

// LookRotation returns the rotation which points the forward (+Z) axis
// along forward while keeping the up (+Y) axis as close to world up as
// possible. A zero forward vector returns the identity rotation.
func LookRotation(forward r3.Vec) quat.Number {
	if r3.Norm(forward) < epsilon {
		return Identity
	}
	f := r3.Unit(forward)
	right := Up.Cross(f)
	if r3.Norm(right) < 1e-6 {
		// Looking straight up or down
		return FromToRotation(Forward, f)
	}
	right = r3.Unit(right)
	up := f.Cross(right)

	// Rotation matrix with columns right, up, forward
	m00, m01, m02 := right.X, up.X, f.X
	m10, m11, m12 := right.Y, up.Y, f.Y
	m20, m21, m22 := right.Z, up.Z, f.Z

	var q quat.Number
	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		q = quat.Number{
			Real: 0.25 / s,
			Imag: (m21 - m12) * s,
			Jmag: (m02 - m20) * s,
			Kmag: (m10 - m01) * s,
		}
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		q = quat.Number{
			Real: (m21 - m12) / s,
			Imag: 0.25 * s,
			Jmag: (m01 + m10) / s,
			Kmag: (m02 + m20) / s,
		}
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		q = quat.Number{
			Real: (m02 - m20) / s,
			Imag: (m01 + m10) / s,
			Jmag: 0.25 * s,
			Kmag: (m12 + m21) / s,
		}
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		q = quat.Number{
			Real: (m10 - m01) / s,
			Imag: (m02 + m20) / s,
			Jmag: (m12 + m21) / s,
			Kmag: 0.25 * s,
		}
	}
	return Normalize(q)
}

// Slerp spherically interpolates between the unit quaternions a and b
// along the shortest arc. t = 0 returns a and t = 1 returns b.
func Slerp(a, b quat.Number, t float64) quat.Number {
	d := dot(a, b)
	if d < 0 {
		b = quat.Scale(-1, b)
		d = -d
	}

	if d > 0.9995 {
		// Nearly parallel, linear interpolation is accurate enough
		return Normalize(quat.Add(a, quat.Scale(t, quat.Sub(b, a))))
	}

	theta := math.Acos(d) * t
	c := Normalize(quat.Sub(b, quat.Scale(d, a)))
	return quat.Add(quat.Scale(math.Cos(theta), a),
		quat.Scale(math.Sin(theta), c))
}

// Angle returns the angle in radians of the rotation described by the
// unit quaternion q, within [0, π]
func Angle(q quat.Number) float64 {
	w := math.Min(math.Abs(q.Real), 1)
	return 2 * math.Acos(w)
}

// AngularVelocity returns the angular velocity which rotates from to
// to within dt seconds
func AngularVelocity(from, to quat.Number, dt float64) r3.Vec {
	delta := Normalize(quat.Mul(to, quat.Conj(from)))
	if delta.Real < 0 {
		delta = quat.Scale(-1, delta)
	}

	angle := Angle(delta)
	axis := r3.Vec{X: delta.Imag, Y: delta.Jmag, Z: delta.Kmag}
	if angle < epsilon || r3.Norm(axis) < epsilon || dt <= 0 {
		return r3.Vec{}
	}
	return r3.Unit(axis).Scale(angle / dt)
}

func dot(a, b quat.Number) float64 {
	return a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
}
