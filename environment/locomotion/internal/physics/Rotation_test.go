package physics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

const tolerance float64 = 1e-9

func closeVec(a, b r3.Vec, tol float64) bool {
	return r3.Norm(a.Sub(b)) <= tol
}

// sameRotation returns whether q and p describe the same rotation
func sameRotation(q, p quat.Number, tol float64) bool {
	return math.Abs(math.Abs(dot(Normalize(q), Normalize(p)))-1) <= tol
}

func TestEulerAxes(t *testing.T) {
	tests := []struct {
		x, y, z float64
		in      r3.Vec
		want    r3.Vec
	}{
		{0, 90, 0, Forward, Right},
		{0, -90, 0, Right, Forward},
		{90, 0, 0, Forward, r3.Vec{Y: -1}},
		{0, 0, 90, Right, Up},
		{0, 180, 0, Forward, r3.Vec{Z: -1}},
	}

	for _, test := range tests {
		got := Rotate(Euler(test.x, test.y, test.z), test.in)
		if !closeVec(got, test.want, tolerance) {
			t.Errorf("euler(%v, %v, %v) applied to %v: \n\twant(%v) "+
				"\n\thave(%v)", test.x, test.y, test.z, test.in, test.want, got)
		}
	}
}

func TestEulerAnglesRoundTrip(t *testing.T) {
	angles := []r3.Vec{
		{},
		{X: 30, Y: 45, Z: 60},
		{X: 10, Y: 200, Z: 350},
		{X: 300, Y: 15, Z: 90},
		{X: 85, Y: 120, Z: 5},
	}

	for _, a := range angles {
		q := Euler(a.X, a.Y, a.Z)
		got := EulerAngles(q)

		for _, v := range []float64{got.X, got.Y, got.Z} {
			if v < 0 || v >= 360 {
				t.Errorf("eulerAngles: angle %v not in [0, 360)", v)
			}
		}

		if !sameRotation(Euler(got.X, got.Y, got.Z), q, 1e-9) {
			t.Errorf("eulerAngles(euler(%v)): \n\thave(%v) describes a "+
				"different rotation", a, got)
		}
		if !closeVec(got, a, 1e-6) {
			t.Errorf("eulerAngles(euler(%v)): \n\twant(%v) \n\thave(%v)", a,
				a, got)
		}
	}
}

func TestEulerAnglesGimbalLock(t *testing.T) {
	q := Euler(90, 30, 0)
	got := EulerAngles(q)

	if !sameRotation(Euler(got.X, got.Y, got.Z), q, 1e-6) {
		t.Errorf("eulerAngles at gimbal lock: \n\thave(%v) describes a "+
			"different rotation", got)
	}
}

func TestFromToRotation(t *testing.T) {
	tests := []struct {
		from, to r3.Vec
	}{
		{Right, Up},
		{Forward, r3.Vec{X: 1, Y: 1, Z: 1}},
		{r3.Vec{X: 2}, r3.Vec{X: 5}},
		{Forward, r3.Vec{Z: -3}},
		{Right, r3.Vec{X: -1}},
		{r3.Vec{X: 1, Y: -2, Z: 0.5}, r3.Vec{X: -4, Y: 0.1, Z: 2}},
	}

	for _, test := range tests {
		q := FromToRotation(test.from, test.to)
		got := Rotate(q, r3.Unit(test.from))
		if !closeVec(got, r3.Unit(test.to), 1e-9) {
			t.Errorf("fromToRotation(%v, %v): \n\twant(%v) \n\thave(%v)",
				test.from, test.to, r3.Unit(test.to), got)
		}
		if math.Abs(quat.Abs(q)-1) > 1e-9 {
			t.Errorf("fromToRotation(%v, %v): not a unit quaternion",
				test.from, test.to)
		}
	}

	if q := FromToRotation(r3.Vec{}, Up); q != Identity {
		t.Errorf("fromToRotation with zero vector: \n\twant(%v) \n\thave(%v)",
			Identity, q)
	}
}

func TestLookRotation(t *testing.T) {
	directions := []r3.Vec{
		Forward,
		Right,
		{X: -1},
		{Z: -1},
		{X: 3, Z: -4},
		{X: 1, Y: 1, Z: 1},
		{Y: 1},
	}

	for _, d := range directions {
		q := LookRotation(d)
		fwd := Rotate(q, Forward)
		if !closeVec(fwd, r3.Unit(d), 1e-9) {
			t.Errorf("lookRotation(%v) forward: \n\twant(%v) \n\thave(%v)",
				d, r3.Unit(d), fwd)
		}

		// Up stays above the horizon unless looking straight up or down
		if d.X != 0 || d.Z != 0 {
			if up := Rotate(q, Up); up.Y <= 0 {
				t.Errorf("lookRotation(%v) up: \n\thave(%v)", d, up)
			}
		}
	}

	if q := LookRotation(r3.Vec{}); q != Identity {
		t.Errorf("lookRotation(0): \n\twant(%v) \n\thave(%v)", Identity, q)
	}
}

func TestSlerp(t *testing.T) {
	a := Euler(0, 0, 0)
	b := Euler(0, 90, 0)

	if got := Slerp(a, b, 0); !sameRotation(got, a, tolerance) {
		t.Errorf("slerp(0): \n\twant(%v) \n\thave(%v)", a, got)
	}
	if got := Slerp(a, b, 1); !sameRotation(got, b, tolerance) {
		t.Errorf("slerp(1): \n\twant(%v) \n\thave(%v)", b, got)
	}

	half := Slerp(a, b, 0.5)
	if want := Euler(0, 45, 0); !sameRotation(half, want, 1e-9) {
		t.Errorf("slerp(0.5): \n\twant(%v) \n\thave(%v)", want, half)
	}

	// Shortest arc is taken for antipodal representations
	neg := quat.Scale(-1, b)
	if got := Slerp(a, neg, 0.5); !sameRotation(got, Euler(0, 45, 0), 1e-9) {
		t.Errorf("slerp(0.5) with negated target: \n\thave(%v)", got)
	}
}

func TestAngularVelocity(t *testing.T) {
	from := Identity
	to := AxisAngle(Up, 0.1)

	got := AngularVelocity(from, to, 0.1)
	want := r3.Vec{Y: 1}
	if !closeVec(got, want, 1e-9) {
		t.Errorf("angularVelocity: \n\twant(%v) \n\thave(%v)", want, got)
	}

	if got := AngularVelocity(to, to, 0.1); got != (r3.Vec{}) {
		t.Errorf("angularVelocity without rotation: \n\twant(0) \n\thave(%v)",
			got)
	}
}
